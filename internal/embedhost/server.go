// Package embedhost serves the browser page that hosts the Spotify
// iframe widget and relays commands and playback events between the
// widget and the Go process over a websocket.
package embedhost

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/solho/setlist/internal/logging"
)

// Command is a control message sent to the widget.
type Command struct {
	Cmd     string  `json:"cmd"` // load, pause, resume, toggle, seek
	URI     string  `json:"uri,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
}

// Event is a message received from the widget.
type Event struct {
	Event   string `json:"event"` // ready, playback_update, error
	Message string `json:"message,omitempty"`
	Data    struct {
		IsPaused   bool   `json:"isPaused"`
		PositionMS int64  `json:"position"`
		DurationMS int64  `json:"duration"`
		PlayingURI string `json:"playingURI"`
	} `json:"data"`
}

// Host is the local HTTP server backing the embed widget. One widget
// page connects at a time; a newer connection replaces the old one.
type Host struct {
	server   *http.Server
	listener net.Listener
	upgrader websocket.Upgrader
	log      *log.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	onEvent func(Event)
	token   string // OAuth token handed to the widget, may be empty
}

// NewHost creates a host listening on the given port. Port 0 picks a
// free port.
func NewHost(port int) (*Host, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	h := &Host{
		listener: listener,
		log:      logging.Discard(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/ws", h.handleWS)

	h.server = &http.Server{
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	return h, nil
}

// SetLogger sets the host's logger.
func (h *Host) SetLogger(l *log.Logger) {
	if l != nil {
		h.log = l
	}
}

// SetToken sets the OAuth token the widget page requests.
func (h *Host) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// OnEvent registers the single event receiver for widget events.
func (h *Host) OnEvent(fn func(Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEvent = fn
}

// Start begins serving HTTP requests in the background.
func (h *Host) Start() {
	go func() {
		_ = h.server.Serve(h.listener)
	}()
}

// URL returns the address of the widget page.
func (h *Host) URL() string {
	return fmt.Sprintf("http://%s/", h.listener.Addr().String())
}

// Send delivers a command to the connected widget.
func (h *Host) Send(cmd Command) error {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("embed widget not connected")
	}
	return conn.WriteJSON(cmd)
}

// Connected reports whether a widget page is attached.
func (h *Host) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn != nil
}

// Shutdown stops the server and drops the widget connection.
func (h *Host) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if h.conn != nil {
		_ = h.conn.Close()
		h.conn = nil
	}
	h.mu.Unlock()
	return h.server.Shutdown(ctx)
}

func (h *Host) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.mu.Lock()
	token := h.token
	h.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data, _ := json.Marshal(token)
	fmt.Fprintf(w, indexHTML, string(data))
}

func (h *Host) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	if h.conn != nil {
		// The page reloaded; only the newest widget talks to us.
		_ = h.conn.Close()
	}
	h.conn = conn
	h.mu.Unlock()

	h.log.Debug("embed widget connected", "remote", conn.RemoteAddr())

	go h.readLoop(conn)
}

func (h *Host) readLoop(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		if h.conn == conn {
			h.conn = nil
		}
		h.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			h.log.Debug("embed widget disconnected", "err", err)
			return
		}

		h.mu.Lock()
		fn := h.onEvent
		h.mu.Unlock()
		if fn != nil {
			fn(ev)
		}
	}
}
