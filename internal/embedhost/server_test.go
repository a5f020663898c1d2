package embedhost

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()

	h, err := NewHost(0)
	if err != nil {
		t.Fatalf("NewHost() error = %v", err)
	}
	h.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})
	return h
}

func dial(t *testing.T, h *Host) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(h.URL(), "http") + "ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHostURL(t *testing.T) {
	h := newTestHost(t)

	url := h.URL()
	if !strings.HasPrefix(url, "http://127.0.0.1:") {
		t.Errorf("URL() = %q, want local address", url)
	}
}

func TestSendWithoutConnection(t *testing.T) {
	h := newTestHost(t)

	if err := h.Send(Command{Cmd: "pause"}); err == nil {
		t.Error("Send() with no widget connected should fail")
	}
	if h.Connected() {
		t.Error("Connected() = true, want false")
	}
}

func TestSendDeliversCommand(t *testing.T) {
	h := newTestHost(t)
	conn := dial(t, h)

	// The server registers the connection asynchronously.
	waitFor(t, h.Connected)

	want := Command{Cmd: "load", URI: "spotify:track:abc"}
	if err := h.Send(want); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	var got Command
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got != want {
		t.Errorf("received %+v, want %+v", got, want)
	}
}

func TestEventsReachHandler(t *testing.T) {
	h := newTestHost(t)

	received := make(chan Event, 1)
	h.OnEvent(func(ev Event) { received <- ev })

	conn := dial(t, h)
	waitFor(t, h.Connected)

	ev := Event{Event: "playback_update"}
	ev.Data.PositionMS = 1500
	ev.Data.DurationMS = 180000
	ev.Data.PlayingURI = "spotify:track:abc"
	if err := conn.WriteJSON(ev); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	select {
	case got := <-received:
		if got.Data.PlayingURI != "spotify:track:abc" {
			t.Errorf("PlayingURI = %q, want %q", got.Data.PlayingURI, "spotify:track:abc")
		}
		if got.Data.PositionMS != 1500 {
			t.Errorf("PositionMS = %d, want 1500", got.Data.PositionMS)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNewConnectionReplacesOld(t *testing.T) {
	h := newTestHost(t)

	first := dial(t, h)
	waitFor(t, h.Connected)

	second := dial(t, h)
	waitFor(t, func() bool {
		// The first connection was closed by the server.
		_ = first.SetReadDeadline(time.Now().Add(10 * time.Millisecond))
		var cmd Command
		return first.ReadJSON(&cmd) != nil
	})

	want := Command{Cmd: "pause"}
	if err := h.Send(want); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	var got Command
	_ = second.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := second.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() on new connection error = %v", err)
	}
	if got != want {
		t.Errorf("received %+v, want %+v", got, want)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
