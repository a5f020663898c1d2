package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	slerrors "github.com/solho/setlist/internal/errors"
)

func TestClientSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Send() set stream = true")
		}
		if req.Mode != "auto" {
			t.Errorf("mode = %q, want auto", req.Mode)
		}
		_ = json.NewEncoder(w).Encode(Response{
			Response:  "here you go",
			SessionID: "s9",
		})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).Send(context.Background(), Request{Message: "play jazz", Mode: "auto"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.Response != "here you go" || resp.SessionID != "s9" {
		t.Errorf("Send() = %+v", resp)
	}
}

func TestClientStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !req.Stream {
			t.Error("Stream() set stream = false")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range []string{
			`data: {"type":"connected","session_id":"s5"}`,
			`data: {"type":"step","message":"thinking"}`,
			`data: {"type":"complete","response":"done"}`,
		} {
			_, _ = w.Write([]byte(line + "\n"))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	var steps int
	res, err := NewClient(srv.URL).Stream(context.Background(), Request{Message: "hi"}, func(ev StreamEvent) {
		if ev.Type == EventStep {
			steps++
		}
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if res.SessionID != "s5" || res.Response != "done" {
		t.Errorf("Stream() = %+v", res)
	}
	if steps != 1 {
		t.Errorf("step events = %d, want 1", steps)
	}
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Send(context.Background(), Request{Message: "hi"})
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Send() error = %v, want status 500", err)
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Refuse connections

	_, err := NewClient(srv.URL).Send(context.Background(), Request{Message: "hi"})
	if !errors.Is(err, slerrors.ErrChatUnavailable) {
		t.Errorf("Send() error = %v, want ErrChatUnavailable", err)
	}
}

func TestClientHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/history/abc":
			_ = json.NewEncoder(w).Encode(HistoryResponse{
				Messages: []HistoryMessage{
					{Role: "user", Content: "play jazz", Timestamp: "2025-06-01T12:00:00Z"},
					{Role: "assistant", Content: "playing", Mode: "playlist"},
				},
			})
		case "/api/history/empty":
			_ = json.NewEncoder(w).Encode(HistoryResponse{Messages: []HistoryMessage{}})
		case "/api/history/missing":
			http.NotFound(w, r)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	messages, err := c.History(ctx, "abc")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("History() returned %d messages, want 2", len(messages))
	}
	if messages[0].Role != RoleUser || messages[0].Text != "play jazz" {
		t.Errorf("messages[0] = %+v", messages[0])
	}
	if messages[0].Timestamp.IsZero() {
		t.Error("messages[0].Timestamp not parsed")
	}
	if messages[1].Mode != "playlist" {
		t.Errorf("messages[1].Mode = %q", messages[1].Mode)
	}

	// No history is not an error.
	for _, id := range []string{"empty", "missing"} {
		messages, err := c.History(ctx, id)
		if err != nil {
			t.Errorf("History(%q) error = %v", id, err)
		}
		if len(messages) != 0 {
			t.Errorf("History(%q) = %d messages, want 0", id, len(messages))
		}
	}
}
