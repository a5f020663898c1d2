package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func streamHandler(lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			_, _ = w.Write([]byte(line + "\n"))
		}
	}
}

func TestSessionAsk(t *testing.T) {
	srv := httptest.NewServer(streamHandler(
		`data: {"type":"connected","session_id":"s1"}`,
		`data: {"type":"step","message":"picking tracks"}`,
		`data: {"type":"complete","response":"enjoy","mode":"playlist"}`,
	))
	defer srv.Close()

	s := NewSession(NewClient(srv.URL))

	var statuses []string
	reply, err := s.Ask(context.Background(), "play jazz", "", func(status string) {
		statuses = append(statuses, status)
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if reply.Role != RoleAssistant || reply.Text != "enjoy" {
		t.Errorf("reply = %+v", reply)
	}
	if s.ID() != "s1" {
		t.Errorf("ID() = %q, want s1", s.ID())
	}
	if len(statuses) != 1 || statuses[0] != "picking tracks" {
		t.Errorf("statuses = %v", statuses)
	}

	messages := s.Messages()
	if len(messages) != 2 {
		t.Fatalf("transcript has %d messages, want 2", len(messages))
	}
	if messages[0].Role != RoleUser || messages[0].Text != "play jazz" {
		t.Errorf("messages[0] = %+v", messages[0])
	}
	if messages[0].ID == "" || messages[1].ID == "" {
		t.Error("transcript messages missing ids")
	}
}

func TestSessionRollbackOnFailure(t *testing.T) {
	srv := httptest.NewServer(streamHandler(
		`data: {"type":"step","message":"working"}`,
		`data: {"type":"error","error":"overloaded"}`,
	))
	defer srv.Close()

	s := NewSession(NewClient(srv.URL))

	if _, err := s.Ask(context.Background(), "play jazz", "", nil); err == nil {
		t.Fatal("Ask() error = nil, want failure")
	}

	// The failed round-trip must not leave a dangling user message.
	if got := len(s.Messages()); got != 0 {
		t.Errorf("transcript has %d messages after rollback, want 0", got)
	}
	if got := s.RestoreInput(); got != "play jazz" {
		t.Errorf("RestoreInput() = %q, want original input", got)
	}
	// Consume-once.
	if got := s.RestoreInput(); got != "" {
		t.Errorf("second RestoreInput() = %q, want empty", got)
	}
}

func TestSessionRollbackOnIncompleteStream(t *testing.T) {
	srv := httptest.NewServer(streamHandler(
		`data: {"type":"step","message":"working"}`,
	))
	defer srv.Close()

	s := NewSession(NewClient(srv.URL))

	if _, err := s.Ask(context.Background(), "hi", "", nil); err == nil {
		t.Fatal("Ask() error = nil, want incomplete stream failure")
	}
	if got := len(s.Messages()); got != 0 {
		t.Errorf("transcript has %d messages after rollback, want 0", got)
	}
}

func TestSessionAskOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{Response: "done", SessionID: "s2"})
	}))
	defer srv.Close()

	s := NewSession(NewClient(srv.URL))

	reply, err := s.AskOnce(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("AskOnce() error = %v", err)
	}
	if reply.Text != "done" {
		t.Errorf("reply.Text = %q", reply.Text)
	}
	if s.ID() != "s2" {
		t.Errorf("ID() = %q, want s2", s.ID())
	}
}

func TestSessionLoadHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/history/s3" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(HistoryResponse{
			Messages: []HistoryMessage{
				{Role: "user", Content: "earlier question"},
				{Role: "assistant", Content: "earlier answer"},
			},
		})
	}))
	defer srv.Close()

	s := ResumeSession(NewClient(srv.URL), "s3")
	if err := s.LoadHistory(context.Background()); err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}

	messages := s.Messages()
	if len(messages) != 2 {
		t.Fatalf("transcript has %d messages, want 2", len(messages))
	}
	if messages[1].Text != "earlier answer" {
		t.Errorf("messages[1].Text = %q", messages[1].Text)
	}
}

func TestSessionLoadHistoryWithoutID(t *testing.T) {
	s := NewSession(NewClient("http://127.0.0.1:0"))
	if err := s.LoadHistory(context.Background()); err != nil {
		t.Errorf("LoadHistory() error = %v, want nil for fresh session", err)
	}
}
