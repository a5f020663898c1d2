package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds one conversation: its transcript, the service-side
// session id, and the round-trip bookkeeping that keeps the transcript
// consistent when a request fails.
type Session struct {
	client *Client

	mu         sync.Mutex
	id         string
	transcript []Message
	lastInput  string
}

// NewSession creates a session with an empty transcript.
func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// ResumeSession creates a session bound to an existing service-side id.
func ResumeSession(client *Client, id string) *Session {
	return &Session{client: client, id: id}
}

// ID returns the service-side session id, empty until the first
// successful round-trip.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// RestoreInput returns the input text of the last failed request, once.
// The UI uses this to refill the prompt after a rollback.
func (s *Session) RestoreInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.lastInput
	s.lastInput = ""
	return text
}

// LoadHistory replaces the transcript with the service's stored
// history for this session. A session without an id has no history.
func (s *Session) LoadHistory(ctx context.Context) error {
	s.mu.Lock()
	id := s.id
	s.mu.Unlock()
	if id == "" {
		return nil
	}

	messages, err := s.client.History(ctx, id)
	if err != nil {
		return err
	}

	for i := range messages {
		messages[i].ID = uuid.NewString()
	}

	s.mu.Lock()
	s.transcript = messages
	s.mu.Unlock()
	return nil
}

// Ask sends a streaming request and appends the assistant's reply to
// the transcript. The user message is appended optimistically before
// the request; a failed round-trip removes it again and stashes the
// input for RestoreInput. onStatus, when non-nil, receives progress
// text as the service works.
func (s *Session) Ask(ctx context.Context, text, spotifyToken string, onStatus func(string)) (Message, error) {
	userMsg := s.appendUser(text)

	req := Request{
		Message:          text,
		SessionID:        s.ID(),
		SpotifyUserToken: spotifyToken,
		Mode:             "auto",
	}

	res, err := s.client.Stream(ctx, req, func(ev StreamEvent) {
		if onStatus == nil {
			return
		}
		switch ev.Type {
		case EventTaskStart:
			onStatus(ev.Task)
		case EventTaskComplete, EventStep:
			onStatus(ev.Message)
		}
	})
	if err != nil {
		s.rollback(userMsg.ID, text)
		return Message{}, err
	}

	return s.adopt(res), nil
}

// AskOnce sends a non-streaming request, with the same transcript
// semantics as Ask.
func (s *Session) AskOnce(ctx context.Context, text, spotifyToken string) (Message, error) {
	userMsg := s.appendUser(text)

	resp, err := s.client.Send(ctx, Request{
		Message:          text,
		SessionID:        s.ID(),
		SpotifyUserToken: spotifyToken,
		Mode:             "auto",
	})
	if err != nil {
		s.rollback(userMsg.ID, text)
		return Message{}, err
	}

	return s.adopt(&Result{
		SessionID: resp.SessionID,
		Mode:      resp.Mode,
		Response:  resp.Response,
		Images:    resp.Images,
	}), nil
}

func (s *Session) appendUser(text string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	}
	s.mu.Lock()
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()
	return msg
}

func (s *Session) rollback(msgID, input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].ID == msgID {
			s.transcript = append(s.transcript[:i], s.transcript[i+1:]...)
			break
		}
	}
	s.lastInput = input
}

func (s *Session) adopt(res *Result) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Text:      res.Response,
		Timestamp: time.Now(),
		Images:    res.Images,
		Mode:      res.Mode,
	}

	s.mu.Lock()
	if s.id == "" && res.SessionID != "" {
		s.id = res.SessionID
	}
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()
	return msg
}
