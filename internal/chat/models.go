package chat

import "time"

// Role identifies who produced a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation transcript.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time
	Images    []string
	Mode      string
}

// Request is the body of a chat request.
type Request struct {
	Message          string `json:"message"`
	SessionID        string `json:"session_id,omitempty"`
	SpotifyUserToken string `json:"spotify_user_token,omitempty"`
	Mode             string `json:"mode"`
	Stream           bool   `json:"stream"`
}

// Response is a non-streaming chat response.
type Response struct {
	Response  string   `json:"response"`
	SessionID string   `json:"session_id"`
	Images    []string `json:"images,omitempty"`
	Mode      string   `json:"mode,omitempty"`
}

// Event tags carried on streaming lines.
const (
	EventConnected    = "connected"
	EventMode         = "mode"
	EventTaskStart    = "task_start"
	EventTaskComplete = "task_complete"
	EventStep         = "step"
	EventComplete     = "complete"
	EventError        = "error"
)

// StreamEvent is one decoded event from a streaming response. Only
// the fields matching the tag are populated.
type StreamEvent struct {
	Type      string   `json:"type"`
	SessionID string   `json:"session_id,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Task      string   `json:"task,omitempty"`
	Message   string   `json:"message,omitempty"`
	Response  string   `json:"response,omitempty"`
	Images    []string `json:"images,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// HistoryMessage is one entry returned by the history endpoint.
type HistoryMessage struct {
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp"`
	Images    []string `json:"images,omitempty"`
	Mode      string   `json:"mode,omitempty"`
}

// HistoryResponse is the body returned by the history endpoint.
type HistoryResponse struct {
	Messages []HistoryMessage `json:"messages"`
}
