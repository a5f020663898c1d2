package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/solho/setlist/internal/errors"
	"github.com/solho/setlist/internal/logging"
)

// Client talks to the playlist chat service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *log.Logger
}

// NewClient creates a chat client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall timeout: streaming responses stay open while the
		// service works. Per-request deadlines come from the context.
		httpClient: &http.Client{},
		log:        logging.Discard(),
	}
}

// SetLogger sets the client's logger.
func (c *Client) SetLogger(l *log.Logger) {
	if l != nil {
		c.log = l
	}
}

// Send performs a non-streaming chat request.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	req.Stream = false
	body, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}
	return &resp, nil
}

// Stream performs a streaming chat request, folding events into a
// Result. onEvent, when non-nil, sees every event in arrival order.
func (c *Client) Stream(ctx context.Context, req Request, onEvent func(StreamEvent)) (*Result, error) {
	req.Stream = true
	body, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	return NewDecoder(body).Decode(onEvent)
}

func (c *Client) post(ctx context.Context, req Request) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.log.Debug("chat request", "stream", req.Stream, "session", req.SessionID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrChatUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("chat service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return resp.Body, nil
}

// History fetches the transcript for a session. A missing or empty
// message list means no history, not an error.
func (c *Client) History(ctx context.Context, sessionID string) ([]Message, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/history/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrChatUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read history response: %w", err)
	}

	var hist HistoryResponse
	if err := json.Unmarshal(data, &hist); err != nil {
		return nil, fmt.Errorf("failed to parse history response: %w", err)
	}

	messages := make([]Message, 0, len(hist.Messages))
	for _, m := range hist.Messages {
		msg := Message{
			Role:   Role(m.Role),
			Text:   m.Content,
			Images: m.Images,
			Mode:   m.Mode,
		}
		if ts, err := time.Parse(time.RFC3339, m.Timestamp); err == nil {
			msg.Timestamp = ts
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
