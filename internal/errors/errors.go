package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoActiveDevice   = errors.New("no active device")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrNoPlayableTracks = errors.New("no playable tracks")
	ErrPremiumRequired  = errors.New("spotify premium required")
	ErrRateLimited      = errors.New("rate limited")
	ErrStreamProtocol   = errors.New("malformed stream event")
	ErrStreamIncomplete = errors.New("stream ended without completing")
	ErrChatUnavailable  = errors.New("chat service unavailable")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// TransientPlayback wraps a track-start failure that is worth one retry.
type TransientPlayback struct {
	Err error
}

func (e *TransientPlayback) Error() string {
	return fmt.Sprintf("transient playback error: %v", e.Err)
}

func (e *TransientPlayback) Unwrap() error {
	return e.Err
}

// PermanentPlayback wraps a track-start failure that cannot succeed;
// the controller skips to the next track.
type PermanentPlayback struct {
	Err error
}

func (e *PermanentPlayback) Error() string {
	return fmt.Sprintf("permanent playback error: %v", e.Err)
}

func (e *PermanentPlayback) Unwrap() error {
	return e.Err
}

// Transient marks an error as retryable once.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientPlayback{Err: err}
}

// Permanent marks an error as skip-to-next.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentPlayback{Err: err}
}

// IsTransient returns true if the error allows one retry before skipping.
func IsTransient(err error) bool {
	var t *TransientPlayback
	return errors.As(err, &t)
}

// SetlistError wraps an error with a user-friendly suggestion.
type SetlistError struct {
	Err        error
	Suggestion string
}

func (e *SetlistError) Error() string {
	return e.Err.Error()
}

func (e *SetlistError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &SetlistError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var slErr *SetlistError
	if errors.As(err, &slErr) && slErr.Suggestion != "" {
		return slErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Authentication errors
	if errors.Is(err, ErrNotAuthenticated) || strings.Contains(errStr, "not authenticated") ||
		strings.Contains(errStr, "invalid access token") || strings.Contains(errStr, "token expired") {
		return "Run 'setlist auth login' to authenticate with Spotify"
	}

	// Device errors
	if errors.Is(err, ErrNoActiveDevice) || strings.Contains(errStr, "no active device") {
		return "Open Spotify on a device and start playing, or use --device to specify one"
	}

	if errors.Is(err, ErrDeviceNotFound) || strings.Contains(errStr, "device not found") {
		return "Run 'setlist devices' to see available devices"
	}

	// Playback errors
	if errors.Is(err, ErrNoPlayableTracks) {
		return "None of the tracks in this playlist could be started; try a different request"
	}

	// Premium errors
	if errors.Is(err, ErrPremiumRequired) || strings.Contains(errStr, "premium required") ||
		strings.Contains(errStr, "restricted device") {
		return "This feature requires Spotify Premium"
	}

	// Rate limiting
	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment and try again"
	}

	// Chat service errors
	if errors.Is(err, ErrChatUnavailable) || errors.Is(err, ErrStreamIncomplete) ||
		errors.Is(err, ErrStreamProtocol) {
		return "The playlist service didn't respond properly. Try again in a moment"
	}

	// Network errors
	if strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || strings.Contains(errStr, "config") {
		return "Run 'setlist auth login' to set up your configuration"
	}

	// Server errors
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "Spotify is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
