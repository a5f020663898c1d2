package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTransientWrapping(t *testing.T) {
	base := errors.New("restriction violated")
	err := Transient(base)

	if !IsTransient(err) {
		t.Error("IsTransient(Transient(err)) = false")
	}
	if !errors.Is(err, base) {
		t.Error("Transient does not unwrap to base error")
	}
	if IsTransient(Permanent(base)) {
		t.Error("IsTransient(Permanent(err)) = true")
	}
}

func TestTransientNil(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) != nil")
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) != nil")
	}
}

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantSub string
	}{
		{"not authenticated", ErrNotAuthenticated, "auth login"},
		{"no active device", ErrNoActiveDevice, "Open Spotify"},
		{"no playable tracks", ErrNoPlayableTracks, "different request"},
		{"wrapped", fmt.Errorf("play failed: %w", ErrNoActiveDevice), "Open Spotify"},
		{"stream incomplete", ErrStreamIncomplete, "didn't respond properly"},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.wantSub == "" {
				if got != "" {
					t.Errorf("GetSuggestion() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantSub) {
				t.Errorf("GetSuggestion() = %q, want substring %q", got, tt.wantSub)
			}
		})
	}
}

func TestWithSuggestionOverrides(t *testing.T) {
	err := WithSuggestion(ErrNoActiveDevice, "custom advice")
	if got := GetSuggestion(err); got != "custom advice" {
		t.Errorf("GetSuggestion() = %q, want custom advice", got)
	}
}
