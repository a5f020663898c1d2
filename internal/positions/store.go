package positions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// DefaultFileName is the default name for the positions file.
	DefaultFileName = "spotify-positions.json"
)

// Store persists last-known playback offsets per track URI. Offsets
// are stored as elapsed milliseconds, keyed by URI, in a single JSON
// document. Entries live until consumed; there is no TTL.
type Store struct {
	path string

	mu        sync.Mutex
	positions map[string]int64
}

// NewStore creates a position store backed by the file at path and
// loads any previously saved positions. If path is empty, the default
// location (~/.config/setlist/spotify-positions.json) is used.
func NewStore(path string) (*Store, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(configDir, "setlist", DefaultFileName)
	}

	s := &Store{
		path:      path,
		positions: make(map[string]int64),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No positions saved yet
		}
		return fmt.Errorf("failed to read positions file: %w", err)
	}

	if err := json.Unmarshal(data, &s.positions); err != nil {
		return fmt.Errorf("failed to parse positions file: %w", err)
	}
	return nil
}

// flush writes the current mapping to disk. Callers hold s.mu.
func (s *Store) flush() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.positions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write positions file: %w", err)
	}
	return nil
}

// Get returns the stored offset for a URI.
func (s *Store) Get(uri string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms, ok := s.positions[uri]
	if !ok {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

// Set records an offset for a URI and persists the mapping.
func (s *Store) Set(uri string, offset time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions[uri] = offset.Milliseconds()
	return s.flush()
}

// Consume returns the stored offset for a URI and deletes it, so the
// offset is applied as a seek at most once.
func (s *Store) Consume(uri string) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms, ok := s.positions[uri]
	if !ok {
		return 0, false, nil
	}
	delete(s.positions, uri)
	if err := s.flush(); err != nil {
		return 0, false, err
	}
	return time.Duration(ms) * time.Millisecond, true, nil
}

// Delete removes the entry for a URI, if any.
func (s *Store) Delete(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.positions[uri]; !ok {
		return nil
	}
	delete(s.positions, uri)
	return s.flush()
}

// Len returns the number of stored positions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.positions)
}

// Path returns the path to the positions file.
func (s *Store) Path() string {
	return s.path
}
