package positions

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spotify-positions.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSetGet(t *testing.T) {
	s := testStore(t)

	uri := "spotify:episode:abc"
	if err := s.Set(uri, 95*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := s.Get(uri)
	if !ok || got != 95*time.Second {
		t.Errorf("Get = %v, %v, want 95s, true", got, ok)
	}
}

func TestConsumeDeletesEntry(t *testing.T) {
	s := testStore(t)

	uri := "spotify:episode:abc"
	if err := s.Set(uri, 45*time.Second); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Consume(uri)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !ok || got != 45*time.Second {
		t.Errorf("Consume = %v, %v, want 45s, true", got, ok)
	}

	if _, ok := s.Get(uri); ok {
		t.Error("entry still present after Consume")
	}

	// Consuming again is a clean miss
	if _, ok, err := s.Consume(uri); err != nil || ok {
		t.Errorf("second Consume = ok=%v err=%v, want miss", ok, err)
	}
}

func TestPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spotify-positions.json")

	s1, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Set("spotify:episode:one", 31*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := s1.Set("spotify:episode:two", 72*time.Second); err != nil {
		t.Fatal(err)
	}

	s2, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if s2.Len() != 2 {
		t.Fatalf("Len after reload = %d, want 2", s2.Len())
	}
	got, ok := s2.Get("spotify:episode:two")
	if !ok || got != 72*time.Second {
		t.Errorf("Get after reload = %v, %v, want 72s, true", got, ok)
	}
}

func TestMissingFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "spotify-positions.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore on missing file: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spotify-positions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path); err == nil {
		t.Error("NewStore on corrupt file succeeded, want error")
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := testStore(t)
	if err := s.Delete("spotify:episode:missing"); err != nil {
		t.Errorf("Delete missing entry: %v", err)
	}
}
