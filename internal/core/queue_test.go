package core

import (
	"errors"
	"testing"
)

func TestSetQueueResetsCursor(t *testing.T) {
	q := NewQueue()
	q.SetQueue([]string{"spotify:track:a", "spotify:track:b"})

	if q.HasCursor() {
		t.Error("HasCursor() = true after SetQueue, want false")
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}

	if err := q.SeekTo(1); err != nil {
		t.Fatalf("SeekTo(1) error: %v", err)
	}
	q.SetQueue([]string{"spotify:track:c"})
	if q.HasCursor() {
		t.Error("cursor survived SetQueue")
	}
}

func TestSeekToOutOfRange(t *testing.T) {
	q := NewQueue()
	q.SetQueue([]string{"spotify:track:a", "spotify:track:b"})

	tests := []struct {
		name  string
		index int
		err   error
	}{
		{"negative", -1, ErrOutOfRange},
		{"past end", 2, ErrOutOfRange},
		{"first", 0, nil},
		{"last", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := q.SeekTo(tt.index)
			if !errors.Is(err, tt.err) {
				t.Errorf("SeekTo(%d) error = %v, want %v", tt.index, err, tt.err)
			}
		})
	}
}

func TestAdvanceRequiresCursor(t *testing.T) {
	q := NewQueue()
	q.SetQueue([]string{"spotify:track:a"})

	if _, err := q.Advance(1); !errors.Is(err, ErrCursorUnset) {
		t.Errorf("Advance before SeekTo error = %v, want ErrCursorUnset", err)
	}
}

func TestAdvanceRoundTrip(t *testing.T) {
	q := NewQueue()
	q.SetQueue([]string{"a", "b", "c", "d"})
	if err := q.SeekTo(2); err != nil {
		t.Fatal(err)
	}

	next, err := q.Advance(1)
	if err != nil || next != 3 {
		t.Fatalf("Advance(+1) = %d, %v, want 3, nil", next, err)
	}
	prev, err := q.Advance(-1)
	if err != nil || prev != 2 {
		t.Fatalf("Advance(-1) = %d, %v, want 2, nil", prev, err)
	}
}

func TestAdvanceClampsAtBoundaries(t *testing.T) {
	q := NewQueue()
	q.SetQueue([]string{"a", "b"})

	if err := q.SeekTo(0); err != nil {
		t.Fatal(err)
	}
	if got, _ := q.Advance(-1); got != 0 {
		t.Errorf("Advance(-1) at start = %d, want 0", got)
	}

	if err := q.SeekTo(1); err != nil {
		t.Fatal(err)
	}
	if got, _ := q.Advance(1); got != 1 {
		t.Errorf("Advance(+1) at end = %d, want 1", got)
	}
}

func TestCurrent(t *testing.T) {
	q := NewQueue()
	if _, ok := q.Current(); ok {
		t.Error("Current() on empty queue returned ok")
	}

	q.SetQueue([]string{"spotify:track:a", "spotify:track:b"})
	if _, ok := q.Current(); ok {
		t.Error("Current() before SeekTo returned ok")
	}

	if err := q.SeekTo(1); err != nil {
		t.Fatal(err)
	}
	uri, ok := q.Current()
	if !ok || uri != "spotify:track:b" {
		t.Errorf("Current() = %q, %v, want spotify:track:b, true", uri, ok)
	}
}

func TestURIsReturnsCopy(t *testing.T) {
	q := NewQueue()
	q.SetQueue([]string{"a", "b"})

	uris := q.URIs()
	uris[0] = "mutated"

	got, _ := q.At(0)
	if got != "a" {
		t.Errorf("At(0) = %q after mutating URIs() copy, want %q", got, "a")
	}
}
