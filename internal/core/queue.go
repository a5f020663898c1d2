package core

import "errors"

// NoCursor is the cursor value before any playback has started.
const NoCursor = -1

// Queue errors.
var (
	ErrCursorUnset = errors.New("queue cursor not set")
	ErrOutOfRange  = errors.New("queue index out of range")
)

// Queue is an ordered list of playable URIs plus a cursor.
// The cursor is NoCursor until playback starts, and stays within
// [0, Len) afterwards.
type Queue struct {
	uris   []string
	cursor int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{cursor: NoCursor}
}

// SetQueue replaces the queue contents and resets the cursor.
func (q *Queue) SetQueue(uris []string) {
	q.uris = make([]string, len(uris))
	copy(q.uris, uris)
	q.cursor = NoCursor
}

// SeekTo sets the cursor to the given index.
func (q *Queue) SeekTo(index int) error {
	if index < 0 || index >= len(q.uris) {
		return ErrOutOfRange
	}
	q.cursor = index
	return nil
}

// Advance moves the cursor by direction (+1 or -1), clamped to the
// queue bounds; it does not wrap. Calling Advance before the cursor is
// set is an error — SeekTo first.
func (q *Queue) Advance(direction int) (int, error) {
	if q.cursor == NoCursor {
		return NoCursor, ErrCursorUnset
	}

	next := q.cursor + direction
	if next < 0 {
		next = 0
	}
	if next > len(q.uris)-1 {
		next = len(q.uris) - 1
	}
	q.cursor = next
	return next, nil
}

// Cursor returns the current cursor index, or NoCursor.
func (q *Queue) Cursor() int {
	return q.cursor
}

// HasCursor returns true once playback has positioned the cursor.
func (q *Queue) HasCursor() bool {
	return q.cursor != NoCursor
}

// Current returns the URI under the cursor.
func (q *Queue) Current() (string, bool) {
	if q.cursor == NoCursor || q.cursor >= len(q.uris) {
		return "", false
	}
	return q.uris[q.cursor], true
}

// At returns the URI at the given index.
func (q *Queue) At(index int) (string, bool) {
	if index < 0 || index >= len(q.uris) {
		return "", false
	}
	return q.uris[index], true
}

// URIs returns a copy of the queued URIs.
func (q *Queue) URIs() []string {
	out := make([]string, len(q.uris))
	copy(out, q.uris)
	return out
}

// Len returns the number of queued URIs.
func (q *Queue) Len() int {
	return len(q.uris)
}

// IsEmpty returns true if the queue has no URIs.
func (q *Queue) IsEmpty() bool {
	return len(q.uris) == 0
}
