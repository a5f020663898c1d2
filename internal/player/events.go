package player

import "sync"

// listeners is a typed callback registration list. Backends own one
// list per event kind and clear them on Close so a replaced backend
// instance cannot keep firing into stale receivers.
type listeners[T any] struct {
	mu  sync.Mutex
	fns []func(T)
}

func (l *listeners[T]) add(fn func(T)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fns = append(l.fns, fn)
}

func (l *listeners[T]) emit(v T) {
	l.mu.Lock()
	fns := make([]func(T), len(l.fns))
	copy(fns, l.fns)
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (l *listeners[T]) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fns = nil
}
