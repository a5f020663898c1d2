package player

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/solho/setlist/internal/core"
	"github.com/solho/setlist/internal/errors"
	"github.com/solho/setlist/internal/logging"
	"github.com/solho/setlist/internal/positions"
)

// State is the controller's lifecycle state.
type State int

const (
	Idle State = iota
	Connecting
	Playing
	Paused
	Advancing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Advancing:
		return "advancing"
	}
	return "unknown"
}

const (
	// saveThreshold is how far into an episode playback must be before
	// the position is worth persisting.
	saveThreshold = 30 * time.Second

	defaultRetryDelay   = time.Second
	defaultAdvanceDelay = 500 * time.Millisecond
	defaultRearmDelay   = 2 * time.Second
	defaultPlayTimeout  = 30 * time.Second
)

// pendingPlay is a deferred play request recorded because the backend
// was not yet available. It is consumed exactly once.
type pendingPlay struct {
	token uint64
	index int
}

// Controller is the process-wide playback state machine. It owns the
// active backend, the track queue and the single playback session, and
// drives retry-on-failed-start, auto-advance at track end and
// episode resume positions.
//
// Every asynchronous callback is keyed by a session token incremented
// on each PlayTracks call; callbacks carrying a stale token are
// discarded, which is the sole ordering guard against late events from
// superseded playback attempts.
type Controller struct {
	backend Backend
	store   *positions.Store
	log     *log.Logger

	mu      sync.Mutex
	state   State
	queue   *core.Queue
	session core.Session
	token   uint64
	pending *pendingPlay

	// skipping debounces the near-end condition, which fires on
	// several consecutive state snapshots around a track boundary.
	skipping bool

	retryDelay   time.Duration
	advanceDelay time.Duration
	rearmDelay   time.Duration
	playTimeout  time.Duration
}

// NewController creates a controller driving the given backend. The
// position store may be nil when resume positions are not wanted.
func NewController(backend Backend, store *positions.Store) *Controller {
	c := &Controller{
		backend:      backend,
		store:        store,
		log:          logging.Discard(),
		queue:        core.NewQueue(),
		retryDelay:   defaultRetryDelay,
		advanceDelay: defaultAdvanceDelay,
		rearmDelay:   defaultRearmDelay,
		playTimeout:  defaultPlayTimeout,
	}

	backend.OnReady(c.handleReady)
	backend.OnStateChange(c.handleStateChange)
	backend.OnEnded(c.handleEnded)

	return c
}

// SetLogger sets the controller's logger.
func (c *Controller) SetLogger(l *log.Logger) {
	if l != nil {
		c.log = l
	}
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the current playback session.
func (c *Controller) Session() core.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// PlayTracks starts playback of a new queue for the given playlist id.
// If the backend is not yet available the request is recorded as a
// pending intent and honored once, when the backend becomes ready; a
// newer PlayTracks call overwrites an outstanding intent.
func (c *Controller) PlayTracks(ctx context.Context, playlistID string, uris []string, startIndex int) error {
	if len(uris) == 0 {
		return core.ErrOutOfRange
	}
	if startIndex < 0 || startIndex >= len(uris) {
		return core.ErrOutOfRange
	}

	c.mu.Lock()
	c.token++
	tok := c.token
	c.queue.SetQueue(uris)
	c.skipping = false
	c.session = core.Session{
		ActivePlaylistID: playlistID,
		Backend:          c.backend.Kind(),
		Paused:           false,
		TrackIndex:       startIndex,
		TotalTracks:      len(uris),
	}

	if !c.backend.Available() {
		c.pending = &pendingPlay{token: tok, index: startIndex}
		c.state = Connecting
		c.mu.Unlock()
		c.log.Debug("backend not available, queued pending play", "playlist", playlistID, "index", startIndex)
		return nil
	}
	c.pending = nil
	c.mu.Unlock()

	return c.startAt(ctx, tok, startIndex)
}

// TogglePlay flips between playing and paused. No-op when idle.
func (c *Controller) TogglePlay(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Idle || c.state == Connecting {
		c.mu.Unlock()
		return nil
	}
	paused := !c.session.Paused
	c.session.Paused = paused
	if paused {
		c.state = Paused
	} else {
		c.state = Playing
	}
	c.mu.Unlock()

	return c.backend.TogglePlay(ctx)
}

// NextTrack advances to the next queued track. At the end of the queue
// it stays on the boundary track.
func (c *Controller) NextTrack(ctx context.Context) error {
	return c.step(ctx, 1)
}

// PreviousTrack moves to the previous queued track. At the start of
// the queue it stays on the boundary track.
func (c *Controller) PreviousTrack(ctx context.Context) error {
	return c.step(ctx, -1)
}

func (c *Controller) step(ctx context.Context, direction int) error {
	c.mu.Lock()
	if c.state == Idle || c.state == Connecting {
		c.mu.Unlock()
		return nil
	}

	before := c.queue.Cursor()
	next, err := c.queue.Advance(direction)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if next == before {
		// Clamped at the boundary, nothing to do.
		c.mu.Unlock()
		return nil
	}

	c.token++
	tok := c.token
	c.pending = nil
	c.skipping = false
	c.state = Advancing
	c.mu.Unlock()

	return c.startAt(ctx, tok, next)
}

// startAt attempts to start playback at index, retrying a transient
// failure once and skipping forward on permanent ones until a track
// succeeds or the queue is exhausted. The iteration count is bounded
// by the queue length.
func (c *Controller) startAt(ctx context.Context, tok uint64, index int) error {
	c.mu.Lock()
	length := c.queue.Len()
	c.mu.Unlock()

	for i := index; i < length; i++ {
		if c.stale(tok) {
			return nil
		}

		uri, ok := c.at(i)
		if !ok {
			break
		}

		err := c.backend.LoadAndPlay(ctx, uri)
		if err != nil && errors.IsTransient(err) {
			c.log.Debug("transient start failure, retrying once", "uri", uri, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
			if c.stale(tok) {
				return nil
			}
			err = c.backend.LoadAndPlay(ctx, uri)
		}
		if err != nil {
			c.log.Warn("track failed to start, skipping", "uri", uri, "err", err)
			continue
		}

		c.mu.Lock()
		if tok != c.token {
			c.mu.Unlock()
			return nil
		}
		_ = c.queue.SeekTo(i)
		c.state = Playing
		c.session.Paused = false
		c.session.TrackIndex = i
		if meta, ok := c.backend.NowPlaying(); ok {
			c.session.CurrentTrack = &meta
		}
		c.mu.Unlock()
		return nil
	}

	// Queue exhausted without a playable track.
	c.mu.Lock()
	if tok == c.token {
		c.state = Idle
		c.session = core.Session{}
	}
	c.mu.Unlock()
	return errors.ErrNoPlayableTracks
}

// handleReady consumes an outstanding pending-play intent exactly
// once. Later availability changes find no intent and do nothing.
func (c *Controller) handleReady() {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	if p == nil || p.token != c.token {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.playTimeout)
	defer cancel()
	if err := c.startAt(ctx, p.token, p.index); err != nil {
		c.log.Warn("pending play failed", "err", err)
	}
}

func (c *Controller) handleStateChange(s core.StateChange) {
	c.mu.Lock()
	if c.state == Idle || c.state == Connecting {
		c.mu.Unlock()
		return
	}
	tok := c.token
	c.session.Paused = s.Paused
	if s.Paused {
		if c.state == Playing {
			c.state = Paused
		}
	} else if c.state == Paused {
		c.state = Playing
	}
	if meta, ok := c.backend.NowPlaying(); ok {
		c.session.CurrentTrack = &meta
	}
	c.mu.Unlock()

	c.persistPosition(tok, s)

	if s.NearEnd() {
		c.maybeAdvance(tok)
	}
}

func (c *Controller) handleEnded(uri string) {
	c.mu.Lock()
	tok := c.token
	c.mu.Unlock()

	if c.store != nil && core.IsEpisode(uri) {
		_ = c.store.Delete(uri)
	}
	c.maybeAdvance(tok)
}

// maybeAdvance fires at most one auto-advance per track boundary. The
// skipping guard absorbs the repeated near-end snapshots and is
// re-armed only after the backend has settled into the next track.
func (c *Controller) maybeAdvance(tok uint64) {
	c.mu.Lock()
	if tok != c.token || c.skipping {
		c.mu.Unlock()
		return
	}
	c.skipping = true
	index := c.queue.Cursor()
	last := c.queue.Len() - 1
	c.mu.Unlock()

	if index >= last {
		c.log.Debug("reached end of playlist")
		c.mu.Lock()
		if tok == c.token {
			c.state = Idle
			c.skipping = false
		}
		c.mu.Unlock()
		return
	}

	time.AfterFunc(c.advanceDelay, func() {
		c.mu.Lock()
		if tok != c.token {
			c.mu.Unlock()
			return
		}
		c.state = Advancing
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), c.playTimeout)
		defer cancel()
		if err := c.startAt(ctx, tok, index+1); err != nil {
			c.log.Warn("auto-advance failed", "err", err)
		}

		time.AfterFunc(c.rearmDelay, func() {
			c.mu.Lock()
			if tok == c.token {
				c.skipping = false
			}
			c.mu.Unlock()
		})
	})
}

// persistPosition saves and restores episode resume positions. Saves
// happen past the 30s threshold (reset to zero right at the end so a
// finished episode restarts cleanly); a stored position is applied as
// a single seek when the episode is still near its start, then
// discarded so it cannot seek again on the next snapshot.
func (c *Controller) persistPosition(tok uint64, s core.StateChange) {
	if c.store == nil || c.backend.Kind() != core.BackendEmbed {
		return
	}
	if s.PlayingURI == "" || !core.IsEpisode(s.PlayingURI) {
		return
	}

	if s.Position > saveThreshold {
		pos := s.Position
		if s.Duration > 0 && s.Duration-s.Position < time.Second {
			pos = 0
		}
		if err := c.store.Set(s.PlayingURI, pos); err != nil {
			c.log.Warn("failed to save position", "uri", s.PlayingURI, "err", err)
		}
		return
	}

	stored, ok, err := c.store.Consume(s.PlayingURI)
	if err != nil {
		c.log.Warn("failed to consume position", "uri", s.PlayingURI, "err", err)
		return
	}
	if !ok || c.stale(tok) {
		return
	}

	// A stored offset past the track's reported duration would seek
	// out of range; clamp it to just before the end.
	if s.Duration > 0 && stored >= s.Duration {
		stored = s.Duration - time.Second
		if stored < 0 {
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.playTimeout)
	defer cancel()
	c.log.Debug("restoring position", "uri", s.PlayingURI, "offset", stored)
	if err := c.backend.Seek(ctx, stored); err != nil {
		c.log.Warn("restore seek failed", "uri", s.PlayingURI, "err", err)
	}
}

func (c *Controller) stale(tok uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tok != c.token
}

func (c *Controller) at(i int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.At(i)
}

// Close tears down the backend.
func (c *Controller) Close() error {
	return c.backend.Close()
}
