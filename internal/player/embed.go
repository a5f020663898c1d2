package player

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/solho/setlist/internal/core"
	"github.com/solho/setlist/internal/embedhost"
	"github.com/solho/setlist/internal/errors"
	"github.com/solho/setlist/internal/logging"
)

// EmbedBackend plays through the Spotify iframe widget hosted by an
// embedhost.Host. The widget becomes available asynchronously once the
// browser page has loaded the iframe API and reported ready.
type EmbedBackend struct {
	host *embedhost.Host
	log  *log.Logger

	mu         sync.Mutex
	available  bool
	currentURI string
	lastState  core.StateChange
	resolver   MetaResolver
	meta       core.TrackMeta
	metaURI    string

	ready   listeners[struct{}]
	changes listeners[core.StateChange]
	ended   listeners[string]
}

// NewEmbedBackend wires a backend to the given host.
func NewEmbedBackend(host *embedhost.Host) *EmbedBackend {
	b := &EmbedBackend{
		host: host,
		log:  logging.Discard(),
	}
	host.OnEvent(b.handleEvent)
	return b
}

// SetLogger sets the backend's logger.
func (b *EmbedBackend) SetLogger(l *log.Logger) {
	if l != nil {
		b.log = l
	}
}

// SetResolver installs a metadata resolver. The iframe API does not
// report track names, so without a resolver NowPlaying is unknown.
func (b *EmbedBackend) SetResolver(r MetaResolver) {
	b.mu.Lock()
	b.resolver = r
	b.mu.Unlock()
}

// LoadAndPlay loads the URI into the widget. Loading the URI that is
// already playing is a no-op; a different URI replaces the widget's
// content without recreating it, so playback continuity is kept.
func (b *EmbedBackend) LoadAndPlay(ctx context.Context, uri string) error {
	b.mu.Lock()
	if b.available && b.currentURI == uri && !b.lastState.Paused {
		b.mu.Unlock()
		return nil
	}
	b.currentURI = uri
	b.mu.Unlock()

	if err := b.host.Send(embedhost.Command{Cmd: "load", URI: uri}); err != nil {
		// A dropped widget connection may come back; worth one retry.
		return errors.Transient(err)
	}

	b.resolveMeta(uri)
	return nil
}

func (b *EmbedBackend) resolveMeta(uri string) {
	b.mu.Lock()
	resolver := b.resolver
	b.mu.Unlock()
	if resolver == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		meta, err := resolver.Resolve(ctx, uri)
		if err != nil {
			b.log.Debug("metadata lookup failed", "uri", uri, "err", err)
			return
		}
		b.mu.Lock()
		b.meta = meta
		b.metaURI = uri
		b.mu.Unlock()
	}()
}

// Pause pauses the widget.
func (b *EmbedBackend) Pause(ctx context.Context) error {
	return b.host.Send(embedhost.Command{Cmd: "pause"})
}

// Resume resumes the widget.
func (b *EmbedBackend) Resume(ctx context.Context) error {
	return b.host.Send(embedhost.Command{Cmd: "resume"})
}

// TogglePlay toggles the widget between playing and paused.
func (b *EmbedBackend) TogglePlay(ctx context.Context) error {
	return b.host.Send(embedhost.Command{Cmd: "toggle"})
}

// Seek seeks the widget to the given offset. The iframe API takes
// seconds, not milliseconds.
func (b *EmbedBackend) Seek(ctx context.Context, offset time.Duration) error {
	return b.host.Send(embedhost.Command{Cmd: "seek", Seconds: offset.Seconds()})
}

// OnReady registers a ready callback.
func (b *EmbedBackend) OnReady(fn func()) {
	b.ready.add(func(struct{}) { fn() })
}

// OnStateChange registers a state snapshot callback.
func (b *EmbedBackend) OnStateChange(fn func(core.StateChange)) {
	b.changes.add(fn)
}

// OnEnded registers a track-end callback.
func (b *EmbedBackend) OnEnded(fn func(uri string)) {
	b.ended.add(fn)
}

// Available reports whether the widget has reported ready.
func (b *EmbedBackend) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.available && b.host.Connected()
}

// NowPlaying returns resolved metadata for the loaded URI. The iframe
// API itself exposes no track names, so this is only known when a
// resolver is installed and its lookup has completed.
func (b *EmbedBackend) NowPlaying() (core.TrackMeta, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.metaURI == "" || b.metaURI != b.currentURI {
		return core.TrackMeta{}, false
	}
	return b.meta, true
}

// Kind identifies this backend.
func (b *EmbedBackend) Kind() core.BackendKind {
	return core.BackendEmbed
}

// Close tears down the backend and removes all listeners.
func (b *EmbedBackend) Close() error {
	b.ready.clear()
	b.changes.clear()
	b.ended.clear()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.host.Shutdown(ctx)
}

func (b *EmbedBackend) handleEvent(ev embedhost.Event) {
	switch ev.Event {
	case "ready":
		b.mu.Lock()
		first := !b.available
		b.available = true
		b.mu.Unlock()
		if first {
			b.log.Debug("embed widget ready")
		}
		b.ready.emit(struct{}{})

	case "playback_update":
		s := core.StateChange{
			Paused:     ev.Data.IsPaused,
			Position:   time.Duration(ev.Data.PositionMS) * time.Millisecond,
			Duration:   time.Duration(ev.Data.DurationMS) * time.Millisecond,
			PlayingURI: ev.Data.PlayingURI,
		}
		b.mu.Lock()
		b.lastState = s
		if s.PlayingURI != "" {
			b.currentURI = s.PlayingURI
		}
		b.mu.Unlock()
		b.changes.emit(s)

	case "error":
		b.log.Warn("embed widget error", "message", ev.Message)
	}
}
