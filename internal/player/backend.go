package player

import (
	"context"
	"time"

	"github.com/solho/setlist/internal/core"
)

// Backend is one concrete playback engine. Exactly one backend
// instance is active at a time; which one is a deployment-time choice.
type Backend interface {
	// LoadAndPlay loads the given URI and starts playback. It must be
	// idempotent for the URI that is already playing.
	LoadAndPlay(ctx context.Context, uri string) error

	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	TogglePlay(ctx context.Context) error
	Seek(ctx context.Context, offset time.Duration) error

	// OnReady registers a callback fired when the backend becomes
	// available for playback. May fire immediately if already available.
	OnReady(fn func())

	// OnStateChange registers a callback for playback state snapshots.
	OnStateChange(fn func(core.StateChange))

	// OnEnded registers a callback fired when the playing track ends.
	OnEnded(fn func(uri string))

	// Available reports whether the backend can accept play requests.
	Available() bool

	// NowPlaying returns display metadata for the loaded track, if known.
	NowPlaying() (core.TrackMeta, bool)

	Kind() core.BackendKind

	// Close tears down the backend and removes all listeners.
	Close() error
}
