package player

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/solho/setlist/internal/core"
	"github.com/solho/setlist/internal/errors"
	"github.com/solho/setlist/internal/logging"
	"github.com/solho/setlist/internal/spotify/client"
)

const (
	// transferSettle is how long a playback transfer is given to land
	// on the target device before the first play is issued. Playing
	// too early silently targets the old device.
	transferSettle = 1500 * time.Millisecond

	defaultPollInterval = time.Second
)

// ConnectBackend plays through a Spotify Connect device using the Web
// API. Playback state is polled on an interval and fanned out as
// state snapshots.
type ConnectBackend struct {
	client       *client.Client
	log          *log.Logger
	pollInterval time.Duration

	mu          sync.Mutex
	deviceID    string
	available   bool
	transferred bool
	lastState   *client.PlaybackState
	lastURI     string
	done        chan struct{}

	ready   listeners[struct{}]
	changes listeners[core.StateChange]
	ended   listeners[string]
}

// NewConnectBackend creates a backend driving playback via the given
// API client.
func NewConnectBackend(c *client.Client) *ConnectBackend {
	return &ConnectBackend{
		client:       c,
		log:          logging.Discard(),
		pollInterval: defaultPollInterval,
		done:         make(chan struct{}),
	}
}

// SetLogger sets the backend's logger.
func (b *ConnectBackend) SetLogger(l *log.Logger) {
	if l != nil {
		b.log = l
	}
}

// SetDevice sets the target device for playback commands. Without a
// target the currently active device is used.
func (b *ConnectBackend) SetDevice(deviceID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deviceID = deviceID
	b.transferred = false
}

// Start begins polling playback state and marks the backend available.
func (b *ConnectBackend) Start(ctx context.Context) {
	b.mu.Lock()
	if b.available {
		b.mu.Unlock()
		return
	}
	b.available = true
	b.mu.Unlock()

	go b.pollLoop(ctx)
	b.ready.emit(struct{}{})
}

func (b *ConnectBackend) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case <-ticker.C:
			b.poll(ctx)
		}
	}
}

func (b *ConnectBackend) poll(ctx context.Context) {
	state, err := b.client.GetPlaybackState(ctx)
	if err != nil {
		b.log.Debug("state poll failed", "err", err)
		return
	}

	b.mu.Lock()
	prev := b.lastURI
	b.lastState = state
	var uri string
	if state != nil && state.Item != nil {
		uri = state.Item.URI
	}
	b.lastURI = uri
	b.mu.Unlock()

	if state == nil {
		return
	}

	s := core.StateChange{
		Paused:     !state.IsPlaying,
		Position:   time.Duration(state.ProgressMS) * time.Millisecond,
		PlayingURI: uri,
	}
	if state.Item != nil {
		s.Duration = time.Duration(state.Item.DurationMS) * time.Millisecond
	}
	b.changes.emit(s)

	// The device moved off the old track on its own.
	if prev != "" && uri != prev {
		b.ended.emit(prev)
	}
}

// LoadAndPlay starts playback of the URI on the target device,
// transferring playback there first when another device owns it.
func (b *ConnectBackend) LoadAndPlay(ctx context.Context, uri string) error {
	b.mu.Lock()
	if b.lastURI == uri && b.lastState != nil && b.lastState.IsPlaying {
		b.mu.Unlock()
		return nil
	}
	deviceID := b.deviceID
	needsTransfer := deviceID != "" && !b.transferred
	b.mu.Unlock()

	if needsTransfer {
		if err := b.ensureDevice(ctx, deviceID); err != nil {
			return err
		}
	}

	err := b.client.Play(ctx, deviceID, &client.PlayOptions{URIs: []string{uri}})
	if err != nil {
		return classifyPlayError(err)
	}

	b.mu.Lock()
	b.lastURI = uri
	b.mu.Unlock()
	return nil
}

// ensureDevice transfers playback to the target device when the
// globally active device is a different one, then waits for the
// transfer to settle.
func (b *ConnectBackend) ensureDevice(ctx context.Context, deviceID string) error {
	state, err := b.client.GetPlaybackState(ctx)
	if err != nil {
		return errors.Transient(err)
	}

	if state == nil || state.Device.ID != deviceID {
		b.log.Debug("transferring playback", "device", deviceID)
		if err := b.client.TransferPlayback(ctx, deviceID, false); err != nil {
			return classifyPlayError(err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(transferSettle):
		}
	}

	b.mu.Lock()
	b.transferred = true
	b.mu.Unlock()
	return nil
}

// Pause pauses playback.
func (b *ConnectBackend) Pause(ctx context.Context) error {
	b.mu.Lock()
	deviceID := b.deviceID
	b.mu.Unlock()
	return b.client.Pause(ctx, deviceID)
}

// Resume resumes playback.
func (b *ConnectBackend) Resume(ctx context.Context) error {
	b.mu.Lock()
	deviceID := b.deviceID
	b.mu.Unlock()
	return b.client.Play(ctx, deviceID, nil)
}

// TogglePlay flips between playing and paused based on the last
// polled state.
func (b *ConnectBackend) TogglePlay(ctx context.Context) error {
	b.mu.Lock()
	playing := b.lastState != nil && b.lastState.IsPlaying
	b.mu.Unlock()

	if playing {
		return b.Pause(ctx)
	}
	return b.Resume(ctx)
}

// Seek seeks to an offset in the current track.
func (b *ConnectBackend) Seek(ctx context.Context, offset time.Duration) error {
	b.mu.Lock()
	deviceID := b.deviceID
	b.mu.Unlock()
	return b.client.Seek(ctx, int(offset.Milliseconds()), deviceID)
}

// OnReady registers a ready callback.
func (b *ConnectBackend) OnReady(fn func()) {
	b.ready.add(func(struct{}) { fn() })
}

// OnStateChange registers a state snapshot callback.
func (b *ConnectBackend) OnStateChange(fn func(core.StateChange)) {
	b.changes.add(fn)
}

// OnEnded registers a track-end callback.
func (b *ConnectBackend) OnEnded(fn func(uri string)) {
	b.ended.add(fn)
}

// Available reports whether the backend has been started.
func (b *ConnectBackend) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.available
}

// NowPlaying returns metadata from the last polled state.
func (b *ConnectBackend) NowPlaying() (core.TrackMeta, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lastState == nil || b.lastState.Item == nil {
		return core.TrackMeta{}, false
	}
	meta := core.TrackMeta{Name: b.lastState.Item.Name}
	if len(b.lastState.Item.Artists) > 0 {
		meta.Artist = b.lastState.Item.Artists[0].Name
	}
	return meta, true
}

// Kind identifies this backend: a dedicated device when a target is
// set, otherwise remote control of whichever device is active.
func (b *ConnectBackend) Kind() core.BackendKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deviceID != "" {
		return core.BackendSDK
	}
	return core.BackendAPIRemote
}

// Close stops polling and removes all listeners.
func (b *ConnectBackend) Close() error {
	b.mu.Lock()
	select {
	case <-b.done:
	default:
		close(b.done)
	}
	b.available = false
	b.mu.Unlock()

	b.ready.clear()
	b.changes.clear()
	b.ended.clear()
	return nil
}

// classifyPlayError maps API failures onto the retry-or-skip policy:
// restriction errors (403) are worth one retry, a missing device is
// surfaced as such, anything else skips the track.
func classifyPlayError(err error) error {
	if client.IsNoActiveDeviceError(err) {
		return errors.Permanent(errors.ErrNoActiveDevice)
	}
	if client.IsRestrictionError(err) {
		return errors.Transient(err)
	}
	return errors.Permanent(err)
}
