package core

import "time"

// endOfTrackWindow is how close to the end of a track a playback
// position must be before the track counts as finished.
const endOfTrackWindow = time.Second

// StateChange is a playback state snapshot emitted by a backend.
type StateChange struct {
	Paused     bool
	Position   time.Duration
	Duration   time.Duration
	PlayingURI string
}

// NearEnd returns true when the snapshot indicates the playing track
// is about to finish. Backends fire several of these snapshots around
// a track boundary, so callers must debounce.
func (s StateChange) NearEnd() bool {
	if s.Paused || s.Duration == 0 || s.Position == 0 {
		return false
	}
	return s.Duration-s.Position < endOfTrackWindow
}
