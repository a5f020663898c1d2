package core

// BackendKind identifies which playback backend owns a session.
type BackendKind string

const (
	BackendEmbed     BackendKind = "embed"
	BackendSDK       BackendKind = "sdk"
	BackendAPIRemote BackendKind = "api-remote"
)

// Session describes the single system-wide playback session. One chat
// message's player owns playback at a time; starting another player
// replaces the session wholesale.
type Session struct {
	ActivePlaylistID string      `json:"active_playlist_id"`
	Backend          BackendKind `json:"backend"`
	Paused           bool        `json:"paused"`
	CurrentTrack     *TrackMeta  `json:"current_track,omitempty"`
	TrackIndex       int         `json:"track_index"`
	TotalTracks      int         `json:"total_tracks"`
}

// Active returns true if any playlist currently owns playback.
func (s *Session) Active() bool {
	return s != nil && s.ActivePlaylistID != ""
}

// Owns returns true if the given playlist id owns the session.
func (s *Session) Owns(playlistID string) bool {
	return s != nil && playlistID != "" && s.ActivePlaylistID == playlistID
}
