package core

import (
	"regexp"
	"strings"
)

// URIKind indicates the kind of content a Spotify URI refers to.
type URIKind string

const (
	KindTrack   URIKind = "track"
	KindEpisode URIKind = "episode"
	KindUnknown URIKind = "unknown"
)

// Kind returns the content kind encoded in a URI of the form
// provider:kind:id, e.g. "spotify:episode:abc123".
func Kind(uri string) URIKind {
	parts := strings.Split(uri, ":")
	if len(parts) != 3 {
		return KindUnknown
	}
	switch parts[1] {
	case "track":
		return KindTrack
	case "episode":
		return KindEpisode
	}
	return KindUnknown
}

// IsEpisode returns true if the URI refers to a podcast episode.
func IsEpisode(uri string) bool {
	return Kind(uri) == KindEpisode
}

var (
	trackURLRe   = regexp.MustCompile(`https://open\.spotify\.com/track/[a-zA-Z0-9]+`)
	episodeURLRe = regexp.MustCompile(`https://open\.spotify\.com/episode/[a-zA-Z0-9]+`)
)

// ExtractURIs pulls playable Spotify URIs out of assistant message text.
// Track URLs come first, then episode URLs, each converted to URI form.
func ExtractURIs(text string) []string {
	var uris []string

	for _, u := range trackURLRe.FindAllString(text, -1) {
		id := strings.TrimPrefix(u, "https://open.spotify.com/track/")
		uris = append(uris, "spotify:track:"+id)
	}
	for _, u := range episodeURLRe.FindAllString(text, -1) {
		id := strings.TrimPrefix(u, "https://open.spotify.com/episode/")
		uris = append(uris, "spotify:episode:"+id)
	}

	return uris
}

// TrackMeta holds display metadata for the currently playing track.
type TrackMeta struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
}
