package player

import (
	"context"
	"sync"

	"github.com/solho/setlist/internal/core"
	"github.com/solho/setlist/internal/spotify/client"
)

// MetaResolver looks up display metadata for a playable URI.
type MetaResolver interface {
	Resolve(ctx context.Context, uri string) (core.TrackMeta, error)
}

// APIResolver resolves metadata through the Web API, caching results
// so repeated lookups for the same queue cost one request each.
type APIResolver struct {
	client *client.Client

	mu    sync.Mutex
	cache map[string]core.TrackMeta
}

// NewAPIResolver creates a resolver backed by the given client.
func NewAPIResolver(c *client.Client) *APIResolver {
	return &APIResolver{
		client: c,
		cache:  make(map[string]core.TrackMeta),
	}
}

// Resolve returns metadata for a track or episode URI.
func (r *APIResolver) Resolve(ctx context.Context, uri string) (core.TrackMeta, error) {
	r.mu.Lock()
	if meta, ok := r.cache[uri]; ok {
		r.mu.Unlock()
		return meta, nil
	}
	r.mu.Unlock()

	var meta core.TrackMeta
	if core.IsEpisode(uri) {
		ep, err := r.client.GetEpisode(ctx, uri)
		if err != nil {
			return core.TrackMeta{}, err
		}
		meta = core.TrackMeta{Name: ep.Name, Artist: ep.Show.Name}
	} else {
		track, err := r.client.GetTrack(ctx, uri)
		if err != nil {
			return core.TrackMeta{}, err
		}
		meta = core.TrackMeta{Name: track.Name}
		if len(track.Artists) > 0 {
			meta.Artist = track.Artists[0].Name
		}
	}

	r.mu.Lock()
	r.cache[uri] = meta
	r.mu.Unlock()
	return meta, nil
}
