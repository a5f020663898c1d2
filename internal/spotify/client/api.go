package client

import (
	"context"
	"strings"
)

// GetCurrentUser returns the current user's profile.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.Get(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetDevices returns the user's available playback devices.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	var resp DevicesResponse
	if err := c.Get(ctx, "/me/player/devices", &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// GetPlaybackState returns the current playback state.
func (c *Client) GetPlaybackState(ctx context.Context) (*PlaybackState, error) {
	var state PlaybackState
	if err := c.Get(ctx, "/me/player", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetTrack returns metadata for a single track by ID or URI.
func (c *Client) GetTrack(ctx context.Context, id string) (*Track, error) {
	var track Track
	if err := c.Get(ctx, "/tracks/"+stripURI(id), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// GetEpisode returns metadata for a single podcast episode by ID or URI.
func (c *Client) GetEpisode(ctx context.Context, id string) (*Episode, error) {
	var ep Episode
	if err := c.Get(ctx, "/episodes/"+stripURI(id), &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

// stripURI reduces a spotify:track:ID or spotify:episode:ID URI to its
// bare ID. Bare IDs pass through unchanged.
func stripURI(id string) string {
	if i := strings.LastIndex(id, ":"); i >= 0 {
		return id[i+1:]
	}
	return id
}
