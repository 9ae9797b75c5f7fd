package spotify

import "context"

// Device represents a Spotify Connect playback device.
type Device struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	IsActive     bool   `json:"is_active"`
	IsRestricted bool   `json:"is_restricted"`
}

type devicesResponse struct {
	Devices []Device `json:"devices"`
}

// Track is the subset of a track object the player needs.
type Track struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// PlaybackState represents the current playback state.
type PlaybackState struct {
	Device     Device `json:"device"`
	ProgressMS int    `json:"progress_ms"`
	IsPlaying  bool   `json:"is_playing"`
	Item       *Track `json:"item"`
}

// PlayOptions configures a play request.
type PlayOptions struct {
	ContextURI string   `json:"context_uri,omitempty"`
	URIs       []string `json:"uris,omitempty"`
	PositionMS int      `json:"position_ms,omitempty"`
}

// GetPlaybackState returns the current playback state, or nil when nothing
// is playing (Spotify answers 204).
func (c *Client) GetPlaybackState(ctx context.Context) (*PlaybackState, error) {
	var state *PlaybackState
	if err := c.get(ctx, "/me/player", &state); err != nil {
		return nil, err
	}
	return state, nil
}

// GetDevices returns the user's available devices.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	var resp devicesResponse
	if err := c.get(ctx, "/me/player/devices", &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// Play starts playback. An empty deviceID targets the active device.
func (c *Client) Play(ctx context.Context, deviceID string, opts *PlayOptions) error {
	// Spotify requires a JSON body even to resume.
	body := opts
	if body == nil {
		body = &PlayOptions{}
	}
	return c.put(ctx, withDevice("/me/player/play", deviceID), body)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context, deviceID string) error {
	return c.put(ctx, withDevice("/me/player/pause", deviceID), nil)
}
