package spotify

import (
	"context"

	"github.com/ayusman/performative/internal/playback"
)

// Player adapts Client to playback.Client.
type Player struct {
	client *Client
}

// NewPlayer wraps client.
func NewPlayer(client *Client) *Player {
	return &Player{client: client}
}

// CurrentPlayback implements playback.Client.
func (p *Player) CurrentPlayback(ctx context.Context) (*playback.Playback, error) {
	state, err := p.client.GetPlaybackState(ctx)
	if err != nil || state == nil {
		return nil, err
	}
	pb := &playback.Playback{IsPlaying: state.IsPlaying}
	if state.Item != nil {
		pb.TrackURI = state.Item.URI
	}
	return pb, nil
}

// StartPlayback implements playback.Client.
func (p *Player) StartPlayback(ctx context.Context, deviceID, trackURI string) error {
	return p.client.Play(ctx, deviceID, &PlayOptions{URIs: []string{trackURI}})
}

// Devices implements playback.Client. Restricted devices cannot be
// controlled through the API and are left out.
func (p *Player) Devices(ctx context.Context) ([]playback.Device, error) {
	devices, err := p.client.GetDevices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]playback.Device, 0, len(devices))
	for _, d := range devices {
		if d.IsRestricted {
			continue
		}
		out = append(out, playback.Device{ID: d.ID, Name: d.Name, IsActive: d.IsActive})
	}
	return out, nil
}
