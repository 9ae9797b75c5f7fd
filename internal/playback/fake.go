package playback

import (
	"context"
	"sync"
)

// FakeClient is an in-memory Client for tests. Starting the track makes it
// the current playback, like the real service.
type FakeClient struct {
	mu sync.Mutex

	DeviceList  []Device
	DevicesErr  error
	Current     *Playback
	CurrentErr  error
	StartErr    error
	StartBlock  chan struct{}
	currentHits int
	startHits   int
	lastDevice  string
}

// CurrentPlayback implements Client.
func (f *FakeClient) CurrentPlayback(ctx context.Context) (*Playback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentHits++
	if f.CurrentErr != nil {
		return nil, f.CurrentErr
	}
	if f.Current == nil {
		return nil, nil
	}
	p := *f.Current
	return &p, nil
}

// StartPlayback implements Client. When StartBlock is set it waits for the
// channel to close or ctx to end.
func (f *FakeClient) StartPlayback(ctx context.Context, deviceID, trackURI string) error {
	f.mu.Lock()
	block := f.StartBlock
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.startHits++
	f.lastDevice = deviceID
	if f.StartErr != nil {
		return f.StartErr
	}
	f.Current = &Playback{TrackURI: trackURI, IsPlaying: true}
	return nil
}

// Devices implements Client.
func (f *FakeClient) Devices(ctx context.Context) ([]Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DevicesErr != nil {
		return nil, f.DevicesErr
	}
	return f.DeviceList, nil
}

// CurrentCalls returns how many times CurrentPlayback was called.
func (f *FakeClient) CurrentCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentHits
}

// StartCalls returns how many times StartPlayback was called.
func (f *FakeClient) StartCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startHits
}

// LastDevice returns the device of the last StartPlayback call.
func (f *FakeClient) LastDevice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastDevice
}
