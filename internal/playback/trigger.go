// Package playback starts the target track when holding is confirmed,
// without ever blocking the frame loop.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds one playback attempt.
const DefaultTimeout = 5 * time.Second

// LastDeviceKey is the settings key remembering the device last played on.
const LastDeviceKey = "spotify.last_device"

var (
	// ErrUnavailable is reported by Err when no client was configured.
	ErrUnavailable = errors.New("playback: no client configured")
	// ErrNoDevice is reported by Err when discovery found no device.
	ErrNoDevice = errors.New("playback: no playback device found")
)

// Playback is what the service is currently playing.
type Playback struct {
	TrackURI  string
	IsPlaying bool
}

// Device is a target the service can play on.
type Device struct {
	ID       string
	Name     string
	IsActive bool
}

// Client is the playback service.
type Client interface {
	// CurrentPlayback returns nil when nothing is playing.
	CurrentPlayback(ctx context.Context) (*Playback, error)
	StartPlayback(ctx context.Context, deviceID, trackURI string) error
	Devices(ctx context.Context) ([]Device, error)
}

// Settings remembers small values between runs.
type Settings interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Options configures a Trigger.
type Options struct {
	TrackURI   string
	DeviceName string
	Timeout    time.Duration
	// Settings, when set, remembers the chosen device across runs.
	Settings Settings
	// OnStarted runs once per process after the first successful start.
	OnStarted func()
}

// Trigger fires playback attempts. Each attempt runs on its own goroutine
// and its outcome never flows back to the caller.
type Trigger struct {
	client    Client
	opts      Options
	available bool
	device    Device
	err       error

	startedOnce sync.Once
	wg          sync.WaitGroup
}

// New creates a Trigger and discovers a device once. A nil client, a failed
// discovery or an empty device list leave the trigger unavailable.
func New(ctx context.Context, client Client, opts Options) *Trigger {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	t := &Trigger{client: client, opts: opts}

	if client == nil {
		t.err = ErrUnavailable
		slog.Info("playback: disabled, no client configured")
		return t
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	devices, err := client.Devices(ctx)
	if err != nil {
		t.err = err
		slog.Warn("playback: device discovery failed, playback disabled", "err", err)
		return t
	}
	if len(devices) == 0 {
		t.err = ErrNoDevice
		slog.Warn("playback: no devices found, open Spotify on a device and restart")
		return t
	}

	t.device = t.pickDevice(devices)
	t.available = true
	slog.Info("playback: connected", "device", t.device.Name, "track", opts.TrackURI)

	if opts.Settings != nil {
		if err := opts.Settings.Set(LastDeviceKey, t.device.ID); err != nil {
			slog.Warn("playback: failed to remember device", "err", err)
		}
	}
	return t
}

// pickDevice prefers the configured name, then the remembered device, then
// the active one, then the first listed.
func (t *Trigger) pickDevice(devices []Device) Device {
	if t.opts.DeviceName != "" {
		for _, d := range devices {
			if d.Name == t.opts.DeviceName {
				return d
			}
		}
		slog.Warn("playback: configured device not found", "device", t.opts.DeviceName)
	}
	if t.opts.Settings != nil {
		if id, err := t.opts.Settings.Get(LastDeviceKey); err == nil && id != "" {
			for _, d := range devices {
				if d.ID == id {
					return d
				}
			}
		}
	}
	for _, d := range devices {
		if d.IsActive {
			return d
		}
	}
	return devices[0]
}

// Available reports whether a client and device were found at startup.
func (t *Trigger) Available() bool {
	return t.available
}

// Device returns the chosen device; zero when unavailable.
func (t *Trigger) Device() Device {
	return t.device
}

// Err returns why the trigger is unavailable, or nil.
func (t *Trigger) Err() error {
	return t.err
}

// Fire starts one playback attempt in the background and returns at once.
// It does nothing when the trigger is unavailable.
func (t *Trigger) Fire(ctx context.Context) {
	if !t.available {
		slog.Debug("playback: skipped, unavailable")
		return
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.attempt(ctx)
	}()
}

func (t *Trigger) attempt(ctx context.Context) {
	log := slog.With("attempt", uuid.NewString(), "track", t.opts.TrackURI)

	// Detached from the caller's cancellation so shutdown does not cut a
	// request short; the timeout still bounds it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.opts.Timeout)
	defer cancel()

	current, err := t.client.CurrentPlayback(ctx)
	if err != nil {
		log.Warn("playback: failed to read current playback", "err", err)
		return
	}
	if current != nil && current.IsPlaying && current.TrackURI == t.opts.TrackURI {
		log.Debug("playback: target already playing")
		return
	}

	if err := t.client.StartPlayback(ctx, t.device.ID, t.opts.TrackURI); err != nil {
		log.Warn("playback: failed to start", "device", t.device.Name, "err", err)
		return
	}
	log.Info("playback: started", "device", t.device.Name)

	if t.opts.OnStarted != nil {
		t.startedOnce.Do(t.opts.OnStarted)
	}
}

// Wait blocks until every fired attempt has finished.
func (t *Trigger) Wait() {
	t.wg.Wait()
}
