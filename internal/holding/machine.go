// Package holding debounces the per-frame holding signal into a stable
// state and decides when the presentation switches to the face cam.
package holding

import "time"

// Default timings.
const (
	DefaultHoldThreshold = 200 * time.Millisecond
	DefaultDisplayDelay  = time.Second
)

// Status is the debounced holding status.
type Status int

const (
	// NotHolding is the initial status.
	NotHolding Status = iota
	// Pending means the signal has been seen but not yet confirmed.
	Pending
	// Holding means the signal has persisted past the hold threshold.
	Holding
)

func (s Status) String() string {
	switch s {
	case NotHolding:
		return "not_holding"
	case Pending:
		return "pending"
	case Holding:
		return "holding"
	default:
		return "unknown"
	}
}

// Display selects which camera surface the presentation layer shows.
type Display int

const (
	// FullCamera shows the full camera feed.
	FullCamera Display = iota
	// PictureInPicture shows the small labelled face cam.
	PictureInPicture
)

func (d Display) String() string {
	if d == PictureInPicture {
		return "picture_in_picture"
	}
	return "full_camera"
}

// State is a snapshot of the machine. Zero times mean "not set".
type State struct {
	Status Status
	// PendingSince is when the current run of holding frames began.
	PendingSince time.Time
	// SpotifyModeSince is when Holding was entered; zero outside Holding.
	SpotifyModeSince time.Time
}

// Transition reports the edges crossed by one Update.
type Transition struct {
	// Confirmed is the HoldingConfirmed edge: set only on the frame that
	// entered Holding.
	Confirmed bool
	// Released is set on the frame that left Holding.
	Released bool
}

// Machine is the holding debounce state machine. It is not safe for
// concurrent use; the frame loop is its only writer.
type Machine struct {
	holdThreshold time.Duration
	displayDelay  time.Duration
	state         State
}

// NewMachine creates a Machine in NotHolding. Negative durations fall back
// to the defaults.
func NewMachine(holdThreshold, displayDelay time.Duration) *Machine {
	m := &Machine{}
	m.SetThresholds(holdThreshold, displayDelay)
	return m
}

// SetThresholds replaces both durations without touching the current state.
func (m *Machine) SetThresholds(holdThreshold, displayDelay time.Duration) {
	if holdThreshold < 0 {
		holdThreshold = DefaultHoldThreshold
	}
	if displayDelay < 0 {
		displayDelay = DefaultDisplayDelay
	}
	m.holdThreshold = holdThreshold
	m.displayDelay = displayDelay
}

// HoldThreshold returns how long the signal must persist before Holding.
func (m *Machine) HoldThreshold() time.Duration { return m.holdThreshold }

// DisplayDelay returns how long Holding must last before the face cam shows.
func (m *Machine) DisplayDelay() time.Duration { return m.displayDelay }

// Snapshot returns the current state.
func (m *Machine) Snapshot() State { return m.state }

// IsHolding reports whether the status is Holding.
func (m *Machine) IsHolding() bool { return m.state.Status == Holding }

// Update advances the machine by one frame.
//
// The first holding frame only records PendingSince; confirmation needs a
// later frame more than the hold threshold after it. Any non-holding frame
// resets the run, so flicker is not accumulated.
func (m *Machine) Update(signal bool, now time.Time) Transition {
	if !signal {
		wasHolding := m.state.Status == Holding
		m.state = State{Status: NotHolding}
		return Transition{Released: wasHolding}
	}

	switch m.state.Status {
	case Holding:
		return Transition{}
	case NotHolding:
		m.state.Status = Pending
		m.state.PendingSince = now
		return Transition{}
	}

	if now.Sub(m.state.PendingSince) > m.holdThreshold {
		m.state.Status = Holding
		m.state.SpotifyModeSince = now
		return Transition{Confirmed: true}
	}
	return Transition{}
}

// DisplayMode returns the camera surface to show at now.
func (m *Machine) DisplayMode(now time.Time) Display {
	if m.state.Status != Holding {
		return FullCamera
	}
	if now.Sub(m.state.SpotifyModeSince) >= m.displayDelay {
		return PictureInPicture
	}
	return FullCamera
}
