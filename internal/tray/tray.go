// Package tray shows the detector status in the system tray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the optional system tray menu.
type Tray struct {
	onToggle    func(enabled bool)
	onDashboard func()
	onQuit      func()
	enabled     bool
	holding     bool
	playback    string
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuStatus   *systray.MenuItem
	menuPlayback *systray.MenuItem
	menuToggle   *systray.MenuItem
}

// New creates a Tray with music enabled.
func New() *Tray {
	return &Tray{
		enabled:  true,
		playback: PlaybackTitle(false, ""),
	}
}

// OnToggle sets the callback run when music is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDashboard sets the callback for the dashboard menu item. Without one the
// item is hidden.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Start registers the tray with the platform's event loop, which the
// OpenCV windows already drive, and returns immediately.
func (t *Tray) Start() {
	systray.Register(t.onReady, t.onExit)
}

// Stop removes the tray icon.
func (t *Tray) Stop() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("performative")
	systray.SetTooltip("performative detector")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(StatusTitle(t.holding), "Detector status")
	t.menuStatus.Disable()
	t.menuPlayback = systray.AddMenuItem(t.playback, "Spotify playback")
	t.menuPlayback.Disable()
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem(ToggleTitle(t.enabled), "Play music when holding")
	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the live dashboard in a browser")
	if t.onDashboard == nil {
		menuDashboard.Hide()
	}
	t.mu.Unlock()

	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit performative")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(ToggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetHolding updates the status line. It is cheap to call every frame.
func (t *Tray) SetHolding(holding bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.holding == holding {
		return
	}
	t.holding = holding
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(StatusTitle(holding))
	}
}

// SetPlayback updates the playback line.
func (t *Tray) SetPlayback(available bool, device string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.playback = PlaybackTitle(available, device)
	if t.menuPlayback != nil {
		t.menuPlayback.SetTitle(t.playback)
	}
}

// IsEnabled reports whether music is switched on.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// IsHolding returns the last status passed to SetHolding.
func (t *Tray) IsHolding() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.holding
}

// StatusTitle is the status line text.
func StatusTitle(holding bool) string {
	if holding {
		return "Status: PERFORMATIVE"
	}
	return "Status: NOT PERFORMATIVE"
}

// PlaybackTitle is the playback line text.
func PlaybackTitle(available bool, device string) string {
	if !available {
		return "Spotify: disabled"
	}
	return "Spotify: " + device
}

// ToggleTitle is the music toggle text.
func ToggleTitle(enabled bool) string {
	if enabled {
		return "● Music on"
	}
	return "○ Music off"
}
