package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/godbus/dbus/v5"
)

// Hint asks the desktop for best-effort window behavior the OpenCV window
// API cannot express. Failures are never fatal.
type Hint interface {
	// Raise brings the named window to the front.
	Raise(window string) error
	// ShowApp activates an application, such as the Spotify desktop client.
	ShowApp(name string) error
	// Notify shows a desktop notification.
	Notify(title, body string) error
}

// NoopHint does nothing.
type NoopHint struct{}

func (NoopHint) Raise(string) error          { return nil }
func (NoopHint) ShowApp(string) error        { return nil }
func (NoopHint) Notify(string, string) error { return nil }

// OSAScriptHint drives macOS windows through AppleScript.
type OSAScriptHint struct {
	runner *Runner
	// Process is the owning process name that System Events searches for
	// the window.
	Process string
}

// NewOSAScriptHint creates a hint backed by osascript.
func NewOSAScriptHint(runner *Runner, process string) *OSAScriptHint {
	return &OSAScriptHint{runner: runner, Process: process}
}

// Raise implements Hint.
func (h *OSAScriptHint) Raise(window string) error {
	h.runner.Start("osascript", "-e", raiseScript(h.Process, window))
	return nil
}

// ShowApp implements Hint.
func (h *OSAScriptHint) ShowApp(name string) error {
	h.runner.Start("osascript", "-e", showAppScript(name))
	return nil
}

// Notify implements Hint.
func (h *OSAScriptHint) Notify(title, body string) error {
	h.runner.Start("osascript", "-e", fmt.Sprintf("display notification %q with title %q", body, title))
	return nil
}

func raiseScript(process, window string) string {
	return fmt.Sprintf(`tell application "System Events"
	repeat with proc in processes
		if name of proc contains %q then
			tell proc
				repeat with w in windows
					if name of w is %q then
						set frontmost to true
						perform action "AXRaise" of w
						set position of w to {%d, %d}
						exit repeat
					end if
				end repeat
			end tell
		end if
	end repeat
end tell`, process, window, FaceCamX, FaceCamY)
}

func showAppScript(name string) string {
	return fmt.Sprintf(`tell application %q
	activate
	tell application "System Events"
		tell process %q
			set frontmost to true
			try
				tell window 1
					set position to {100, 100}
					set size to {800, 600}
				end tell
			end try
		end tell
	end tell
end tell`, name, name)
}

// DBusHint sends freedesktop notifications and raises MPRIS players over
// the session bus. OpenCV windows cannot be raised this way, so Raise is a
// no-op.
type DBusHint struct {
	conn *dbus.Conn
}

// NewDBusHint connects to the session bus.
func NewDBusHint() (*DBusHint, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &DBusHint{conn: conn}, nil
}

// Raise implements Hint.
func (h *DBusHint) Raise(string) error { return nil }

// ShowApp raises the MPRIS player of the named application.
func (h *DBusHint) ShowApp(name string) error {
	obj := h.conn.Object("org.mpris.MediaPlayer2."+strings.ToLower(name), "/org/mpris/MediaPlayer2")
	return obj.Call("org.mpris.MediaPlayer2.Raise", 0).Err
}

// Notify implements Hint.
func (h *DBusHint) Notify(title, body string) error {
	obj := h.conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"performative", uint32(0), "", title, body,
		[]string{}, map[string]dbus.Variant{}, int32(3000))
	return call.Err
}

// Close releases the bus connection.
func (h *DBusHint) Close() error {
	return h.conn.Close()
}

// MultiHint fans out to every hint and joins their errors.
type MultiHint []Hint

func (m MultiHint) Raise(window string) error {
	var errs []error
	for _, h := range m {
		errs = append(errs, h.Raise(window))
	}
	return errors.Join(errs...)
}

func (m MultiHint) ShowApp(name string) error {
	var errs []error
	for _, h := range m {
		errs = append(errs, h.ShowApp(name))
	}
	return errors.Join(errs...)
}

func (m MultiHint) Notify(title, body string) error {
	var errs []error
	for _, h := range m {
		errs = append(errs, h.Notify(title, body))
	}
	return errors.Join(errs...)
}

// PlatformHint picks the hint for the running OS.
func PlatformHint(runner *Runner) Hint {
	switch runtime.GOOS {
	case "darwin":
		return NewOSAScriptHint(runner, "performative")
	case "linux":
		h, err := NewDBusHint()
		if err != nil {
			slog.Debug("ui: no session bus, desktop hints disabled", "err", err)
			return NoopHint{}
		}
		return h
	default:
		return NoopHint{}
	}
}
