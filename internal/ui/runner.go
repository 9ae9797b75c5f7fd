package ui

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"
)

// DefaultCommandTimeout bounds one helper command.
const DefaultCommandTimeout = 5 * time.Second

// Runner executes short helper commands with a timeout.
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a Runner. A non-positive timeout uses the default.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Runner{timeout: timeout}
}

// Run executes name with args and returns its stdout.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s timed out after %s", name, r.timeout)
	}

	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, s)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	return stdout.Bytes(), nil
}

// Start runs the command in the background and logs a failure at debug.
func (r *Runner) Start(name string, args ...string) {
	go func() {
		if _, err := r.Run(context.Background(), name, args...); err != nil {
			slog.Debug("ui: helper command failed", "cmd", name, "err", err)
		}
	}()
}

// OpenURL opens u in the default browser.
func (r *Runner) OpenURL(ctx context.Context, u string) error {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		_, err := r.Run(ctx, "rundll32", "url.dll,FileProtocolHandler", u)
		return err
	default:
		name = "xdg-open"
	}
	_, err := r.Run(ctx, name, u)
	return err
}
