package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/time/rate"

	"github.com/ayusman/performative/internal/detector"
	"github.com/ayusman/performative/internal/gesture"
	"github.com/ayusman/performative/internal/holding"
	"github.com/ayusman/performative/internal/server"
	"github.com/ayusman/performative/internal/ui"
)

// Result is the outcome of one pipeline step.
type Result struct {
	Hands      []detector.HandLandmarks
	Signal     bool
	Reason     gesture.Reason
	Transition holding.Transition
	State      holding.State
	Display    holding.Display
	// Fired is set when the step dispatched a playback attempt.
	Fired bool
}

var detectErrLog = rate.Sometimes{Interval: 5 * time.Second}

// Step runs one frame through the pipeline: detect, classify, update the
// state machine, and fire playback on the HoldingConfirmed edge. It touches
// no windows.
//
// A detector failure counts as a frame with no hands.
func (a *App) Step(ctx context.Context, frame *gocv.Mat, now time.Time) Result {
	hands, err := a.detector.Detect(frame)
	if err != nil {
		detectErrLog.Do(func() {
			slog.Warn("detector: detection failed, treating frame as empty", "err", err)
		})
		hands = nil
	}

	signal, reason := a.classifier.Explain(hands)
	tr := a.machine.Update(signal, now)

	res := Result{
		Hands:      hands,
		Signal:     signal,
		Reason:     reason,
		Transition: tr,
		State:      a.machine.Snapshot(),
		Display:    a.machine.DisplayMode(now),
	}

	switch {
	case tr.Confirmed:
		slog.Info("holding: confirmed", "reason", reason, "hands", len(hands))
		if a.IsEnabled() {
			a.trigger.Fire(ctx)
			res.Fired = true
		} else {
			slog.Debug("playback: skipped, music disabled")
		}
	case tr.Released:
		slog.Info("holding: released")
	}
	return res
}

// Run opens the camera and processes frames until ctx is done, the quit key
// is pressed, or the camera fails. A camera failure is returned; the other
// two end the run cleanly.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.shutdown()

	slog.Info("app: running", "playback", a.trigger.Available())

	for {
		select {
		case <-ctx.Done():
			slog.Info("app: stopping", "reason", ctx.Err())
			return nil
		case dc, ok := <-a.reload:
			if !ok {
				a.reload = nil
				break
			}
			if err := a.Apply(dc); err != nil {
				slog.Warn("config: reload rejected", "err", err)
			} else {
				slog.Info("config: detection settings reloaded",
					"hold_threshold", dc.HoldThreshold.Duration,
					"display_delay", dc.DisplayDelay.Duration,
					"mode", dc.Mode,
				)
			}
		default:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		quit := a.frame(ctx, frame)
		frame.Close()
		if quit {
			slog.Info("app: quit key pressed")
			return nil
		}
	}
}

// frame processes, publishes and renders one camera frame.
func (a *App) frame(ctx context.Context, frame *gocv.Mat) bool {
	now := a.now()
	res := a.Step(ctx, frame, now)
	isHolding := res.State.Status == holding.Holding

	if a.status != nil && (res.Transition.Confirmed || res.Transition.Released) {
		a.status.SetHolding(isHolding)
	}

	if a.display != nil || (a.hub != nil && a.hub.WantsFrames()) {
		ui.DrawHands(frame, res.Hands)
	}
	a.publish(res, frame, now)

	if a.display == nil {
		return false
	}
	ui.DrawFooter(frame, a.display.QuitKey())
	return a.display.Render(*frame, isHolding, res.Display)
}

func (a *App) publish(res Result, frame *gocv.Mat, now time.Time) {
	if a.hub == nil {
		return
	}
	device := a.trigger.Device()
	a.hub.Publish(server.Snapshot{
		Status:           res.State.Status.String(),
		Holding:          res.State.Status == holding.Holding,
		Signal:           res.Signal,
		Display:          res.Display.String(),
		Hands:            len(res.Hands),
		PendingSince:     res.State.PendingSince,
		SpotifyModeSince: res.State.SpotifyModeSince,
		PlaybackReady:    a.trigger.Available(),
		Device:           device.Name,
		Timestamp:        now,
	})

	if !a.hub.WantsFrames() {
		return
	}
	jpeg, err := server.EncodeFrame(*frame)
	if err != nil {
		slog.Debug("server: frame encode failed", "err", err)
		return
	}
	a.hub.PublishFrame(jpeg)
}

func (a *App) shutdown() {
	if err := a.camera.Close(); err != nil {
		slog.Warn("app: camera close failed", "err", err)
	}
	if err := a.detector.Close(); err != nil {
		slog.Warn("app: detector close failed", "err", err)
	}
	if a.display != nil {
		a.display.Close()
	}

	done := make(chan struct{})
	go func() {
		a.trigger.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(a.shutdownWait):
		slog.Warn("app: playback attempt still running at exit")
	}
}
