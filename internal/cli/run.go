package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/performative/internal/app"
	"github.com/ayusman/performative/internal/capture"
	"github.com/ayusman/performative/internal/config"
	"github.com/ayusman/performative/internal/detector"
	"github.com/ayusman/performative/internal/gesture"
	"github.com/ayusman/performative/internal/holding"
	"github.com/ayusman/performative/internal/playback"
	"github.com/ayusman/performative/internal/server"
	"github.com/ayusman/performative/internal/spotify"
	"github.com/ayusman/performative/internal/store"
	"github.com/ayusman/performative/internal/tray"
	"github.com/ayusman/performative/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the detector (default)",
	RunE:  runDetector,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDetector(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	det, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.Detector.MaxHands,
		MinConfidence:   cfg.Detector.MinDetectionConfidence,
		MinTrackingConf: cfg.Detector.MinTrackingConfidence,
		Script:          cfg.Detector.Script,
		Python:          cfg.Detector.Python,
	})
	if err != nil {
		return fmt.Errorf("hand landmark service unavailable: %w", err)
	}

	classifierConfig, err := app.ClassifierConfig(cfg.Detection)
	if err != nil {
		return err
	}

	runner := ui.NewRunner(0)
	hint := ui.PlatformHint(runner)

	trigger := newTrigger(ctx, st, hint)

	var hub *server.Hub
	if cfg.Server.Enabled {
		srv := server.New(server.Config{StaticDir: cfg.Server.StaticDir})
		hub = srv.Hub()
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
				slog.Warn("server: stopped", "err", err)
			}
		}()
	}

	reload, err := cfg.Watch(ctx)
	if err != nil && !errors.Is(err, config.ErrNoFile) {
		slog.Warn("config: hot reload disabled", "err", err)
	}

	presenter := ui.NewPresenter(ui.Options{
		StatusWidth:   cfg.UI.StatusWidth,
		StatusHeight:  cfg.UI.StatusHeight,
		FaceCamWidth:  cfg.UI.FacecamWidth,
		FaceCamHeight: cfg.UI.FacecamHeight,
		RaiseEvery:    cfg.UI.RaiseEvery,
		QuitKey:       cfg.UI.QuitKey,
		Hint:          hint,
	})

	appCfg := app.Config{
		Camera: capture.NewCamera(capture.Options{
			Device: cfg.Camera.Device,
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
			FPS:    cfg.Camera.FPS,
			Mirror: cfg.Camera.Mirror,
		}),
		Detector:     det,
		Classifier:   gesture.NewClassifier(classifierConfig),
		Machine:      holding.NewMachine(cfg.Detection.HoldThreshold.Duration, cfg.Detection.DisplayDelay.Duration),
		Trigger:      trigger,
		Display:      presenter,
		Hub:          hub,
		Reload:       reload,
		ShutdownWait: cfg.Spotify.RequestTimeout.Duration,
	}

	var t *tray.Tray
	if cfg.UI.Tray {
		t = tray.New()
		appCfg.Status = t
	}

	a := app.New(appCfg)

	if t != nil {
		t.OnToggle(a.SetEnabled)
		t.OnQuit(stop)
		if cfg.Server.Enabled {
			url := "http://" + cfg.Server.Addr
			t.OnDashboard(func() {
				if err := runner.OpenURL(context.Background(), url); err != nil {
					slog.Warn("tray: failed to open dashboard", "url", url, "err", err)
				}
			})
		}
		t.SetPlayback(trigger.Available(), trigger.Device().Name)
		t.Start()
		defer t.Stop()
	}

	return a.Run(ctx)
}

// newTrigger connects playback when Spotify is configured and authorized.
// Any gap leaves the trigger unavailable and the detector runs without
// music.
func newTrigger(ctx context.Context, st *store.Store, hint ui.Hint) *playback.Trigger {
	opts := playback.Options{
		TrackURI:   cfg.Spotify.TrackURI,
		DeviceName: cfg.Spotify.DeviceName,
		Timeout:    cfg.Spotify.RequestTimeout.Duration,
		Settings:   st.Settings(),
		OnStarted:  onStarted(hint),
	}

	client, err := spotifyClient(st)
	if err != nil {
		if errors.Is(err, spotify.ErrNotAuthenticated) {
			slog.Warn("spotify: not authenticated, run 'performative auth login'; playback disabled")
		} else {
			slog.Warn("spotify: playback disabled", "err", err)
		}
		return playback.New(ctx, nil, opts)
	}
	return playback.New(ctx, spotify.NewPlayer(client), opts)
}

func onStarted(hint ui.Hint) func() {
	return func() {
		if cfg.Spotify.ShowApp != nil && *cfg.Spotify.ShowApp {
			if err := hint.ShowApp("Spotify"); err != nil {
				slog.Debug("ui: show app hint failed", "err", err)
			}
		}
		if cfg.UI.Notify {
			if err := hint.Notify("performative", "Now playing"); err != nil {
				slog.Debug("ui: notification failed", "err", err)
			}
		}
	}
}
