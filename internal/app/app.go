// Package app wires the camera, detector, classifier, holding state machine,
// playback trigger and presentation into the per-frame pipeline.
package app

import (
	"context"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/performative/internal/capture"
	"github.com/ayusman/performative/internal/config"
	"github.com/ayusman/performative/internal/detector"
	"github.com/ayusman/performative/internal/gesture"
	"github.com/ayusman/performative/internal/holding"
	"github.com/ayusman/performative/internal/playback"
	"github.com/ayusman/performative/internal/server"
)

// DefaultShutdownWait bounds how long Run waits for in-flight playback
// attempts on exit.
const DefaultShutdownWait = 2 * time.Second

// Display shows one annotated frame per iteration and reports whether the
// quit key was pressed. ui.Presenter implements it.
type Display interface {
	Render(frame gocv.Mat, isHolding bool, display holding.Display) bool
	QuitKey() string
	Close()
}

// StatusSink receives the debounced holding status, e.g. the system tray.
type StatusSink interface {
	SetHolding(holding bool)
}

// Config holds the collaborators of an App. Camera and Detector are
// required; everything else is optional.
type Config struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Classifier *gesture.Classifier
	Machine    *holding.Machine
	Trigger    *playback.Trigger
	// Display is nil when running headless.
	Display Display
	Hub     *server.Hub
	Status  StatusSink
	// Reload delivers re-parsed detection settings between frames.
	Reload       <-chan config.DetectionConfig
	ShutdownWait time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// App is the process context: it owns every piece of per-run state, and
// the frame loop is its only writer.
type App struct {
	camera       capture.Camera
	detector     detector.Detector
	classifier   *gesture.Classifier
	machine      *holding.Machine
	trigger      *playback.Trigger
	display      Display
	hub          *server.Hub
	status       StatusSink
	reload       <-chan config.DetectionConfig
	shutdownWait time.Duration
	now          func() time.Time

	enabled bool
	mu      sync.RWMutex
}

// New creates an App with music enabled.
func New(cfg Config) *App {
	a := &App{
		camera:       cfg.Camera,
		detector:     cfg.Detector,
		classifier:   cfg.Classifier,
		machine:      cfg.Machine,
		trigger:      cfg.Trigger,
		display:      cfg.Display,
		hub:          cfg.Hub,
		status:       cfg.Status,
		reload:       cfg.Reload,
		shutdownWait: cfg.ShutdownWait,
		now:          cfg.Now,
		enabled:      true,
	}
	if a.classifier == nil {
		a.classifier = gesture.NewClassifier(gesture.DefaultConfig())
	}
	if a.machine == nil {
		a.machine = holding.NewMachine(holding.DefaultHoldThreshold, holding.DefaultDisplayDelay)
	}
	if a.trigger == nil {
		a.trigger = playback.New(context.Background(), nil, playback.Options{})
	}
	if a.shutdownWait <= 0 {
		a.shutdownWait = DefaultShutdownWait
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// SetEnabled switches music on or off. Detection and presentation keep
// running either way.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether a confirmed hold starts playback.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Machine returns the holding state machine.
func (a *App) Machine() *holding.Machine {
	return a.machine
}

// Classifier returns the current classifier.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier
}

// Trigger returns the playback trigger.
func (a *App) Trigger() *playback.Trigger {
	return a.trigger
}

// ClassifierConfig converts detection settings into classifier thresholds.
func ClassifierConfig(dc config.DetectionConfig) (gesture.Config, error) {
	mode, err := gesture.ParseMode(dc.Mode)
	if err != nil {
		return gesture.Config{}, err
	}
	return gesture.Config{
		TwoHandMaxDistance: dc.TwoHandMaxDistance,
		Region: gesture.Region{
			MinX: dc.CenterRegion.MinX,
			MaxX: dc.CenterRegion.MaxX,
			MinY: dc.CenterRegion.MinY,
			MaxY: dc.CenterRegion.MaxY,
		},
		CurlSlack:             dc.SingleHandCurlSlack,
		ThumbIndexMaxDistance: dc.ThumbIndexMaxDistance,
		Mode:                  mode,
	}, nil
}

// Apply installs new detection settings. It must be called from the frame
// loop; the holding state itself is kept.
func (a *App) Apply(dc config.DetectionConfig) error {
	cc, err := ClassifierConfig(dc)
	if err != nil {
		return err
	}
	a.classifier = gesture.NewClassifier(cc)
	a.machine.SetThresholds(dc.HoldThreshold.Duration, dc.DisplayDelay.Duration)
	return nil
}
