package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultTrackURI is Juna by Clairo.
const DefaultTrackURI = "spotify:track:2mWfVxEo4xZYDaz0v7hYrN"

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	showApp := true
	return &Config{
		DataDir: defaultDataDir(),
		Detection: DetectionConfig{
			HoldThreshold:         Duration{200 * time.Millisecond},
			DisplayDelay:          Duration{time.Second},
			TwoHandMaxDistance:    0.5,
			CenterRegion:          RegionConfig{MinX: 0.1, MaxX: 0.9, MinY: 0.1, MaxY: 0.95},
			SingleHandCurlSlack:   0.08,
			ThumbIndexMaxDistance: 0.3,
			Mode:                  "geometric",
		},
		Camera: CameraConfig{
			Device: 0,
			Width:  1280,
			Height: 720,
			FPS:    30,
			Mirror: true,
		},
		Detector: DetectorConfig{
			MaxHands:               2,
			MinDetectionConfidence: 0.5,
			MinTrackingConfidence:  0.3,
		},
		Spotify: SpotifyConfig{
			RedirectURI:    "http://127.0.0.1:8888/callback",
			TrackURI:       DefaultTrackURI,
			RequestTimeout: Duration{5 * time.Second},
			ShowApp:        &showApp,
		},
		UI: UIConfig{
			StatusWidth:   1200,
			StatusHeight:  800,
			FacecamWidth:  400,
			FacecamHeight: 300,
			RaiseEvery:    10,
			QuitKey:       "q",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".performative"
	}
	return filepath.Join(home, ".performative")
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}

	// Detection
	det := &c.Detection
	if det.HoldThreshold.Duration == 0 {
		det.HoldThreshold = d.Detection.HoldThreshold
	}
	if det.DisplayDelay.Duration == 0 {
		det.DisplayDelay = d.Detection.DisplayDelay
	}
	if det.TwoHandMaxDistance == 0 {
		det.TwoHandMaxDistance = d.Detection.TwoHandMaxDistance
	}
	if det.CenterRegion == (RegionConfig{}) {
		det.CenterRegion = d.Detection.CenterRegion
	}
	if det.SingleHandCurlSlack == 0 {
		det.SingleHandCurlSlack = d.Detection.SingleHandCurlSlack
	}
	if det.ThumbIndexMaxDistance == 0 {
		det.ThumbIndexMaxDistance = d.Detection.ThumbIndexMaxDistance
	}
	if det.Mode == "" {
		det.Mode = d.Detection.Mode
	}

	// Camera
	if c.Camera.Width == 0 {
		c.Camera.Width = d.Camera.Width
	}
	if c.Camera.Height == 0 {
		c.Camera.Height = d.Camera.Height
	}
	if c.Camera.FPS == 0 {
		c.Camera.FPS = d.Camera.FPS
	}

	// Detector
	if c.Detector.MaxHands == 0 {
		c.Detector.MaxHands = d.Detector.MaxHands
	}
	if c.Detector.MinDetectionConfidence == 0 {
		c.Detector.MinDetectionConfidence = d.Detector.MinDetectionConfidence
	}
	if c.Detector.MinTrackingConfidence == 0 {
		c.Detector.MinTrackingConfidence = d.Detector.MinTrackingConfidence
	}

	// Spotify
	if c.Spotify.RedirectURI == "" {
		c.Spotify.RedirectURI = d.Spotify.RedirectURI
	}
	if c.Spotify.TrackURI == "" {
		c.Spotify.TrackURI = d.Spotify.TrackURI
	}
	if c.Spotify.RequestTimeout.Duration == 0 {
		c.Spotify.RequestTimeout = d.Spotify.RequestTimeout
	}
	if c.Spotify.ShowApp == nil {
		c.Spotify.ShowApp = d.Spotify.ShowApp
	}

	// UI
	if c.UI.StatusWidth == 0 {
		c.UI.StatusWidth = d.UI.StatusWidth
	}
	if c.UI.StatusHeight == 0 {
		c.UI.StatusHeight = d.UI.StatusHeight
	}
	if c.UI.FacecamWidth == 0 {
		c.UI.FacecamWidth = d.UI.FacecamWidth
	}
	if c.UI.FacecamHeight == 0 {
		c.UI.FacecamHeight = d.UI.FacecamHeight
	}
	if c.UI.RaiseEvery == 0 {
		c.UI.RaiseEvery = d.UI.RaiseEvery
	}
	if c.UI.QuitKey == "" {
		c.UI.QuitKey = d.UI.QuitKey
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
