package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Detection.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detection: %w", err))
	}
	if err := c.Camera.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("camera: %w", err))
	}
	if err := c.Detector.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detector: %w", err))
	}
	if err := c.Spotify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("spotify: %w", err))
	}
	if err := c.UI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks DetectionConfig for errors.
func (c *DetectionConfig) Validate() error {
	var errs []error
	if c.HoldThreshold.Duration < 0 {
		errs = append(errs, errors.New("hold_threshold must be non-negative"))
	}
	if c.DisplayDelay.Duration < 0 {
		errs = append(errs, errors.New("display_delay must be non-negative"))
	}
	if c.TwoHandMaxDistance <= 0 {
		errs = append(errs, errors.New("two_hand_max_distance must be positive"))
	}
	if c.ThumbIndexMaxDistance <= 0 {
		errs = append(errs, errors.New("thumb_index_max_distance must be positive"))
	}
	if c.SingleHandCurlSlack < 0 {
		errs = append(errs, errors.New("single_hand_curl_slack must be non-negative"))
	}
	r := c.CenterRegion
	if r.MinX < 0 || r.MaxX > 1 || r.MinY < 0 || r.MaxY > 1 || r.MinX >= r.MaxX || r.MinY >= r.MaxY {
		errs = append(errs, fmt.Errorf("invalid center_region: x(%g,%g) y(%g,%g)", r.MinX, r.MaxX, r.MinY, r.MaxY))
	}
	switch c.Mode {
	case "", "geometric", "relaxed":
		// valid
	default:
		errs = append(errs, fmt.Errorf("invalid mode: %s (must be geometric or relaxed)", c.Mode))
	}
	return errors.Join(errs...)
}

// Validate checks CameraConfig for errors.
func (c *CameraConfig) Validate() error {
	if c.Device < 0 {
		return errors.New("device must be non-negative")
	}
	if c.Width < 0 || c.Height < 0 {
		return errors.New("width and height must be non-negative")
	}
	if c.FPS < 0 {
		return errors.New("fps must be non-negative")
	}
	return nil
}

// Validate checks DetectorConfig for errors.
func (c *DetectorConfig) Validate() error {
	if c.MaxHands < 0 {
		return errors.New("max_hands must be non-negative")
	}
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return errors.New("min_detection_confidence must be between 0 and 1")
	}
	if c.MinTrackingConfidence < 0 || c.MinTrackingConfidence > 1 {
		return errors.New("min_tracking_confidence must be between 0 and 1")
	}
	return nil
}

// Validate checks SpotifyConfig for errors.
func (c *SpotifyConfig) Validate() error {
	if c.RedirectURI != "" {
		if _, err := url.Parse(c.RedirectURI); err != nil {
			return fmt.Errorf("invalid redirect_uri: %w", err)
		}
	}
	if c.TrackURI != "" && !strings.HasPrefix(c.TrackURI, "spotify:track:") {
		return fmt.Errorf("invalid track_uri: %s (must start with spotify:track:)", c.TrackURI)
	}
	if c.RequestTimeout.Duration < 0 {
		return errors.New("request_timeout must be non-negative")
	}
	return nil
}

// Validate checks UIConfig for errors.
func (c *UIConfig) Validate() error {
	if c.StatusWidth < 0 || c.StatusHeight < 0 || c.FacecamWidth < 0 || c.FacecamHeight < 0 {
		return errors.New("window sizes must be non-negative")
	}
	if c.RaiseEvery < 0 {
		return errors.New("raise_every must be non-negative")
	}
	if len(c.QuitKey) > 1 {
		return fmt.Errorf("invalid quit_key: %q (must be a single character)", c.QuitKey)
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}

// SlogLevel maps the configured level to a slog.Level.
func (c *LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
