// Package config loads the performative TOML configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration.
type Config struct {
	DataDir   string          `toml:"data_dir"`
	Detection DetectionConfig `toml:"detection"`
	Camera    CameraConfig    `toml:"camera"`
	Detector  DetectorConfig  `toml:"detector"`
	Spotify   SpotifyConfig   `toml:"spotify"`
	UI        UIConfig        `toml:"ui"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`

	// path is the file the config was read from, if any.
	path string
}

// DetectionConfig holds the classifier thresholds and debounce timings.
type DetectionConfig struct {
	HoldThreshold         Duration     `toml:"hold_threshold"`
	DisplayDelay          Duration     `toml:"display_delay"`
	TwoHandMaxDistance    float64      `toml:"two_hand_max_distance"`
	CenterRegion          RegionConfig `toml:"center_region"`
	SingleHandCurlSlack   float64      `toml:"single_hand_curl_slack"`
	ThumbIndexMaxDistance float64      `toml:"thumb_index_max_distance"`
	Mode                  string       `toml:"mode"`
}

// RegionConfig is a rectangle in normalized frame coordinates.
type RegionConfig struct {
	MinX float64 `toml:"min_x"`
	MaxX float64 `toml:"max_x"`
	MinY float64 `toml:"min_y"`
	MaxY float64 `toml:"max_y"`
}

// CameraConfig selects and sizes the capture device.
type CameraConfig struct {
	Device int  `toml:"device"`
	Width  int  `toml:"width"`
	Height int  `toml:"height"`
	FPS    int  `toml:"fps"`
	Mirror bool `toml:"mirror"`
}

// DetectorConfig configures the hand landmark service.
type DetectorConfig struct {
	MaxHands               int     `toml:"max_hands"`
	MinDetectionConfidence float64 `toml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `toml:"min_tracking_confidence"`
	Script                 string  `toml:"script"`
	Python                 string  `toml:"python"`
}

// SpotifyConfig configures the playback target.
type SpotifyConfig struct {
	ClientID       string   `toml:"client_id"`
	ClientSecret   string   `toml:"client_secret"`
	RedirectURI    string   `toml:"redirect_uri"`
	TrackURI       string   `toml:"track_uri"`
	DeviceName     string   `toml:"device_name"`
	RequestTimeout Duration `toml:"request_timeout"`
	ShowApp        *bool    `toml:"show_app"`
}

// UIConfig sizes the windows and toggles the optional desktop integrations.
type UIConfig struct {
	StatusWidth   int    `toml:"status_width"`
	StatusHeight  int    `toml:"status_height"`
	FacecamWidth  int    `toml:"facecam_width"`
	FacecamHeight int    `toml:"facecam_height"`
	RaiseEvery    int    `toml:"raise_every"`
	QuitKey       string `toml:"quit_key"`
	Tray          bool   `toml:"tray"`
	Notify        bool   `toml:"notify"`
}

// ServerConfig configures the optional operator feedback server.
type ServerConfig struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	// StaticDir serves a custom dashboard instead of the built-in one.
	StaticDir string `toml:"static_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration that decodes from strings like "200ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.performativerc, $XDG_CONFIG_HOME/performative/config.toml
func Load() (*Config, error) {
	path := findConfigFile()
	if path == "" {
		cfg := &Config{}
		cfg.Camera.Mirror = true
		cfg.ApplyDefaults()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func decodeFile(path string) (*Config, error) {
	// Mirror defaults to on, so it is preset before decoding rather than
	// filled in afterwards.
	cfg := &Config{path: path}
	cfg.Camera.Mirror = true
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// DatabasePath returns the SQLite database location inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "performative.db")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".performativerc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "performative", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		cfg.Spotify.RedirectURI = v
	}
	if v := os.Getenv("PERFORMATIVE_TRACK_URI"); v != "" {
		cfg.Spotify.TrackURI = v
	}
	if v := os.Getenv("PERFORMATIVE_CAMERA"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Camera.Device = i
		}
	}
	if v := os.Getenv("PERFORMATIVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
