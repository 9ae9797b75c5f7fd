// Package cli implements the performative command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/performative/internal/config"
	"github.com/ayusman/performative/internal/spotify"
	"github.com/ayusman/performative/internal/store"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "performative",
	Short: "Play a song when you hold your matcha on camera",
	Long: `Performative watches the webcam for a hand holding a cup. Once the hold
is confirmed it starts a Spotify track and swaps the camera feed for a small
face cam.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE:         runDetector,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.performativerc)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	setupLogging()
	return nil
}

func setupLogging() {
	level := cfg.Log.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore() (*store.Store, error) {
	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

func oauthConfig() *spotify.OAuthConfig {
	oauth := spotify.NewOAuthConfig(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	if cfg.Spotify.RedirectURI != "" {
		oauth.RedirectURI = cfg.Spotify.RedirectURI
	}
	return oauth
}

// spotifyClient returns an authenticated client backed by the store.
func spotifyClient(st *store.Store) (*spotify.Client, error) {
	if cfg.Spotify.ClientID == "" {
		return nil, fmt.Errorf("spotify.client_id not configured. Set it in ~/.performativerc or via SPOTIFY_CLIENT_ID")
	}
	client := spotify.NewClient(oauthConfig(), st.Tokens())
	if err := client.LoadToken(); err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if !client.HasToken() {
		return nil, spotify.ErrNotAuthenticated
	}
	return client, nil
}
