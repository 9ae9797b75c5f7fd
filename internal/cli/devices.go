package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/performative/internal/playback"
	"github.com/ayusman/performative/internal/spotify"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List Spotify playback devices",
	Long: `Lists the Spotify Connect devices playback can target. The one marked
with * is the device the detector would pick.`,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := spotifyClient(st)
	if err != nil {
		return err
	}
	player := spotify.NewPlayer(client)

	timeout := cfg.Spotify.RequestTimeout.Duration
	if timeout <= 0 {
		timeout = playback.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	devices, err := player.Devices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(devices) == 0 {
		fmt.Fprintln(out, "No devices found. Open Spotify on a device and try again.")
		return nil
	}

	// Discovery is repeated through the trigger so the marker matches what
	// a run would choose.
	trigger := playback.New(ctx, staticDevices(devices), playback.Options{
		DeviceName: cfg.Spotify.DeviceName,
		Timeout:    timeout,
		Settings:   readOnlySettings{st.Settings()},
	})
	chosen := trigger.Device().ID

	for _, d := range devices {
		fmt.Fprintln(out, formatDevice(d, d.ID == chosen, verbose))
	}
	return nil
}

func formatDevice(d playback.Device, chosen, withID bool) string {
	marker := " "
	if chosen {
		marker = "*"
	}
	line := fmt.Sprintf("%s %s", marker, d.Name)
	if d.IsActive {
		line += " (active)"
	}
	if withID {
		line += "  " + d.ID
	}
	return line
}

// staticDevices is a playback.Client that only answers discovery.
type staticDevices []playback.Device

func (s staticDevices) Devices(ctx context.Context) ([]playback.Device, error) {
	return s, nil
}

func (staticDevices) CurrentPlayback(ctx context.Context) (*playback.Playback, error) {
	return nil, nil
}

func (staticDevices) StartPlayback(ctx context.Context, deviceID, trackURI string) error {
	return nil
}

// readOnlySettings lets discovery read the remembered device without
// overwriting it.
type readOnlySettings struct {
	playback.Settings
}

func (readOnlySettings) Set(key, value string) error { return nil }
