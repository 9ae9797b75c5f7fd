package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/performative/internal/playback"
	"github.com/ayusman/performative/internal/spotify"
	"github.com/ayusman/performative/internal/store"
)

// writeConfig writes a config file whose data dir is a fresh temp dir.
func writeConfig(t *testing.T, extra string) (path, dataDir string) {
	t.Helper()
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("PERFORMATIVE_LOG_LEVEL", "")

	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	path = filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("data_dir = %q\n%s", dataDir, extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path, dataDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestAuthStatus_NotAuthenticated(t *testing.T) {
	path, _ := writeConfig(t, "")

	out, err := execute(t, "auth", "status", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Not authenticated")
	assert.Contains(t, out, "performative auth login")
}

func TestAuthStatusAndLogout(t *testing.T) {
	path, dataDir := writeConfig(t, "")

	st, err := store.New(filepath.Join(dataDir, "performative.db"))
	require.NoError(t, err)
	require.NoError(t, st.Tokens().Save(&spotify.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		Scope:        "user-modify-playback-state",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	require.NoError(t, st.Close())

	out, err := execute(t, "auth", "status", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Authenticated with Spotify.")
	assert.Contains(t, out, "user-modify-playback-state")

	out, err = execute(t, "auth", "logout", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	out, err = execute(t, "auth", "logout", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Not authenticated")
}

func TestAuthLogin_RequiresClientID(t *testing.T) {
	path, _ := writeConfig(t, "")

	_, err := execute(t, "auth", "login", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
}

func TestDevices_NotAuthenticated(t *testing.T) {
	path, _ := writeConfig(t, "[spotify]\nclient_id = \"abc\"\n")

	_, err := execute(t, "devices", "-c", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, spotify.ErrNotAuthenticated)
}

func TestInvalidConfig(t *testing.T) {
	path, _ := writeConfig(t, "[detection]\nmode = \"psychic\"\n")

	_, err := execute(t, "auth", "status", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestFormatDevice(t *testing.T) {
	d := playback.Device{ID: "abc", Name: "Laptop", IsActive: true}

	assert.Equal(t, "* Laptop (active)", formatDevice(d, true, false))
	assert.Equal(t, "  Laptop (active)  abc", formatDevice(d, false, true))
	assert.Equal(t, "  Phone", formatDevice(playback.Device{ID: "p", Name: "Phone"}, false, false))
}

type mapSettings map[string]string

func (m mapSettings) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (m mapSettings) Set(key, value string) error {
	m[key] = value
	return nil
}

func TestDevicePreviewKeepsRememberedDevice(t *testing.T) {
	settings := mapSettings{playback.LastDeviceKey: "kitchen"}
	devices := staticDevices{
		{ID: "laptop", Name: "Laptop", IsActive: true},
		{ID: "kitchen", Name: "Kitchen"},
	}

	tr := playback.New(context.Background(), devices, playback.Options{
		Settings: readOnlySettings{settings},
	})

	assert.Equal(t, "kitchen", tr.Device().ID)
	assert.Equal(t, "kitchen", settings[playback.LastDeviceKey])

	tr = playback.New(context.Background(), devices, playback.Options{
		DeviceName: "Laptop",
		Settings:   readOnlySettings{settings},
	})
	assert.Equal(t, "laptop", tr.Device().ID)
	assert.Equal(t, "kitchen", settings[playback.LastDeviceKey], "preview must not overwrite")
}
