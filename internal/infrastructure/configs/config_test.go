package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.WS.PingInterval)
	assert.Equal(t, int64(8<<20), cfg.WS.MaxPayloadSize)
	assert.False(t, cfg.WS.EnableCompression)
	assert.Equal(t, 30*time.Minute, cfg.Rooms.InactivityTimeout)
	assert.Equal(t, time.Minute, cfg.Rooms.SweepInterval)
	assert.Equal(t, time.Second, cfg.Chat.ThrottleWindow)
	assert.Equal(t, "zap", cfg.Logger.Backend)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  port: 9090
rooms:
  inactivity_timeout: 10m
chat:
  throttle_window: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(9090), cfg.HTTP.Port)
	assert.Equal(t, 10*time.Minute, cfg.Rooms.InactivityTimeout)
	assert.Equal(t, 2*time.Second, cfg.Chat.ThrottleWindow)
	// Untouched keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 30*time.Second, cfg.WS.PingInterval)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: 9090\n"), 0o600))

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("ROOM_INACTIVITY_TIMEOUT_SECONDS", "1800")
	t.Setenv("CHAT_THROTTLE_WINDOW_MS", "500")
	t.Setenv("WS_ENABLE_COMPRESSION", "true")
	t.Setenv("LOGGER_BACKEND", "zerolog")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(7070), cfg.HTTP.Port)
	assert.Equal(t, 30*time.Minute, cfg.Rooms.InactivityTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Chat.ThrottleWindow)
	assert.True(t, cfg.WS.EnableCompression)
	assert.Equal(t, "zerolog", cfg.Logger.Backend)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
