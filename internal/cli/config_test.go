package cli

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GATHERHALL_STATE_DIR", t.TempDir())
	t.Setenv("GATHERHALL_API_URL", "")
	t.Setenv("GATHERHALL_SESSION_BACKEND", "")
	t.Setenv("GATHERHALL_SESSION_DB", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.APIURL)
	require.Equal(t, "sqlite", cfg.SessionBackend)
	require.Equal(t, filepath.Join(cfg.StateDir, "session.db"), cfg.SessionDB)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GATHERHALL_STATE_DIR", t.TempDir())
	t.Setenv("GATHERHALL_API_URL", "https://api.gatherhall.example")
	t.Setenv("GATHERHALL_SESSION_BACKEND", "REDIS")
	t.Setenv("GATHERHALL_REDIS_ADDR", "redis.internal:6380")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://api.gatherhall.example", cfg.APIURL)
	require.Equal(t, "redis", cfg.SessionBackend)
	require.Equal(t, "redis.internal:6380", cfg.RedisAddr)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("GATHERHALL_STATE_DIR", t.TempDir())
	t.Setenv("GATHERHALL_SESSION_BACKEND", "postgres")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestDeviceIDIsStable(t *testing.T) {
	t.Parallel()

	cfg := Config{StateDir: t.TempDir()}

	first, err := cfg.DeviceID()
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := cfg.DeviceID()
	require.NoError(t, err)
	require.Equal(t, first, second)
}
