package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SHOTCRAFT_HOME_DIR", home)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.ServerURL)
	require.Equal(t, home, cfg.Home)
	require.Equal(t, filepath.Join(home, "cache.db"), cfg.CachePath)
	require.Equal(t, 10*time.Second, cfg.PollInterval)
	require.NotEmpty(t, cfg.DefaultModel)
	require.False(t, cfg.Debug)
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SHOTCRAFT_HOME_DIR", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(
		"server_url: https://api.example.com\npoll_interval: 30s\ndefault_model: test-model\n",
	), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com", cfg.ServerURL)
	require.Equal(t, 30*time.Second, cfg.PollInterval)
	require.Equal(t, "test-model", cfg.DefaultModel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SHOTCRAFT_HOME_DIR", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(
		"server_url: https://file.example.com\n",
	), 0600))
	t.Setenv("SHOTCRAFT_SERVER_URL", "https://env.example.com")
	t.Setenv("SHOTCRAFT_POLL_INTERVAL", "5s")
	t.Setenv("DEBUG", "1")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.ServerURL)
	require.Equal(t, 5*time.Second, cfg.PollInterval)
	require.True(t, cfg.Debug)
}

func TestLoadRejectsBadPollInterval(t *testing.T) {
	t.Setenv("SHOTCRAFT_HOME_DIR", t.TempDir())
	t.Setenv("SHOTCRAFT_POLL_INTERVAL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadNonPositiveIntervalFallsBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SHOTCRAFT_HOME_DIR", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(
		"poll_interval: 0s\n",
	), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, cfg.PollInterval)
}
