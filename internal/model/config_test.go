package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "api:\n  base_url: https://api.camphub.example/\n  max_retries: 1\npoll:\n  interval_sec: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.camphub.example", cfg.API.BaseURL)
	assert.Equal(t, 1, cfg.API.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CAMPHUB_API_BASE_URL", "http://env.example")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.API.BaseURL)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.API.BaseURL = "https://saved.example"
	cfg.Poll.IntervalSec = 45

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example", loaded.API.BaseURL)
	assert.Equal(t, 45*time.Second, loaded.PollInterval())
}

func TestPollIntervalFallsBackOnZero(t *testing.T) {
	cfg := &AppConfig{}
	assert.Equal(t, DefaultPollIntervalSec*time.Second, cfg.PollInterval())
}

func TestCountUnreadAndSort(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	list := []Notification{
		{ID: "a", CreatedAt: base, IsRead: true},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
		{ID: "c", CreatedAt: base.Add(-time.Hour)},
	}

	assert.Equal(t, 2, CountUnread(list))

	SortNewestFirst(list)
	assert.Equal(t, []string{"b", "a", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
}
