package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Server, cfg.Server)
	assert.Equal(t, d.Sync.ScraperURL, cfg.Sync.ScraperURL)
	assert.Equal(t, 24, cfg.Sync.IntervalHours)
	assert.False(t, cfg.Sync.OnStartup)
	assert.Equal(t, "en", cfg.Language)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
sync:
  interval_hours: 12
  on_startup: true
paths:
  config_dir: /srv/mp/config
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 12, cfg.Sync.IntervalHours)
	assert.True(t, cfg.Sync.OnStartup)
	assert.Equal(t, 3*time.Second, cfg.Sync.StartupDelay)
	assert.Equal(t, 12*time.Hour, cfg.Sync.Interval())
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, filepath.Join("/srv/mp/config", "IMDb+", "Options IMDb+ Scraper.xml"), cfg.Paths.OptionsFile())
}

func TestLoad_InvalidIntervalFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sync:\n  interval_hours: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Sync.IntervalHours)
}

func TestPaths(t *testing.T) {
	p := PathsConfig{ConfigDir: "cfg"}
	assert.Equal(t, filepath.Join("cfg", "IMDb+", "Rename dBase IMDb+ Scraper.xml"), p.ReplacementsFile())
	assert.Equal(t, filepath.Join("cfg", "IMDb+", "Rename dBase IMDb+ Scraper (Custom).xml"), p.CustomReplacementsFile())
}
