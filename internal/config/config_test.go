package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("KITABU_SERVER_URL", "")
	t.Setenv("KITABU_LOG_LEVEL", "")
	t.Setenv("KITABU_LOG_CONSOLE", "")

	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.LogConsole)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KITABU_SERVER_URL", "https://courses.example.com")
	t.Setenv("KITABU_LOG_LEVEL", "DEBUG")
	t.Setenv("KITABU_LOG_CONSOLE", "true")

	cfg := DefaultConfig()
	assert.Equal(t, "https://courses.example.com", cfg.ServerURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.True(t, cfg.LogConsole)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KITABU_SERVER_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KITABU_SERVER_URL", "")

	cfg := DefaultConfig()
	cfg.ServerURL = "http://localhost:9001"
	cfg.LogLevel = "WARN"
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9001", loaded.ServerURL)
	assert.Equal(t, "WARN", loaded.LogLevel)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".kitabu")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0644))

	_, err := Load()
	assert.Error(t, err)
}
