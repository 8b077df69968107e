package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Play.Layout)
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[play]\nlayout = \"cyrillic\"\nobjects = 40\nwindow-ms = 120\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Play.Layout)
	assert.Equal(t, "cyrillic", *cfg.Play.Layout)
	require.NotNil(t, cfg.Play.Objects)
	assert.Equal(t, 40, *cfg.Play.Objects)
	require.NotNil(t, cfg.Play.WindowMs)
	assert.Equal(t, 120, *cfg.Play.WindowMs)
	assert.Nil(t, cfg.Play.FocusWeak, "unset keys stay nil")
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "play:\n  layout: latin\n  focus-weak: true\n  weak-factor: 3.5\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Play.Layout)
	assert.Equal(t, "latin", *cfg.Play.Layout)
	require.NotNil(t, cfg.Play.FocusWeak)
	assert.True(t, *cfg.Play.FocusWeak)
	require.NotNil(t, cfg.Play.WeakFactor)
	assert.InDelta(t, 3.5, *cfg.Play.WeakFactor, 1e-9)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[play\nlayout =")
	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestDefaultConfigPathPrefersTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "typer", "config.toml"), DefaultConfigPath())

	writeFile(t, filepath.Join(dir, "typer", "config.yaml"), "play: {}\n")
	assert.Equal(t, filepath.Join(dir, "typer", "config.yaml"), DefaultConfigPath())

	writeFile(t, filepath.Join(dir, "typer", "config.toml"), "")
	assert.Equal(t, filepath.Join(dir, "typer", "config.toml"), DefaultConfigPath())
}

func TestDataPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "typer", "typer.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join(dir, "typer", "typer.log"), DefaultLogPath())
}
