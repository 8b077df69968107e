// Package config provides configuration helpers and TOML/YAML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the configuration file.
type FileConfig struct {
	Play PlayConfig `toml:"play" yaml:"play"`
}

// PlayConfig maps drill-related settings. Durations are milliseconds.
type PlayConfig struct {
	Layout     *string  `toml:"layout" yaml:"layout"`
	Objects    *int     `toml:"objects" yaml:"objects"`
	IntervalMs *int     `toml:"interval-ms" yaml:"interval-ms"`
	WindowMs   *int     `toml:"window-ms" yaml:"window-ms"`
	PreemptMs  *int     `toml:"preempt-ms" yaml:"preempt-ms"`
	FocusWeak  *bool    `toml:"focus-weak" yaml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top" yaml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor" yaml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window" yaml:"weak-window"`
}

// LoadConfig reads a config from the given path. Missing file is not an error.
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	return cfg, nil
}
