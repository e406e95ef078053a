// Package config loads the settings a pagedb instance starts from: the
// backing file path, cache size, log level, and whether the
// diagnostics HTTP surface is enabled.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/cabewaldrop/pagedb/internal/storage"
)

// Config describes how a pagedb instance should start up.
type Config struct {
	// DBPath is the backing file path for the Pager.
	DBPath string `yaml:"db_path"`

	// MaxCacheSize bounds the Pager's in-memory page cache.
	MaxCacheSize int `yaml:"max_cache_size"`

	// LogLevel is a logrus level name (e.g. "debug", "info", "warn").
	LogLevel string `yaml:"log_level"`

	// Diagnostics configures the optional HTTP introspection server.
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// DiagnosticsConfig configures the optional diagnostics HTTP server.
type DiagnosticsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the configuration used when no config file is
// given.
func Default() *Config {
	return &Config{
		DBPath:       "pagedb.db",
		MaxCacheSize: storage.DefaultMaxCacheSize,
		LogLevel:     "info",
		Diagnostics: DiagnosticsConfig{
			Enabled: false,
			Addr:    ":8080",
		},
	}
}

// Load reads a YAML config file at path, falling back to Default for
// any field the file leaves unset.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ParseLogLevel resolves LogLevel to a logrus.Level, defaulting to
// Info for an empty or unrecognized value.
func (c *Config) ParseLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
