package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "pagedb.db", cfg.DBPath)
	assert.False(t, cfg.Diagnostics.Enabled)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagedb.yaml")
	contents := "db_path: /var/lib/pagedb/data.db\nlog_level: debug\ndiagnostics:\n  enabled: true\n  addr: \":9090\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/pagedb/data.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Diagnostics.Enabled)
	assert.Equal(t, ":9090", cfg.Diagnostics.Addr)
	// max_cache_size was left unset in the file, default should survive.
	assert.Equal(t, Default().MaxCacheSize, cfg.MaxCacheSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	assert.Equal(t, logrus.WarnLevel, cfg.ParseLogLevel())

	cfg.LogLevel = "not-a-level"
	assert.Equal(t, logrus.InfoLevel, cfg.ParseLogLevel())
}
