package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-water-tracker/internal/config"
	"github.com/Tiliavir/trivial-water-tracker/internal/history"
)

func TestLoadFirstRunWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twt", "config.yaml")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, history.DefaultPolicy(), cfg.History.Policy())
	assert.Equal(t, path, cfg.Path)
	assert.NotContains(t, cfg.Storage.Dir, "~", "home must be expanded")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "retentionCap: 30")

	// The template itself must load back to the same values.
	again, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.History, again.History)
	assert.Equal(t, cfg.Storage, again.Storage)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  backend: sqlite
  sqlitePath: ` + filepath.Join(dir, "water.db") + `
history:
  retentionCap: 7
  nearThreshold: 0.5
logger:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, "water.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, 7, cfg.History.RetentionCap)
	assert.InDelta(t, 0.5, cfg.History.NearThreshold, 1e-9)
	assert.InDelta(t, 1.0, cfg.History.CompleteThreshold, 1e-9)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("TWT_STORAGE_BACKEND", "memory")
	t.Setenv("TWT_LOG_LEVEL", "error")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "error", cfg.Logger.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown backend": "storage:\n  backend: redis\n",
		"bad log level":   "logger:\n  level: verbose\n",
		"zero retention":  "history:\n  retentionCap: 0\n",
		"near above full": "history:\n  nearThreshold: 1.5\n",
		"cache too large": "cache:\n  enabled: true\n  sizeMB: 4096\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o600))

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "parsing config file")
}
