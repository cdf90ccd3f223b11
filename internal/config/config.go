package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/validate"
	"github.com/spf13/viper"

	"github.com/Tiliavir/trivial-water-tracker/internal/history"
)

// Config is the root configuration for twt, stored in ~/.twt/config.yaml.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	History HistoryConfig `mapstructure:"history"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Path is the file the config was read from.
	Path string `mapstructure:"-"`
	// Debug is set from the --debug flag, never from the file.
	Debug bool `mapstructure:"-"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	// Backend is one of file, sqlite or memory.
	Backend string `mapstructure:"backend" validate:"required|in:file,sqlite,memory"`
	// Dir holds one file per key for the file backend.
	Dir string `mapstructure:"dir" validate:"required"`
	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `mapstructure:"sqlitePath" validate:"required"`
}

// CacheConfig controls the in-process read cache in front of the store.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	SizeMB  int  `mapstructure:"sizeMB" validate:"min:1|max:512"`
}

// HistoryConfig holds the history retention and calendar thresholds.
type HistoryConfig struct {
	RetentionCap      int     `mapstructure:"retentionCap" validate:"required|min:1|max:3650"`
	NearThreshold     float64 `mapstructure:"nearThreshold"`
	CompleteThreshold float64 `mapstructure:"completeThreshold"`
}

// Policy converts the section into a history.Policy.
func (h HistoryConfig) Policy() history.Policy {
	return history.Policy{
		RetentionCap:      h.RetentionCap,
		NearThreshold:     h.NearThreshold,
		CompleteThreshold: h.CompleteThreshold,
	}
}

// LoggerConfig configures zerolog.
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,disabled"`
	Format string `mapstructure:"format" validate:"required|in:console,json"`
	// File receives JSON log lines when set; stderr is used otherwise.
	File string `mapstructure:"file"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// configTemplate is the annotated config written on first run.
const configTemplate = `# twt configuration – ~/.twt/config.yaml
#
# All settings are optional; the built-in defaults shown below work out of
# the box. Environment variables (TWT_*) and a .env file override them.

storage:
  # Where data lives.
  # • file   – one JSON file per key in "dir" (default)
  # • sqlite – a single SQLite database at "sqlitePath"
  # • memory – nothing is persisted (useful for trying things out)
  backend: file
  dir: ~/.twt/data
  sqlitePath: ~/.twt/twt.db

cache:
  # In-process read cache in front of the store, size in megabytes. A
  # single value larger than 1/1024 of the cache is not cached.
  enabled: false
  sizeMB: 4

history:
  # Maximum number of days kept in the history log.
  retentionCap: 30
  # Share of the daily goal from which a calendar day is marked "near"
  # and "complete".
  nearThreshold: 0.70
  completeThreshold: 1.0

logger:
  # trace, debug, info, warn, error or disabled. --debug forces debug.
  level: warn
  # console (human readable, stderr) or json.
  format: console
  # Write JSON log lines to this file instead of stderr.
  file: ""

metrics:
  # Write Prometheus counters to a textfile after every command, e.g. for
  # the node_exporter textfile collector.
  enabled: false
  textfile: ~/.twt/metrics.prom
`

// BaseDir returns the root data directory (~/.twt).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".twt"), nil
}

// DefaultPath returns the path to ~/.twt/config.yaml.
func DefaultPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", "~/.twt/data")
	v.SetDefault("storage.sqlitePath", "~/.twt/twt.db")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.sizeMB", 4)
	v.SetDefault("history.retentionCap", 30)
	v.SetDefault("history.nearThreshold", 0.70)
	v.SetDefault("history.completeThreshold", 1.0)
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.file", "")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile", "~/.twt/metrics.prom")
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("storage.backend", "TWT_STORAGE_BACKEND")
	_ = v.BindEnv("storage.dir", "TWT_STORAGE_DIR")
	_ = v.BindEnv("storage.sqlitePath", "TWT_SQLITE_PATH")
	_ = v.BindEnv("cache.enabled", "TWT_CACHE_ENABLED")
	_ = v.BindEnv("cache.sizeMB", "TWT_CACHE_SIZE_MB")
	_ = v.BindEnv("history.retentionCap", "TWT_HISTORY_RETENTION_CAP")
	_ = v.BindEnv("logger.level", "TWT_LOG_LEVEL")
	_ = v.BindEnv("logger.file", "TWT_LOG_FILE")
	_ = v.BindEnv("metrics.enabled", "TWT_METRICS_ENABLED")
}

// Load reads the config at path (the default path when empty), creating it
// with annotated defaults on first run. Missing keys fall back to built-in
// defaults; TWT_* environment variables take precedence over the file.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	_, statErr := os.Stat(path)
	switch {
	case errors.Is(statErr, fs.ErrNotExist):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case statErr != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", path, statErr)
	default:
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	cfg.Path = path

	if err := cfg.expandPaths(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	sections := []any{&c.Storage, &c.History, &c.Logger}
	if c.Cache.Enabled {
		sections = append(sections, &c.Cache)
	}
	for _, s := range sections {
		v := validate.Struct(s)
		if !v.Validate() {
			return v.Errors
		}
	}
	return c.History.Policy().Validate()
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Storage.Dir, &c.Storage.SQLitePath, &c.Logger.File, &c.Metrics.Textfile} {
		expanded, err := expandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
