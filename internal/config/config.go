// Package config loads the evemt application configuration and the
// persisted user settings.
//
// The application config is YAML and is applied in order of increasing
// precedence: defaults, the user config file, EVEMT_* environment variables.
// User settings (theme, language, remembered pack) live as JSON inside the
// data directory; see settings.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
)

// Config represents the complete evemt application configuration.
type Config struct {
	// DataDir holds packs, logs, and settings. Defaults to $XDG_DATA_HOME/evemt.
	DataDir string       `yaml:"data_dir" json:"data_dir"`
	Log     LogConfig    `yaml:"log" json:"log"`
	Import  ImportConfig `yaml:"import" json:"import"`
	Search  SearchConfig `yaml:"search" json:"search"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level     string `yaml:"level" json:"level"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// ImportConfig configures the import pipeline.
type ImportConfig struct {
	// Workers bounds how many archives extract at the same time.
	Workers int `yaml:"workers" json:"workers"`
}

// SearchConfig configures search defaults.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit" json:"default_limit"`
	// CacheSize is the number of result lists cached per activated pack.
	// Zero disables the cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		Import: ImportConfig{
			Workers: 2,
		},
		Search: SearchConfig{
			DefaultLimit: 20,
			CacheSize:    256,
		},
	}
}

// DefaultDataDir returns the default data directory.
// It follows the XDG Base Directory specification:
//   - $XDG_DATA_HOME/evemt (if XDG_DATA_HOME is set)
//   - ~/.local/share/evemt (default)
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "evemt")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "evemt")
	}
	return filepath.Join(home, ".local", "share", "evemt")
}

// GetUserConfigPath returns the path to the user configuration file.
//   - $XDG_CONFIG_HOME/evemt/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/evemt/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "evemt", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "evemt", "config.yaml")
	}
	return filepath.Join(home, ".config", "evemt", "config.yaml")
}

// Load builds the configuration. An empty path means the user config path;
// a missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetUserConfigPath()
	}

	cfg := NewConfig()
	if _, err := os.Stat(path); err == nil {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeConfigNotFound,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return apperrors.New(apperrors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.DataDir != "" {
		c.DataDir = expandHome(other.DataDir)
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.MaxSizeMB != 0 {
		c.Log.MaxSizeMB = other.Log.MaxSizeMB
	}
	if other.Log.MaxFiles != 0 {
		c.Log.MaxFiles = other.Log.MaxFiles
	}

	if other.Import.Workers != 0 {
		c.Import.Workers = other.Import.Workers
	}

	if other.Search.DefaultLimit != 0 {
		c.Search.DefaultLimit = other.Search.DefaultLimit
	}
	if other.Search.CacheSize != 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}
}

// applyEnvOverrides applies EVEMT_* environment variable overrides.
// Unparseable numbers are ignored. EVEMT_SEARCH_CACHE_SIZE=0 disables the cache.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EVEMT_DATA_DIR"); v != "" {
		c.DataDir = expandHome(v)
	}
	if v := os.Getenv("EVEMT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("EVEMT_IMPORT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Import.Workers = n
		}
	}
	if v := os.Getenv("EVEMT_SEARCH_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Search.CacheSize = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid, format, args...)
	}

	if c.DataDir == "" {
		return invalid("data_dir must not be empty")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxFiles < 0 {
		return invalid("log.max_size_mb and log.max_files must be non-negative")
	}

	if c.Import.Workers < 1 {
		return invalid("import.workers must be at least 1, got %d", c.Import.Workers)
	}

	if c.Search.DefaultLimit < 1 {
		return invalid("search.default_limit must be at least 1, got %d", c.Search.DefaultLimit)
	}
	if c.Search.CacheSize < 0 {
		return invalid("search.cache_size must be non-negative, got %d", c.Search.CacheSize)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file, creating parent directories.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// PacksDir returns the directory holding one subdirectory per pack.
func (c *Config) PacksDir() string {
	return filepath.Join(c.DataDir, "packs")
}

// SettingsPath returns the persisted settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "config.json")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
