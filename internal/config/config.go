// ABOUTME: Pace configuration management with backend selection.
// ABOUTME: Layers PACE_* environment overrides over the JSON config file via viper.

package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pace/internal/kv"
	"github.com/harperreed/pace/internal/storage"
	"github.com/spf13/viper"
)

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"

	DefaultBatchSize     = 500
	DefaultSplitDistance = 1000.0
	DefaultLogLevel      = "info"
	DefaultHTTPAddr      = "127.0.0.1:8417"
)

// Config stores pace tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "badger".
	Backend string `json:"backend,omitempty" mapstructure:"backend"`

	// DataDir is the root directory for data storage.
	// SQLite puts pace.db here. Badger puts its files under kv/.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/pace.
	DataDir string `json:"data_dir,omitempty" mapstructure:"data_dir"`

	// SplitDistance is the default split length in meters.
	SplitDistance float64 `json:"split_distance,omitempty" mapstructure:"split_distance"`

	// BatchSize is how many rows a store delivers per batch.
	BatchSize int `json:"batch_size,omitempty" mapstructure:"batch_size"`

	LogLevel string `json:"log_level,omitempty" mapstructure:"log_level"`
	HTTPAddr string `json:"http_addr,omitempty" mapstructure:"http_addr"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

func (c *Config) GetSplitDistance() float64 {
	if c.SplitDistance <= 0 {
		return DefaultSplitDistance
	}
	return c.SplitDistance
}

func (c *Config) GetBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

func (c *Config) GetHTTPAddr() string {
	if c.HTTPAddr == "" {
		return DefaultHTTPAddr
	}
	return c.HTTPAddr
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	return OpenBackend(c.GetBackend(), c.GetDataDir(), c.GetBatchSize())
}

// OpenBackend opens the named backend rooted at dataDir.
func OpenBackend(backend, dataDir string, batchSize int) (storage.Repository, error) {
	switch backend {
	case BackendSQLite:
		return storage.Open(filepath.Join(dataDir, "pace.db"), storage.WithBatchSize(batchSize))
	case BackendBadger:
		return kv.Open(filepath.Join(dataDir, "kv"), batchSize)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// NewLogger creates the logger used across commands.
func (c *Config) NewLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(c.GetLogLevel())
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "pace",
		ReportTimestamp: level == log.DebugLevel,
	}), nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "pace", "config.json")
}

// Load reads config from disk. A missing file is not an error.
// PACE_BACKEND, PACE_DATA_DIR and the other PACE_* variables override the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(GetConfigPath())
	v.SetConfigType("json")
	v.SetEnvPrefix("PACE")
	v.AutomaticEnv()

	// Defaults register every key so environment overrides reach Unmarshal.
	// Empty defaults keep unset fields empty so Save does not persist them.
	v.SetDefault("backend", "")
	v.SetDefault("data_dir", "")
	v.SetDefault("split_distance", 0.0)
	v.SetDefault("batch_size", 0)
	v.SetDefault("log_level", "")
	v.SetDefault("http_addr", "")

	if _, err := os.Stat(GetConfigPath()); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
