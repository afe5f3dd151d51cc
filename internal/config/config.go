// Package config loads the oastats configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/oastats/oastats-go/internal/store"
)

// Store backends.
const (
	BackendFile   = store.BackendFile
	BackendSQLite = store.BackendSQLite
)

const appName = "oastats"

type StoreConfig struct {
	// Backend is "file" (a JSON snapshot next to the log) or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the snapshot file or database. Empty selects the default
	// location of the backend.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	// MinPlay is the fraction of a game a player must have been present for
	// their results to count.
	MinPlay float64 `yaml:"min_play"`
	// LogPath is the games.log to process. Empty means auto-detect.
	LogPath string `yaml:"log_path"`
	// GameTypeLabel replaces the game type name in reports when set.
	GameTypeLabel string      `yaml:"game_type_label"`
	Store         StoreConfig `yaml:"store"`
	Log           LogConfig   `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		MinPlay: 0.5,
		Store:   StoreConfig{Backend: BackendFile},
		Log:     LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/oastats/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// DefaultDatabasePath returns $XDG_DATA_HOME/oastats/snapshots.db, creating
// the directory if needed.
func DefaultDatabasePath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, "snapshots.db"))
}

// Load reads the YAML file at configPath (DefaultPath when empty) over the
// defaults, then applies OASTATS_* environment overrides. A missing file is
// not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = DefaultPath()
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MinPlay < 0 || c.MinPlay > 1 {
		return fmt.Errorf("min_play must be within [0,1], got %v", c.MinPlay)
	}
	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Store.Backend)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log.level value to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", level)
}

func applyEnvOverrides(c *Config) {
	setFloat(&c.MinPlay, "OASTATS_MIN_PLAY")
	setString(&c.LogPath, "OASTATS_LOG")
	setString(&c.GameTypeLabel, "OASTATS_GAME_TYPE_LABEL")
	setString(&c.Store.Backend, "OASTATS_STORE_BACKEND")
	setString(&c.Store.Path, "OASTATS_STORE_PATH")
	setString(&c.Log.Level, "OASTATS_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = n
		}
	}
}
