// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type StoreConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type SyncConfig struct {
	// DebounceMs is the window that coalesces rapid edits into one
	// write. Zero falls back to the engine default.
	DebounceMs int `yaml:"debounce_ms"`
	// ResyncSeconds is the period of the safety-net resync job. Zero
	// disables it.
	ResyncSeconds int `yaml:"resync_seconds"`
}

type EngineConfig struct {
	PointsPerMatch int `yaml:"points_per_match"`
	CourtCount     int `yaml:"court_count"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
	} `yaml:"app"`

	Store  StoreConfig  `yaml:"store"`
	Sync   SyncConfig   `yaml:"sync"`
	Engine EngineConfig `yaml:"engine"`
}

// Load loads both .env and yaml configuration.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Store.Driver == "" {
		return fmt.Errorf("store driver is required")
	}
	if c.Store.Driver == "sqlite" && c.Store.Filename == "" {
		return fmt.Errorf("store filename is required for sqlite")
	}
	if c.Sync.DebounceMs < 0 || c.Sync.ResyncSeconds < 0 {
		return fmt.Errorf("sync intervals must not be negative")
	}
	return nil
}

// Debounce returns the configured coalescing window, or zero to let the
// engine default apply.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Sync.DebounceMs) * time.Millisecond
}

func (c *Config) ResyncInterval() time.Duration {
	return time.Duration(c.Sync.ResyncSeconds) * time.Second
}
