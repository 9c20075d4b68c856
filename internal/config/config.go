package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Seed      SeedConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Fetch     FetchConfig
	Runtime   RuntimeConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StoreConfig selects and tunes the file store backend.
type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	Path   string `envconfig:"STORE_PATH" default:"vshell.db"`
}

// SeedConfig points at the project manifests loaded on startup.
type SeedConfig struct {
	Dir     string `envconfig:"SEED_DIR" default:"seeds"`
	Enabled bool   `envconfig:"SEED_ENABLED" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds per-IP rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// FetchConfig controls the outbound HTTP client behind curl.
type FetchConfig struct {
	Enabled bool          `envconfig:"FETCH_ENABLED" default:"true"`
	Timeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
}

// RuntimeConfig bounds the JavaScript runtime behind node.
type RuntimeConfig struct {
	Timeout time.Duration `envconfig:"JS_TIMEOUT" default:"5s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "vshell.db",
		},
		Seed: SeedConfig{
			Dir:     "seeds",
			Enabled: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Fetch: FetchConfig{
			Enabled: true,
			Timeout: 15 * time.Second,
		},
		Runtime: RuntimeConfig{
			Timeout: 5 * time.Second,
		},
	}
}
