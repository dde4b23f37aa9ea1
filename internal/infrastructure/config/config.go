package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all host service configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Catalog   CatalogConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// FetchConfig holds remote bundle fetch configuration.
type FetchConfig struct {
	TimeoutSeconds int     `envconfig:"FETCH_TIMEOUT_SECONDS" default:"30"`
	MaxRetries     int     `envconfig:"FETCH_MAX_RETRIES" default:"3"`
	RateLimit      float64 `envconfig:"FETCH_RATE_LIMIT" default:"0"`
	BearerToken    string  `envconfig:"FETCH_BEARER_TOKEN" default:""`
	UserAgent      string  `envconfig:"FETCH_USER_AGENT" default:"PortalOS-Host/1.0"`
}

// CatalogConfig holds the remote manifest location.
type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH" default:"remotes.yaml"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds API rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
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
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			MaxRetries:     3,
			UserAgent:      "PortalOS-Host/1.0",
		},
		Catalog: CatalogConfig{
			Path: "remotes.yaml",
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
	}
}
