// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr              string      `yaml:"addr" default:":3000"`
	RequestTimeoutSec int         `yaml:"request_timeout_sec" default:"30" validate:"gte=1,lte=600"`
	Hooks             HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// YouTubeConfig represents YouTube Data API configuration.
type YouTubeConfig struct {
	APIKey     string `yaml:"api_key" validate:"required"`
	BaseURL    string `yaml:"base_url" default:"https://youtube.googleapis.com/" validate:"url"`
	PageSize   int    `yaml:"page_size" default:"50" validate:"gte=1,lte=50"`
	TimeoutSec int    `yaml:"timeout_sec" default:"10" validate:"gte=1,lte=120"`
}

// TelemetryConfig represents OpenTelemetry tracing configuration.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter" default:"http" validate:"oneof=http grpc"`
	Endpoint     string  `yaml:"endpoint" default:"localhost:4318"`
	SamplingRate float64 `yaml:"sampling_rate" default:"1" validate:"gte=0,lte=1"`
}

// Load loads configuration from a YAML file.
// An empty path skips the file and builds the configuration from
// environment variables and defaults only.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
// YOUTUBE_API_KEY wins over GOOGLE_API_KEY when both are set.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.YouTube.APIKey = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTube.APIKey = v
	}
	if v := os.Getenv("YTLENGTH_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// RequestTimeout returns the per-request deadline for building a report.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

// UpstreamTimeout returns the timeout of a single YouTube API call.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.YouTube.TimeoutSec) * time.Second
}
