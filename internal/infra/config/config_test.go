package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":3000",
			RequestTimeoutSec: 30,
		},
		YouTube: YouTubeConfig{
			APIKey:     "test-api-key",
			BaseURL:    "https://youtube.googleapis.com/",
			PageSize:   50,
			TimeoutSec: 10,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "http",
			Endpoint:     "localhost:4318",
			SamplingRate: 1,
		},
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("YTLENGTH_ADDR", "")
}

func TestConfig_Validate_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing api key",
			modify:  func(c *Config) { c.YouTube.APIKey = "" },
			wantErr: true,
			errMsg:  "APIKey",
		},
		{
			name:    "page size above API maximum",
			modify:  func(c *Config) { c.YouTube.PageSize = 51 },
			wantErr: true,
			errMsg:  "PageSize",
		},
		{
			name:    "page size zero",
			modify:  func(c *Config) { c.YouTube.PageSize = 0 },
			wantErr: true,
			errMsg:  "PageSize",
		},
		{
			name:    "invalid base url",
			modify:  func(c *Config) { c.YouTube.BaseURL = "not a url" },
			wantErr: true,
			errMsg:  "BaseURL",
		},
		{
			name:    "unknown exporter",
			modify:  func(c *Config) { c.Telemetry.Exporter = "zipkin" },
			wantErr: true,
			errMsg:  "Exporter",
		},
		{
			name:    "sampling rate out of range",
			modify:  func(c *Config) { c.Telemetry.SamplingRate = 1.5 },
			wantErr: true,
			errMsg:  "SamplingRate",
		},
		{
			name:    "request timeout zero",
			modify:  func(c *Config) { c.Server.RequestTimeoutSec = 0 },
			wantErr: true,
			errMsg:  "RequestTimeoutSec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
youtube:
  api_key: "file-key"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Server.RequestTimeoutSec)
	assert.Equal(t, "file-key", cfg.YouTube.APIKey)
	assert.Equal(t, "https://youtube.googleapis.com/", cfg.YouTube.BaseURL)
	assert.Equal(t, 50, cfg.YouTube.PageSize)
	assert.Equal(t, 10, cfg.YouTube.TimeoutSec)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "http", cfg.Telemetry.Exporter)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout())
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: ":8080"
  request_timeout_sec: 5
  hooks:
    on_started: ["echo started"]
youtube:
  api_key: "file-key"
  page_size: 25
telemetry:
  enabled: true
  exporter: grpc
  endpoint: "collector:4317"
  sampling_rate: 0.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.Equal(t, []string{"echo started"}, cfg.Server.Hooks.OnStarted)
	assert.Equal(t, 25, cfg.YouTube.PageSize)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "grpc", cfg.Telemetry.Exporter)
	assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 0.5, cfg.Telemetry.SamplingRate)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name        string
		youtubeKey  string
		googleKey   string
		expectedKey string
	}{
		{
			name:        "GOOGLE_API_KEY overrides file",
			googleKey:   "google-key",
			expectedKey: "google-key",
		},
		{
			name:        "YOUTUBE_API_KEY overrides file",
			youtubeKey:  "youtube-key",
			expectedKey: "youtube-key",
		},
		{
			name:        "YOUTUBE_API_KEY wins over GOOGLE_API_KEY",
			youtubeKey:  "youtube-key",
			googleKey:   "google-key",
			expectedKey: "youtube-key",
		},
		{
			name:        "file value kept without env",
			expectedKey: "file-key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("YOUTUBE_API_KEY", tt.youtubeKey)
			t.Setenv("GOOGLE_API_KEY", tt.googleKey)
			path := writeConfig(t, "youtube:\n  api_key: \"file-key\"\n")

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedKey, cfg.YouTube.APIKey)
		})
	}
}

func TestLoad_WithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("YOUTUBE_API_KEY", "env-key")
	t.Setenv("YTLENGTH_ADDR", ":9999")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.YouTube.APIKey)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing api key fails fast", func(t *testing.T) {
		clearEnv(t)
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey")
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, "youtube: [unterminated")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}
