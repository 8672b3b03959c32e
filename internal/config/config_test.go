package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return LoadConfig(
		8080, "info",
		"https://api.prevencion.example.com", "", "",
		10*time.Second, 4, 100,
		true, 512, 30*time.Second,
		50000,
		false, "", "",
	)
}

func TestConfig_ValidateValid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_ValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.APIPort = 0 },
			wantErr: "APIPort",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.APIPort = 70000 },
			wantErr: "APIPort",
		},
		{
			name: "no backend source",
			mutate: func(c *Config) {
				c.BackendURL = ""
				c.BackendsConfigPath = ""
			},
			wantErr: "BackendURL or BackendsConfigPath",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.RequestTimeout = 0 },
			wantErr: "RequestTimeout",
		},
		{
			name:    "zero loader concurrency",
			mutate:  func(c *Config) { c.LoaderConcurrency = 0 },
			wantErr: "LoaderConcurrency",
		},
		{
			name:    "cache enabled without entries",
			mutate:  func(c *Config) { c.CacheMaxEntries = 0 },
			wantErr: "CacheMaxEntries",
		},
		{
			name:    "cache enabled without ttl",
			mutate:  func(c *Config) { c.CacheTTL = 0 },
			wantErr: "CacheTTL",
		},
		{
			name:    "negative daily cost",
			mutate:  func(c *Config) { c.CostoDiario = -1 },
			wantErr: "CostoDiario",
		},
		{
			name: "tracing enabled without endpoint",
			mutate: func(c *Config) {
				c.TracingEnabled = true
				c.TracingEndpoint = ""
			},
			wantErr: "TracingEndpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestConfig_BackendsFileOnlyIsValid(t *testing.T) {
	cfg := validConfig()
	cfg.BackendURL = ""
	cfg.BackendsConfigPath = "/etc/vigia/backends.yaml"
	assert.NoError(t, cfg.Validate())
}
