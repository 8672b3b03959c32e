package config

import "time"

// Config holds all configuration for the application
type Config struct {
	// APIPort is the port the API server listens on
	APIPort int

	// LogLevel is the logging level (debug, info, warn, error)
	LogLevel string

	// BackendURL is the base URL of the incident backend REST API
	BackendURL string

	// BackendToken is the bearer token for backend requests
	BackendToken string

	// BackendsConfigPath is the path to the YAML file with named backend
	// environments; overrides BackendURL/BackendToken when set
	BackendsConfigPath string

	// RequestTimeout bounds each backend request
	RequestTimeout time.Duration

	// LoaderConcurrency bounds parallel fetches per analysis batch
	LoaderConcurrency int

	// MaxConcurrentRequests is the maximum number of concurrent API requests
	MaxConcurrentRequests int

	// CacheEnabled indicates whether backend read caching is enabled
	CacheEnabled bool

	// CacheMaxEntries is the maximum number of cached backend reads
	CacheMaxEntries int

	// CacheTTL is how long a cached backend read stays valid
	CacheTTL time.Duration

	// CostoDiario is the estimated daily cost of one lost work day, in
	// whole currency units
	CostoDiario float64

	// TracingEnabled indicates whether OpenTelemetry tracing is enabled
	TracingEnabled bool

	// TracingEndpoint is the OTLP gRPC endpoint for trace export
	TracingEndpoint string

	// TracingTLSCAPath is the path to the CA certificate for TLS verification
	TracingTLSCAPath string
}

// LoadConfig creates a Config with the provided values
func LoadConfig(apiPort int, logLevel, backendURL, backendToken, backendsConfigPath string, requestTimeout time.Duration, loaderConcurrency, maxConcurrentRequests int, cacheEnabled bool, cacheMaxEntries int, cacheTTL time.Duration, costoDiario float64, tracingEnabled bool, tracingEndpoint, tracingTLSCAPath string) *Config {
	cfg := &Config{
		APIPort:               apiPort,
		LogLevel:              logLevel,
		BackendURL:            backendURL,
		BackendToken:          backendToken,
		BackendsConfigPath:    backendsConfigPath,
		RequestTimeout:        requestTimeout,
		LoaderConcurrency:     loaderConcurrency,
		MaxConcurrentRequests: maxConcurrentRequests,
		CacheEnabled:          cacheEnabled,
		CacheMaxEntries:       cacheMaxEntries,
		CacheTTL:              cacheTTL,
		CostoDiario:           costoDiario,
		TracingEnabled:        tracingEnabled,
		TracingEndpoint:       tracingEndpoint,
		TracingTLSCAPath:      tracingTLSCAPath,
	}

	return cfg
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.APIPort < 1 || c.APIPort > 65535 {
		return NewConfigError("APIPort must be between 1 and 65535")
	}

	if c.BackendURL == "" && c.BackendsConfigPath == "" {
		return NewConfigError("either BackendURL or BackendsConfigPath must be set")
	}

	if c.RequestTimeout <= 0 {
		return NewConfigError("RequestTimeout must be positive")
	}

	if c.LoaderConcurrency < 1 {
		return NewConfigError("LoaderConcurrency must be at least 1")
	}

	if c.MaxConcurrentRequests < 1 {
		return NewConfigError("MaxConcurrentRequests must be at least 1")
	}

	if c.CacheEnabled && c.CacheMaxEntries < 1 {
		return NewConfigError("CacheMaxEntries must be at least 1 when cache is enabled")
	}

	if c.CacheEnabled && c.CacheTTL <= 0 {
		return NewConfigError("CacheTTL must be positive when cache is enabled")
	}

	if c.CostoDiario < 0 {
		return NewConfigError("CostoDiario must not be negative")
	}

	if c.TracingEnabled && c.TracingEndpoint == "" {
		return NewConfigError("TracingEndpoint must be set when tracing is enabled")
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
