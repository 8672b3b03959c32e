package config

import (
	"fmt"
)

// BackendsFile represents the top-level structure of the backends config file.
// It names the backend environments Vigia can consolidate incidents from.
//
// Example YAML structure:
//
//	schema_version: v1
//	backends:
//	  - name: prevencion-prod
//	    url: "https://api.prevencion.example.com"
//	    enabled: true
//	    token: "..."
//	  - name: prevencion-staging
//	    url: "https://api-staging.prevencion.example.com"
//	    enabled: false
type BackendsFile struct {
	// SchemaVersion is the explicit config schema version (e.g., "v1")
	SchemaVersion string `yaml:"schema_version"`

	// Backends is the list of backend environments
	Backends []BackendConfig `yaml:"backends"`
}

// BackendConfig represents a single backend environment.
type BackendConfig struct {
	// Name is the unique environment name (e.g., "prevencion-prod")
	Name string `yaml:"name"`

	// URL is the base URL of the backend REST API
	URL string `yaml:"url"`

	// Enabled indicates whether this environment can be selected
	Enabled bool `yaml:"enabled"`

	// Token is the bearer token for backend requests, optional
	Token string `yaml:"token,omitempty"`
}

// Validate checks that the BackendsFile is valid.
func (f *BackendsFile) Validate() error {
	if f.SchemaVersion != "v1" {
		return NewConfigError(fmt.Sprintf(
			"unsupported schema_version: %q (expected \"v1\")", f.SchemaVersion))
	}

	if len(f.Backends) == 0 {
		return NewConfigError("backends list must not be empty")
	}

	seen := make(map[string]bool, len(f.Backends))
	for i, b := range f.Backends {
		if b.Name == "" {
			return NewConfigError(fmt.Sprintf("backends[%d]: name must not be empty", i))
		}
		if seen[b.Name] {
			return NewConfigError(fmt.Sprintf("duplicate backend name: %q", b.Name))
		}
		seen[b.Name] = true
		if b.URL == "" {
			return NewConfigError(fmt.Sprintf("backend %q: url must not be empty", b.Name))
		}
	}

	return nil
}

// Active returns the first enabled backend.
func (f *BackendsFile) Active() (*BackendConfig, error) {
	for i := range f.Backends {
		if f.Backends[i].Enabled {
			return &f.Backends[i], nil
		}
	}
	return nil, NewConfigError("no enabled backend in backends config")
}
