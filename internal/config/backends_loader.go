package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadBackendsFile loads and validates a backends configuration file using Koanf.
// Returns the parsed and validated BackendsFile or an error.
//
// Error cases:
//   - File not found or cannot be read
//   - Invalid YAML syntax
//   - Schema validation failure (unsupported version, missing required fields, duplicate names)
func LoadBackendsFile(filepath string) (*BackendsFile, error) {
	// Create new Koanf instance with dot delimiter
	k := koanf.New(".")

	// Load file using file provider with YAML parser
	if err := k.Load(file.Provider(filepath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load backends config from %q: %w", filepath, err)
	}

	// Unmarshal into BackendsFile struct
	var config BackendsFile
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse backends config from %q: %w", filepath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("backends config validation failed for %q: %w", filepath, err)
	}

	return &config, nil
}
