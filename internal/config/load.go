package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads an engine config YAML file if path is non-empty, merging
// its fields over Default(). A missing path is not an error: the caller
// passes "" when no -config flag was given.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
