package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses the config file at path. A missing file yields
// DefaultConfig; a malformed file is an error. After parsing, secret
// values are overridden from the environment when set.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv overrides secret-bearing fields from environment variables.
// Environment always wins so deployments never need keys in the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("FOURSQUARE_SERVICE_KEY"); v != "" {
		cfg.Places.ServiceKey = v
	}
	if v := os.Getenv("DESCOPE_PROJECT_ID"); v != "" {
		cfg.Auth.ProjectID = v
	}
	if v := os.Getenv("LOCALHIVE_DB"); v != "" {
		cfg.Store.Path = v
	}
}
