// Package config loads the localhive configuration from a YAML file with
// environment-variable overrides for secrets.
package config

// Config is the full configuration tree.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Places    PlacesConfig    `yaml:"places"`
	Auth      AuthConfig      `yaml:"auth"`
	Store     StoreConfig     `yaml:"store"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LLMConfig configures the OpenAI-compatible completion service.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	APIBase     string  `yaml:"api_base"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// PlacesConfig configures the Foursquare places backend.
type PlacesConfig struct {
	APIBase    string `yaml:"api_base"`
	APIVersion string `yaml:"api_version"`
	ServiceKey string `yaml:"service_key"`
}

// AuthConfig configures the remote session-validation service.
type AuthConfig struct {
	ProjectID string `yaml:"project_id"`
	APIBase   string `yaml:"api_base"`
	// Disabled skips bearer-token validation entirely. Local development only.
	Disabled bool `yaml:"disabled"`
}

// StoreConfig configures the sqlite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// RetentionConfig configures the scheduled purge of aged chat messages.
type RetentionConfig struct {
	// Schedule is a cron expression; empty disables the job.
	Schedule string `yaml:"schedule"`
	// MaxAgeDays is the age past which messages are purged.
	MaxAgeDays int `yaml:"max_age_days"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		LLM: LLMConfig{
			APIBase:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			MaxTokens:   4096,
			Temperature: 0.7,
		},
		Places: PlacesConfig{
			APIBase:    "https://places-api.foursquare.com/places",
			APIVersion: "2025-06-17",
		},
		Auth:  AuthConfig{APIBase: "https://api.descope.com"},
		Store: StoreConfig{Path: "localhive.db"},
		Retention: RetentionConfig{
			Schedule:   "0 0 3 * * *",
			MaxAgeDays: 90,
		},
	}
}
