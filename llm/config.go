package llm

import "time"

const defaultTimeout = 120 * time.Second

// Config holds settings shared by completion backends.
type Config struct {
	// BaseURL overrides the backend's API endpoint. Empty uses the backend default.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey authenticates against the backend.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Model is the default model (e.g. "gpt-4o-mini").
	Model string `yaml:"model" mapstructure:"model"`
	// Timeout bounds a single request. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}
