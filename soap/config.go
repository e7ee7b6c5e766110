package soap

import (
	"time"

	"github.com/kbukum/scribe/llm"
	"github.com/kbukum/scribe/llm/openai"
	"github.com/kbukum/scribe/validation"
)

const (
	defaultProvider    = openai.ProviderName
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.3
)

// Config holds summarizer settings.
type Config struct {
	// Mock returns MockNote without calling any backend.
	Mock bool `yaml:"mock" mapstructure:"mock"`
	// Provider selects the completion backend by registry name.
	Provider string `yaml:"provider" mapstructure:"provider"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	// BaseURL overrides the backend endpoint.
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	// Temperature defaults to 0.3 when unset; 0 is a valid setting.
	Temperature *float64      `yaml:"temperature" mapstructure:"temperature" validate:"omitempty,gte=0,lte=2"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = defaultProvider
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature == nil {
		c.Temperature = llm.Float(defaultTemperature)
	}
}

// Validate checks the configuration. An API key is only required outside
// mock mode.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	v := validation.New()
	if !c.Mock {
		v.NotEmpty("api_key", &c.APIKey, "summarizer.api_key is required unless summarizer.mock is enabled")
	}
	return v.AsError()
}

func (c *Config) llmConfig() llm.Config {
	return llm.Config{
		BaseURL: c.BaseURL,
		APIKey:  c.APIKey,
		Model:   c.Model,
		Timeout: c.Timeout,
	}
}
