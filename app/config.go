package app

import (
	"errors"
	"fmt"

	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/soap"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/transcription/whisper"
)

// ServiceName names the service in config files, logs and telemetry.
const ServiceName = "scribe"

// Config is the complete scribe configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Whisper       whisper.Config       `yaml:"whisper" mapstructure:"whisper"`
	Summarizer    soap.Config          `yaml:"summarizer" mapstructure:"summarizer"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// envAliases maps the flat variables the service has always read onto the
// nested keys.
var envAliases = []config.EnvAlias{
	{Env: "PORT", Key: "server.port"},
	{Env: "DATABASE_URL", Key: "database.dsn"},
	{Env: "AWS_REGION", Key: "storage.region"},
	{Env: "AWS_S3_BUCKET", Key: "storage.bucket"},
	{Env: "AWS_ACCESS_KEY_ID", Key: "storage.access_key"},
	{Env: "AWS_SECRET_ACCESS_KEY", Key: "storage.secret_key"},
	{Env: "WHISPER_URL", Key: "whisper.url"},
	{Env: "OPENAI_API_KEY", Key: "summarizer.api_key"},
	{Env: "USE_MOCK_AI", Key: "summarizer.mock", Transform: config.ParseStrictBool},
}

// defaults registers every key viper should bind from the environment.
var defaults = map[string]any{
	"name":                  ServiceName,
	"server.port":           3001,
	"server.host":           "0.0.0.0",
	"database.driver":       database.DriverPostgres,
	"database.dsn":          "",
	"database.migrate":      true,
	"storage.provider":      storage.ProviderS3,
	"storage.bucket":        storage.DefaultBucket,
	"storage.region":        storage.DefaultRegion,
	"storage.endpoint":      "",
	"storage.access_key":    "",
	"storage.secret_key":    "",
	"whisper.url":           "http://localhost:9000",
	"summarizer.mock":       false,
	"summarizer.api_key":    "",
	"observability.enabled": false,
}

// LoadConfig reads the scribe configuration from config files, .env files
// and the environment.
func LoadConfig(opts ...config.LoaderOption) (*Config, error) {
	var cfg Config
	if err := load(&cfg, opts); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SeedConfig is the subset of Config the seed task needs.
type SeedConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Database database.Config `yaml:"database" mapstructure:"database"`
}

// LoadSeedConfig reads SeedConfig from the same sources as LoadConfig.
func LoadSeedConfig(opts ...config.LoaderOption) (*SeedConfig, error) {
	var cfg SeedConfig
	if err := load(&cfg, opts); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills the service and database sections.
func (c *SeedConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Database.ApplyDefaults()
}

// Validate checks the service and database sections.
func (c *SeedConfig) Validate() error {
	var errs []error
	if err := c.ServiceConfig.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("service: %w", err))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	return errors.Join(errs...)
}

func load(cfg any, opts []config.LoaderOption) error {
	opts = append([]config.LoaderOption{
		config.WithDefaults(defaults),
		config.WithEnvAliases(envAliases...),
	}, opts...)
	return config.LoadConfig(ServiceName, cfg, opts...)
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.Summarizer.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section and reports all failures.
func (c *Config) Validate() error {
	var errs []error
	for _, s := range []struct {
		name string
		fn   func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"server", c.Server.Validate},
		{"database", c.Database.Validate},
		{"storage", c.Storage.Validate},
		{"whisper", c.Whisper.Validate},
		{"summarizer", c.Summarizer.Validate},
		{"observability", c.Observability.Validate},
	} {
		if err := s.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// ObservabilityService identifies the service to the telemetry backend.
func (c *Config) ObservabilityService() observability.Service {
	return observability.Service{Name: c.Name, Version: c.Version, Environment: c.Environment}
}
