package storage

import (
	"errors"
	"fmt"
	"time"
)

// Provider constants for supported storage backends.
const (
	ProviderS3     = "s3"
	ProviderLocal  = "local"
	ProviderMemory = "memory"
)

// Default configuration values.
const (
	DefaultProvider        = ProviderS3
	DefaultBucket          = "scribe-audio"
	DefaultRegion          = "us-east-1"
	DefaultBasePath        = "./data/audio"
	DefaultSignedURLExpiry = time.Hour
)

// Config holds storage configuration.
type Config struct {
	// Provider selects the storage backend: "s3", "local" or "memory".
	Provider string `mapstructure:"provider" yaml:"provider"`

	// Bucket names the S3 bucket, and the locator bucket for every backend.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region is the AWS region for S3.
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO, LocalStack).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ForcePathStyle forces path-style addressing. Implied by Endpoint.
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`

	// AccessKey is the AWS access key ID. Empty uses the default AWS chain.
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`

	// SecretKey is the AWS secret access key.
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`

	// BasePath is the root directory for local storage.
	BasePath string `mapstructure:"base_path" yaml:"base_path"`

	// SignedURLExpiry bounds the lifetime of playback URLs.
	SignedURLExpiry time.Duration `mapstructure:"signed_url_expiry" yaml:"signed_url_expiry"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.SignedURLExpiry <= 0 {
		c.SignedURLExpiry = DefaultSignedURLExpiry
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderS3:
		var errs []error
		if c.Bucket == "" {
			errs = append(errs, errors.New("bucket is required for s3 provider"))
		}
		if c.Region == "" {
			errs = append(errs, errors.New("region is required for s3 provider"))
		}
		if (c.AccessKey == "") != (c.SecretKey == "") {
			errs = append(errs, errors.New("access_key and secret_key must be set together"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid s3 config: %w", errors.Join(errs...))
		}
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("storage: base_path is required for local provider")
		}
	case ProviderMemory:
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
