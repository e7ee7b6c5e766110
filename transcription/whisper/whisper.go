// Package whisper implements transcription.Provider against the Whisper ASR
// web service (POST /asr?output=json with an audio_file form part).
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/resilience"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/util"
	"github.com/kbukum/scribe/validation"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	// FormField is the multipart field the ASR service reads audio from.
	FormField = "audio_file"

	defaultURL         = "http://localhost:9000"
	defaultTimeout     = 120 * time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
)

// Config holds configuration for the Whisper provider.
type Config struct {
	URL      string        `yaml:"url" mapstructure:"url" validate:"required,url"`
	Language string        `yaml:"language" mapstructure:"language"`
	Task     string        `yaml:"task" mapstructure:"task" validate:"omitempty,oneof=transcribe translate"`
	Token    string        `yaml:"token" mapstructure:"token"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxAttempts counts every attempt, including the first.
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1"`
	RetryDelay  time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c)
}

// Option customizes a Provider.
type Option func(*options)

type options struct {
	sleep resilience.SleepFunc
	log   *logger.Logger
}

// WithSleep replaces the wait between retries.
func WithSleep(sleep resilience.SleepFunc) Option {
	return func(o *options) { o.sleep = sleep }
}

// WithLogger sets the logger used to report retries.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// Provider implements transcription.Provider over HTTP.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

var _ transcription.Provider = (*Provider)(nil)

// NewProvider creates a Whisper provider. Transport failures are retried
// with a fixed delay; HTTP status failures are not.
func NewProvider(cfg Config, opts ...Option) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.WithComponent(ProviderName)

	retry := httpclient.TransportRetryConfig(cfg.MaxAttempts, cfg.RetryDelay)
	retry.Sleep = o.sleep
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("whisper request failed, retrying", logger.Fields(
			"attempt", attempt, logger.FieldError, err, "backoff", backoff.String()))
	}

	var auth *httpclient.AuthConfig
	if cfg.Token != "" {
		auth = httpclient.BearerAuth(cfg.Token)
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
		Auth:    auth,
		Retry:   retry,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client, log: log}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the service answers at its base URL.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.client.Ping(ctx, "") == nil
}

type asrResponse struct {
	Text     string                  `json:"text"`
	Segments []transcription.Segment `json:"segments"`
	Language string                  `json:"language"`
}

// Transcribe posts the audio to /asr and returns the recognized text.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	query := map[string]string{"output": "json"}
	if lang := util.Coalesce(req.Language, p.cfg.Language); lang != "" {
		query["language"] = lang
	}
	if p.cfg.Task != "" {
		query["task"] = p.cfg.Task
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "audio"
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/asr",
		Query:  query,
		Body: &httpclient.MultipartBody{Files: []httpclient.FileField{{
			FieldName:   FormField,
			FileName:    fileName,
			ContentType: req.ContentType,
			Data:        req.Audio,
		}}},
	})
	if err != nil {
		if httpErr, ok := httpclient.AsError(err); ok && httpErr.StatusCode > 0 {
			return nil, errors.ExternalServiceError(ProviderName,
				fmt.Errorf("whisper transcription failed: %s - %s", httpErr.StatusText(), string(httpErr.Body)))
		}
		return nil, err
	}

	var result asrResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, errors.ExternalServiceError(ProviderName, fmt.Errorf("decode whisper response: %w", err))
	}
	return &transcription.TranscriptionResponse{
		Text:     result.Text,
		Segments: result.Segments,
		Language: result.Language,
	}, nil
}
