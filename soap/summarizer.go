package soap

import (
	"context"
	"time"

	"github.com/kbukum/scribe/llm"
	"github.com/kbukum/scribe/llm/openai"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/provider"
)

// Registry holds the completion backends a Summarizer can be built on.
var Registry = provider.NewRegistry[llm.Provider, llm.Config]()

func init() {
	Registry.Register(openai.ProviderName, openai.Factory)
}

// Summarizer produces SOAP notes from clinical text.
type Summarizer struct {
	cfg     Config
	backend llm.Provider
	log     *logger.Logger
}

// Option customizes a Summarizer.
type Option func(*Summarizer)

// WithBackend uses p instead of building one from the registry.
func WithBackend(p llm.Provider) Option {
	return func(s *Summarizer) { s.backend = p }
}

// WithLogger sets the summarizer logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Summarizer) { s.log = log }
}

// New creates a Summarizer. Outside mock mode the backend named by
// cfg.Provider is created from Registry unless WithBackend supplies one.
func New(cfg Config, opts ...Option) (*Summarizer, error) {
	cfg.ApplyDefaults()
	s := &Summarizer{cfg: cfg, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("summarizer")

	if !cfg.Mock && s.backend == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		backend, err := Registry.Create(cfg.Provider, cfg.llmConfig())
		if err != nil {
			return nil, err
		}
		s.backend = backend
	}
	s.log.Info("Summarizer ready", logger.Fields("backend", s.Backend(), "model", cfg.Model))
	return s, nil
}

// Name identifies the summarizer as a provider.
func (s *Summarizer) Name() string { return "summarizer" }

// Mock reports whether the summarizer returns the canned note.
func (s *Summarizer) Mock() bool { return s.cfg.Mock }

// Backend returns the completion backend name, or "mock".
func (s *Summarizer) Backend() string {
	if s.cfg.Mock {
		return "mock"
	}
	return s.backend.Name()
}

// Summarize converts text into a SOAP note. In mock mode it returns
// MockNote; otherwise it makes one completion call and returns the first
// choice, or "" when the backend returned none. Failures are not retried.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if s.cfg.Mock {
		s.log.Debug("returning mock SOAP note")
		return MockNote, nil
	}

	start := time.Now()
	resp, err := s.backend.Complete(ctx, llm.CompletionRequest{
		Model:        s.cfg.Model,
		SystemPrompt: SystemPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: text}},
		Temperature:  llm.Float(*s.cfg.Temperature),
	})
	if err != nil {
		return "", err
	}
	s.log.Debug("SOAP note generated", logger.Fields(
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return resp.Content, nil
}

// IsAvailable reports whether the backend can serve requests. Mock mode is
// always available.
func (s *Summarizer) IsAvailable(ctx context.Context) bool {
	if s.cfg.Mock {
		return true
	}
	return s.backend.IsAvailable(ctx)
}
