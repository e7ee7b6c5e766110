// Package openai implements llm.Provider with the go-openai client. BaseURL
// may point at any OpenAI-compatible endpoint.
package openai

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/llm"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"

	// DefaultModel is used when neither the config nor the request names one.
	DefaultModel = "gpt-4o-mini"
)

// Provider implements llm.Provider over the OpenAI chat completions API.
type Provider struct {
	cfg    llm.Config
	client *goopenai.Client
}

var _ llm.Provider = (*Provider)(nil)

// NewProvider creates an OpenAI provider from cfg.
func NewProvider(cfg llm.Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if cfg.APIKey == "" {
		return nil, errors.MissingField("api_key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{cfg: cfg, client: goopenai.NewClientWithConfig(clientCfg)}, nil
}

// Factory adapts NewProvider to provider.Factory.
func Factory(cfg llm.Config) (llm.Provider, error) {
	return NewProvider(cfg)
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider has credentials to call the API.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.APIKey != ""
}

// Complete sends a chat completion request. The content of the first choice
// is returned; an empty choice list yields an empty Content.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	msgs := req.AllMessages()
	chat := goopenai.ChatCompletionRequest{
		Model:     model,
		Messages:  make([]goopenai.ChatCompletionMessage, 0, len(msgs)),
		MaxTokens: req.MaxTokens,
	}
	if t := req.Temperature; t != nil {
		// go-openai omits a zero temperature, which the API reads as 1.
		chat.Temperature = max(float32(*t), math.SmallestNonzeroFloat32)
	}
	for _, m := range msgs {
		chat.Messages = append(chat.Messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return nil, classify(err)
	}

	out := &llm.CompletionResponse{
		Model: resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
	}
	return out, nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if stderrors.As(err, &apiErr) {
		return errors.ExternalServiceError(ProviderName,
			fmt.Errorf("openai completion failed: status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
	}
	var reqErr *goopenai.RequestError
	if stderrors.As(err, &reqErr) {
		return errors.ExternalServiceError(ProviderName,
			fmt.Errorf("openai completion failed: status %d: %w", reqErr.HTTPStatusCode, reqErr.Err))
	}
	return errors.ExternalServiceError(ProviderName, err)
}
