// Package llm provides the reasoning and embedding collaborators of the
// engine, backed by OpenAI-compatible APIs through langchaingo. Any
// endpoint speaking the OpenAI protocol works by setting a base URL.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/docqa-ai/docqa"
)

// ClientConfig configures the OpenAI-compatible clients.
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	MaxTokens      int
}

// Reasoner implements docqa.Reasoner using a langchaingo chat model.
type Reasoner struct {
	model     llms.Model
	maxTokens int
}

var _ docqa.Reasoner = (*Reasoner)(nil)

// NewReasoner creates a reasoning client.
func NewReasoner(cfg ClientConfig) (*Reasoner, error) {
	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return &Reasoner{model: model, maxTokens: cfg.MaxTokens}, nil
}

// NewReasonerWithModel wraps an existing langchaingo model. Useful for
// tests and for sharing one client across components.
func NewReasonerWithModel(model llms.Model, maxTokens int) *Reasoner {
	return &Reasoner{model: model, maxTokens: maxTokens}
}

// Complete sends a single prompt and returns the model's text reply.
func (r *Reasoner) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	callOpts := []llms.CallOption{llms.WithTemperature(temperature)}
	if r.maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(r.maxTokens))
	}

	reply, err := llms.GenerateFromSinglePrompt(ctx, r.model, prompt, callOpts...)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return reply, nil
}
