package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/docqa-ai/docqa"
)

// Embedder implements docqa.Embedder on top of a langchaingo embedder.
type Embedder struct {
	embedder embeddings.Embedder
}

var _ docqa.Embedder = (*Embedder)(nil)

// NewEmbedder creates an embedding client against an OpenAI-compatible
// endpoint.
func NewEmbedder(cfg ClientConfig) (*Embedder, error) {
	opts := []openai.Option{}
	if cfg.EmbeddingModel != "" {
		opts = append(opts, openai.WithEmbeddingModel(cfg.EmbeddingModel))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &Embedder{embedder: embedder}, nil
}

// NewEmbedderWith wraps an existing langchaingo embedder.
func NewEmbedderWith(embedder embeddings.Embedder) *Embedder {
	return &Embedder{embedder: embedder}
}

// EmbedText embeds a single text as a query vector.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	return vec, nil
}

// EmbedTexts embeds a batch of texts as document vectors.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}
	return vecs, nil
}
