package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/docqa-ai/docqa"
)

// mockReasoner routes each prompt to a scripted reply for the stage that
// built it, and records which stages were called.
type mockReasoner struct {
	analysisReply  string
	analysisErr    error
	decomposeReply string
	decomposeErr   error
	synthesisReply string
	synthesisErr   error

	// block makes every call wait for context cancellation and return the
	// context error, to exercise deadline handling.
	block bool

	mu    sync.Mutex
	calls []string
}

func (m *mockReasoner) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	var stage, reply string
	var err error
	switch {
	case strings.Contains(prompt, "query analysis expert"):
		stage, reply, err = "analyze", m.analysisReply, m.analysisErr
	case strings.Contains(prompt, "query decomposition expert"):
		stage, reply, err = "decompose", m.decomposeReply, m.decomposeErr
	default:
		stage, reply, err = "synthesize", m.synthesisReply, m.synthesisErr
	}

	m.mu.Lock()
	m.calls = append(m.calls, stage)
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	return reply, nil
}

func (m *mockReasoner) stageCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// mockEmbedder returns a fixed small vector per text. An error can be
// injected for texts containing failOn.
type mockEmbedder struct {
	failOn string
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("embedding backend unavailable")
	}
	return []float32{float32(len(text) % 7), 1}, nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := m.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// mockStore serves canned evidence, optionally through a custom search
// function.
type mockStore struct {
	items    []docqa.EvidenceItem
	searchFn func(ctx context.Context, emb []float32, opts docqa.SearchOptions) ([]docqa.EvidenceItem, error)

	mu       sync.Mutex
	searches int
}

func (m *mockStore) Search(ctx context.Context, emb []float32, opts docqa.SearchOptions) ([]docqa.EvidenceItem, error) {
	m.mu.Lock()
	m.searches++
	m.mu.Unlock()

	if m.searchFn != nil {
		return m.searchFn(ctx, emb, opts)
	}

	var out []docqa.EvidenceItem
	for _, item := range m.items {
		if opts.DocumentFilter != "" && item.SourceDocument != opts.DocumentFilter {
			continue
		}
		if item.SimilarityScore < opts.MinScore {
			continue
		}
		out = append(out, item)
	}
	if len(out) > opts.TopK {
		out = out[:opts.TopK]
	}
	return out, nil
}

func (m *mockStore) Add(ctx context.Context, items []docqa.EvidenceItem, embeddings [][]float32) error {
	m.items = append(m.items, items...)
	return nil
}

func (m *mockStore) Stats(ctx context.Context) (*docqa.StoreStats, error) {
	return &docqa.StoreStats{TotalItems: len(m.items)}, nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) searchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searches
}

func evidence(content, doc string, page int, score float64) docqa.EvidenceItem {
	return docqa.EvidenceItem{
		Content:         content,
		ContentType:     docqa.ContentTypeText,
		SourceDocument:  doc,
		PageNumber:      page,
		SimilarityScore: score,
	}
}
