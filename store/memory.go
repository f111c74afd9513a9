// Package store provides evidence store backends. The in-memory store in
// this package serves tests and single-process deployments; the redis and
// postgres subpackages back the same interface with external storage.
package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/docqa-ai/docqa"
)

// Memory is a brute-force cosine-similarity evidence store held in
// process memory.
type Memory struct {
	mu         sync.RWMutex
	items      []docqa.EvidenceItem
	embeddings [][]float32
	updated    time.Time
}

var _ docqa.EvidenceStore = (*Memory)(nil)

// NewMemory creates an empty in-memory evidence store.
func NewMemory() *Memory {
	return &Memory{}
}

// Add stores items with their embeddings.
func (s *Memory) Add(ctx context.Context, items []docqa.EvidenceItem, embeddings [][]float32) error {
	if len(items) != len(embeddings) {
		return fmt.Errorf("items and embeddings must have same length (%d != %d)", len(items), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
	s.embeddings = append(s.embeddings, embeddings...)
	s.updated = time.Now()
	return nil
}

// Search scores every stored item against the query embedding and returns
// the top matches above the minimum score, ordered by similarity
// descending.
func (s *Memory) Search(ctx context.Context, queryEmbedding []float32, opts docqa.SearchOptions) ([]docqa.EvidenceItem, error) {
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", opts.TopK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]docqa.EvidenceItem, 0, len(s.items))
	for i, item := range s.items {
		if opts.DocumentFilter != "" && item.SourceDocument != opts.DocumentFilter {
			continue
		}
		score := CosineSimilarity(queryEmbedding, s.embeddings[i])
		if score < opts.MinScore {
			continue
		}
		item.SimilarityScore = score
		scored = append(scored, item)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})

	if len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}
	return scored, nil
}

// Stats reports the store contents.
func (s *Memory) Stats(ctx context.Context) (*docqa.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &docqa.StoreStats{
		TotalItems:  len(s.items),
		LastUpdated: s.updated,
	}
	if len(s.embeddings) > 0 {
		stats.Dimension = len(s.embeddings[0])
	}
	return stats, nil
}

// Close clears the store.
func (s *Memory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.embeddings = nil
	return nil
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched or zero-norm vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
