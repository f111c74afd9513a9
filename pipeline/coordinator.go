package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/log"
)

// Coordinator fans retrieval out over a set of questions. Each question is
// embedded and searched independently; one question's results never
// influence another's. Results are collected in question order so that
// downstream tie-breaking can prefer evidence from earlier questions.
type Coordinator struct {
	embedder docqa.Embedder
	store    docqa.EvidenceStore
	topK     int
	minScore float64
}

// NewCoordinator creates a retrieval coordinator.
func NewCoordinator(embedder docqa.Embedder, store docqa.EvidenceStore, topK int, minScore float64) *Coordinator {
	return &Coordinator{
		embedder: embedder,
		store:    store,
		topK:     topK,
		minScore: minScore,
	}
}

// RetrieveAll retrieves evidence for every question concurrently and merges
// the per-question result lists in question order. A question whose
// retrieval fails contributes an empty result set; the condition is
// returned as ErrRetrievalPartialFailure alongside the surviving evidence.
// When every question fails the whole call fails with
// ErrRetrievalTotalFailure.
func (c *Coordinator) RetrieveAll(ctx context.Context, questions []docqa.Question, documentFilter string) ([]docqa.EvidenceItem, error) {
	if len(questions) == 0 {
		return nil, nil
	}

	perQuestion := make([][]docqa.EvidenceItem, len(questions))
	failures := make([]error, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range questions {
		g.Go(func() error {
			items, err := c.retrieveOne(gctx, q, documentFilter)
			if err != nil {
				// Keep the slot empty and let the other questions finish.
				failures[i] = err
				log.Warn("retrieval failed for question %q: %v", q.Text, err)
				return nil
			}
			perQuestion[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Cancellation trumps per-question failure accounting.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	if failed == len(questions) {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalTotalFailure, failures[0])
	}

	var merged []docqa.EvidenceItem
	for _, items := range perQuestion {
		merged = append(merged, items...)
	}

	log.Info("retrieved %d evidence items across %d questions", len(merged), len(questions))
	if failed > 0 {
		return merged, fmt.Errorf("%w: %d of %d", ErrRetrievalPartialFailure, failed, len(questions))
	}
	return merged, nil
}

// retrieveOne embeds a single question, searches the store and tags every
// result with its origin question.
func (c *Coordinator) retrieveOne(ctx context.Context, q docqa.Question, documentFilter string) ([]docqa.EvidenceItem, error) {
	embedding, err := c.embedder.EmbedText(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	items, err := c.store.Search(ctx, embedding, docqa.SearchOptions{
		TopK:           c.topK,
		MinScore:       c.minScore,
		DocumentFilter: documentFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("evidence search failed: %w", err)
	}

	tagged := make([]docqa.EvidenceItem, len(items))
	for i, item := range items {
		item.OriginQuestion = q.ID
		tagged[i] = item
	}

	log.Debug("retrieved %d items for question %q", len(tagged), q.Text)
	return tagged, nil
}
