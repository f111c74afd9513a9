package pipeline

import (
	"sort"
	"strings"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/log"
)

// Aggregator merges evidence retrieved for multiple questions into one
// deduplicated, ranked and truncated context. Aggregation is a pure
// function of its input: no state is carried between calls and the input
// slice is never mutated.
type Aggregator struct {
	maxItems       int
	maxChars       int
	dedupThreshold float64
}

// NewAggregator creates a context aggregator. maxItems bounds the final
// evidence count, maxChars is a secondary character budget (0 disables it)
// and dedupThreshold is the textual-overlap ratio above which two contents
// count as duplicates.
func NewAggregator(maxItems, maxChars int, dedupThreshold float64) *Aggregator {
	if maxItems <= 0 {
		maxItems = 12
	}
	if dedupThreshold <= 0 || dedupThreshold > 1 {
		dedupThreshold = 0.9
	}
	return &Aggregator{
		maxItems:       maxItems,
		maxChars:       maxChars,
		dedupThreshold: dedupThreshold,
	}
}

type dedupKey struct {
	document    string
	page        int
	contentType docqa.ContentType
}

// Aggregate deduplicates items sharing provenance and near-equal content,
// keeping the highest-scoring member of each duplicate group (ties go to
// the item retrieved for the earliest question, which precedes its
// duplicates in the input). The survivors are sorted by similarity
// descending, ties broken by document then page for determinism, and
// truncated to the configured bounds. Truncation never drops the
// highest-scoring item.
func (a *Aggregator) Aggregate(items []docqa.EvidenceItem) docqa.AggregatedContext {
	if len(items) == 0 {
		return docqa.AggregatedContext{}
	}

	groups := make(map[dedupKey][]docqa.EvidenceItem)
	order := make([]dedupKey, 0, len(items))

	for _, item := range items {
		key := dedupKey{
			document:    item.SourceDocument,
			page:        item.PageNumber,
			contentType: item.ContentType,
		}
		bucket, seen := groups[key]
		if !seen {
			order = append(order, key)
		}

		replaced := false
		for i, kept := range bucket {
			if !a.sameContent(kept.Content, item.Content) {
				continue
			}
			// Duplicate group found. A strictly higher score replaces the
			// kept item; equal scores keep the earlier one.
			if item.SimilarityScore > kept.SimilarityScore {
				bucket[i] = item
			}
			replaced = true
			break
		}
		if !replaced {
			bucket = append(bucket, item)
		}
		groups[key] = bucket
	}

	deduped := make([]docqa.EvidenceItem, 0, len(items))
	for _, key := range order {
		deduped = append(deduped, groups[key]...)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		x, y := deduped[i], deduped[j]
		if x.SimilarityScore != y.SimilarityScore {
			return x.SimilarityScore > y.SimilarityScore
		}
		if x.SourceDocument != y.SourceDocument {
			return x.SourceDocument < y.SourceDocument
		}
		return x.PageNumber < y.PageNumber
	})

	truncated := a.truncate(deduped)

	log.Info("aggregated %d unique evidence items from %d retrieved", len(truncated), len(items))
	return docqa.AggregatedContext{
		Items:          truncated,
		TotalRetrieved: len(items),
	}
}

// truncate applies the item-count bound and the optional character budget.
// The first (highest-scoring) item always survives.
func (a *Aggregator) truncate(items []docqa.EvidenceItem) []docqa.EvidenceItem {
	if len(items) > a.maxItems {
		items = items[:a.maxItems]
	}
	if a.maxChars <= 0 {
		return items
	}

	kept := items[:0:0]
	chars := 0
	for i, item := range items {
		chars += len(item.Content)
		if chars > a.maxChars && i > 0 {
			break
		}
		kept = append(kept, item)
	}
	return kept
}

// sameContent is the single place that decides duplicate identity of
// content strings, so the policy can be tuned without touching ranking.
// Contents are duplicates when equal after normalization, or when their
// token overlap reaches the configured threshold.
func (a *Aggregator) sameContent(x, y string) bool {
	nx, ny := normalizeContent(x), normalizeContent(y)
	if nx == ny {
		return true
	}
	return tokenOverlap(nx, ny) >= a.dedupThreshold
}

func normalizeContent(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// tokenOverlap computes the Jaccard overlap of the token sets of two
// normalized strings.
func tokenOverlap(x, y string) float64 {
	xs, ys := strings.Fields(x), strings.Fields(y)
	if len(xs) == 0 || len(ys) == 0 {
		return 0
	}

	set := make(map[string]bool, len(xs))
	for _, tok := range xs {
		set[tok] = true
	}

	shared := 0
	union := len(set)
	seen := make(map[string]bool, len(ys))
	for _, tok := range ys {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if set[tok] {
			shared++
		} else {
			union++
		}
	}

	return float64(shared) / float64(union)
}
