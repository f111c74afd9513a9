package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa-ai/docqa"
)

func TestAggregatorDeduplicates(t *testing.T) {
	agg := NewAggregator(12, 0, 0.9)

	t.Run("Identical Provenance And Content", func(t *testing.T) {
		dup := evidence("Revenue grew 12% year over year.", "report.pdf", 3, 0.92)
		dup2 := dup
		dup2.SimilarityScore = 0.88
		other := evidence("Operating costs fell slightly.", "report.pdf", 4, 0.80)

		out := agg.Aggregate([]docqa.EvidenceItem{dup, dup2, other})
		require.Len(t, out.Items, 2)
		assert.Equal(t, 3, out.TotalRetrieved)
		assert.Equal(t, 0.92, out.Items[0].SimilarityScore)
	})

	t.Run("Higher Score Wins", func(t *testing.T) {
		low := evidence("Revenue grew 12% year over year.", "report.pdf", 3, 0.75)
		high := evidence("revenue grew 12%  year over year.", "report.pdf", 3, 0.93)

		out := agg.Aggregate([]docqa.EvidenceItem{low, high})
		require.Len(t, out.Items, 1)
		assert.Equal(t, 0.93, out.Items[0].SimilarityScore)
	})

	t.Run("Equal Scores Keep Earliest Origin", func(t *testing.T) {
		first := evidence("Revenue grew 12% year over year.", "report.pdf", 3, 0.9)
		first.OriginQuestion = "q-early"
		second := first
		second.OriginQuestion = "q-late"

		out := agg.Aggregate([]docqa.EvidenceItem{first, second})
		require.Len(t, out.Items, 1)
		assert.Equal(t, "q-early", out.Items[0].OriginQuestion)
	})

	t.Run("Near-Duplicate Text On Same Page", func(t *testing.T) {
		a := evidence("the board approved the dividend in march of the fiscal year under strong conditions", "report.pdf", 9, 0.81)
		b := evidence("the board approved the dividend in march of the fiscal year under strong conditions overall", "report.pdf", 9, 0.84)

		out := agg.Aggregate([]docqa.EvidenceItem{a, b})
		require.Len(t, out.Items, 1)
		assert.Equal(t, 0.84, out.Items[0].SimilarityScore)
	})

	t.Run("Same Content Different Pages Both Kept", func(t *testing.T) {
		a := evidence("Forward-looking statements disclaimer.", "report.pdf", 1, 0.72)
		b := evidence("Forward-looking statements disclaimer.", "report.pdf", 99, 0.71)

		out := agg.Aggregate([]docqa.EvidenceItem{a, b})
		assert.Len(t, out.Items, 2)
	})

	t.Run("Different Content Types Both Kept", func(t *testing.T) {
		a := evidence("Q3 results summary.", "report.pdf", 5, 0.85)
		b := evidence("Q3 results summary.", "report.pdf", 5, 0.83)
		b.ContentType = docqa.ContentTypeTable

		out := agg.Aggregate([]docqa.EvidenceItem{a, b})
		assert.Len(t, out.Items, 2)
	})
}

func TestAggregatorRanking(t *testing.T) {
	agg := NewAggregator(12, 0, 0.9)

	items := []docqa.EvidenceItem{
		evidence("third", "b.pdf", 2, 0.70),
		evidence("first", "a.pdf", 1, 0.95),
		evidence("second", "z.pdf", 8, 0.80),
	}

	out := agg.Aggregate(items)
	require.Len(t, out.Items, 3)
	assert.Equal(t, "first", out.Items[0].Content)
	assert.Equal(t, "second", out.Items[1].Content)
	assert.Equal(t, "third", out.Items[2].Content)

	t.Run("Score Ties Break By Document Then Page", func(t *testing.T) {
		tied := []docqa.EvidenceItem{
			evidence("from z", "z.pdf", 1, 0.8),
			evidence("from a late page", "a.pdf", 9, 0.8),
			evidence("from a early page", "a.pdf", 2, 0.8),
		}

		out := agg.Aggregate(tied)
		require.Len(t, out.Items, 3)
		assert.Equal(t, "from a early page", out.Items[0].Content)
		assert.Equal(t, "from a late page", out.Items[1].Content)
		assert.Equal(t, "from z", out.Items[2].Content)
	})
}

func TestAggregatorTruncation(t *testing.T) {
	t.Run("Item Bound", func(t *testing.T) {
		agg := NewAggregator(2, 0, 0.9)
		items := []docqa.EvidenceItem{
			evidence("low", "a.pdf", 1, 0.71),
			evidence("top", "a.pdf", 2, 0.99),
			evidence("mid", "a.pdf", 3, 0.85),
		}

		out := agg.Aggregate(items)
		require.Len(t, out.Items, 2)
		assert.Equal(t, "top", out.Items[0].Content)
		assert.Equal(t, "mid", out.Items[1].Content)
		assert.Equal(t, 3, out.TotalRetrieved)
	})

	t.Run("Character Budget Never Drops The Best Item", func(t *testing.T) {
		agg := NewAggregator(12, 10, 0.9)
		items := []docqa.EvidenceItem{
			evidence("this content is far larger than the whole budget", "a.pdf", 1, 0.95),
			evidence("small", "a.pdf", 2, 0.80),
		}

		out := agg.Aggregate(items)
		require.Len(t, out.Items, 1)
		assert.Equal(t, 0.95, out.Items[0].SimilarityScore)
	})
}

func TestAggregatorPurity(t *testing.T) {
	agg := NewAggregator(12, 0, 0.9)

	input := []docqa.EvidenceItem{
		evidence("beta", "b.pdf", 1, 0.8),
		evidence("alpha", "a.pdf", 1, 0.9),
		evidence("beta", "b.pdf", 1, 0.8),
	}
	snapshot := append([]docqa.EvidenceItem(nil), input...)

	first := agg.Aggregate(input)
	second := agg.Aggregate(input)

	assert.Equal(t, first, second, "same input must yield the same output")
	assert.Equal(t, snapshot, input, "input slice must not be mutated")

	t.Run("Idempotent Over Own Output", func(t *testing.T) {
		again := agg.Aggregate(first.Items)
		assert.Equal(t, first.Items, again.Items)
	})

	t.Run("Empty Input", func(t *testing.T) {
		out := agg.Aggregate(nil)
		assert.Empty(t, out.Items)
		assert.Zero(t, out.TotalRetrieved)
	})
}
