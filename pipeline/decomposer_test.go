package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa-ai/docqa"
)

func TestDecomposer(t *testing.T) {
	ctx := context.Background()
	question := docqa.NewQuestion("What are the revenue growth and the main risks mentioned?")

	t.Run("Two Sub-Questions", func(t *testing.T) {
		reasoner := &mockReasoner{
			decomposeReply: `{"sub_questions": ["What is the revenue growth mentioned?", "What are the main risks mentioned?"]}`,
		}
		subs := NewDecomposer(reasoner, 0.1, 5).Decompose(ctx, question)

		require.Len(t, subs, 2)
		assert.Equal(t, "What is the revenue growth mentioned?", subs[0].Text)
		assert.Equal(t, "What are the main risks mentioned?", subs[1].Text)
		for _, sq := range subs {
			assert.Equal(t, question.ID, sq.ParentID)
			assert.NotEqual(t, question.ID, sq.ID)
		}
	})

	t.Run("Single Sub-Question Degrades", func(t *testing.T) {
		reasoner := &mockReasoner{
			decomposeReply: `{"sub_questions": ["just one"]}`,
		}
		subs := NewDecomposer(reasoner, 0.1, 5).Decompose(ctx, question)

		require.Len(t, subs, 1)
		assert.Equal(t, question, subs[0])
	})

	t.Run("Empty Sub-Questions Degrades", func(t *testing.T) {
		reasoner := &mockReasoner{decomposeReply: `{"sub_questions": []}`}
		subs := NewDecomposer(reasoner, 0.1, 5).Decompose(ctx, question)

		require.Len(t, subs, 1)
		assert.Equal(t, question, subs[0])
	})

	t.Run("Blank Entries Are Dropped", func(t *testing.T) {
		reasoner := &mockReasoner{
			decomposeReply: `{"sub_questions": ["  ", "real question", ""]}`,
		}
		subs := NewDecomposer(reasoner, 0.1, 5).Decompose(ctx, question)

		// Only one usable entry remains, so decomposition degrades.
		require.Len(t, subs, 1)
		assert.Equal(t, question, subs[0])
	})

	t.Run("Reasoner Failure Degrades", func(t *testing.T) {
		reasoner := &mockReasoner{decomposeErr: errors.New("backend down")}
		subs := NewDecomposer(reasoner, 0.1, 5).Decompose(ctx, question)

		require.Len(t, subs, 1)
		assert.Equal(t, question, subs[0])
	})

	t.Run("Unparseable Reply Degrades", func(t *testing.T) {
		reasoner := &mockReasoner{decomposeReply: "1. first\n2. second"}
		subs := NewDecomposer(reasoner, 0.1, 5).Decompose(ctx, question)

		require.Len(t, subs, 1)
		assert.Equal(t, question, subs[0])
	})

	t.Run("Fan-Out Is Capped", func(t *testing.T) {
		reasoner := &mockReasoner{
			decomposeReply: `{"sub_questions": ["a?", "b?", "c?", "d?"]}`,
		}
		subs := NewDecomposer(reasoner, 0.1, 3).Decompose(ctx, question)

		assert.Len(t, subs, 3)
	})
}
