package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/log"
)

// Decomposer splits a complex question into atomic, independently
// answerable sub-questions.
type Decomposer struct {
	reasoner        docqa.Reasoner
	temperature     float64
	maxSubQuestions int
}

// NewDecomposer creates a query decomposer. maxSubQuestions bounds the
// retrieval fan-out; zero or negative means the default of 5.
func NewDecomposer(reasoner docqa.Reasoner, temperature float64, maxSubQuestions int) *Decomposer {
	if maxSubQuestions <= 0 {
		maxSubQuestions = 5
	}
	return &Decomposer{
		reasoner:        reasoner,
		temperature:     temperature,
		maxSubQuestions: maxSubQuestions,
	}
}

// Decompose produces 2..N sub-questions covering the intents of the parent
// question, each tagged with a back-reference to it. If the reasoning call
// fails or yields fewer than two usable sub-questions, the original
// question is returned as the single unit of retrieval instead of failing
// the request.
func (d *Decomposer) Decompose(ctx context.Context, question docqa.Question) []docqa.Question {
	reply, err := d.reasoner.Complete(ctx, decomposerPrompt(question.Text), d.temperature)
	if err != nil {
		log.Warn("decomposition call failed, keeping original question: %v", err)
		return []docqa.Question{question}
	}

	var parsed struct {
		SubQuestions []string `json:"sub_questions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &parsed); err != nil {
		log.Warn("failed to parse decomposition reply as JSON, keeping original question: %v", err)
		return []docqa.Question{question}
	}

	texts := make([]string, 0, len(parsed.SubQuestions))
	for _, t := range parsed.SubQuestions {
		if t = strings.TrimSpace(t); t != "" {
			texts = append(texts, t)
		}
	}

	if len(texts) < 2 {
		log.Warn("%v (got %d), degrading to single-question retrieval", ErrDecompositionDegenerate, len(texts))
		return []docqa.Question{question}
	}

	if len(texts) > d.maxSubQuestions {
		texts = texts[:d.maxSubQuestions]
	}

	subs := make([]docqa.Question, len(texts))
	for i, t := range texts {
		subs[i] = docqa.NewSubQuestion(question, t)
		log.Info("  sub-question %d: %s", i+1, t)
	}

	log.Info("decomposed query into %d sub-questions", len(subs))
	return subs
}
