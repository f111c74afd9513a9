package pipeline

import (
	"context"
	"strings"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/log"
)

// NoGroundedAnswer is the answer text of a degraded result: the pipeline
// could not produce an answer traceable to retrieved evidence.
const NoGroundedAnswer = "The information is not available in the provided documents."

// Synthesizer produces the final grounded answer from the original
// question and the aggregated evidence.
type Synthesizer struct {
	reasoner    docqa.Reasoner
	temperature float64
}

// NewSynthesizer creates an answer synthesizer.
func NewSynthesizer(reasoner docqa.Reasoner, temperature float64) *Synthesizer {
	return &Synthesizer{
		reasoner:    reasoner,
		temperature: temperature,
	}
}

// Synthesize asks the reasoning collaborator to answer strictly from the
// supplied evidence. The full aggregated set is reported as sources, since
// the collaborator cannot reliably indicate which items it used. A failed
// or empty reasoning call yields a degraded result carrying the aggregated
// sources unchanged; it is never surfaced as an error.
func (s *Synthesizer) Synthesize(ctx context.Context, question docqa.Question, agg docqa.AggregatedContext) docqa.AnswerResult {
	result := docqa.AnswerResult{
		Question: question,
		Sources:  agg.Items,
		Metadata: docqa.AnswerMetadata{
			TotalChunksRetrieved: agg.TotalRetrieved,
		},
	}

	if len(agg.Items) == 0 {
		log.Warn("no evidence available for question %q, returning degraded answer", question.Text)
		result.Answer = NoGroundedAnswer
		result.Degraded = true
		return result
	}

	prompt := synthesizerPrompt(question.Text, FormatContext(agg.Items))
	reply, err := s.reasoner.Complete(ctx, prompt, s.temperature)
	if err != nil {
		log.Error("%v: %v", ErrSynthesisFailure, err)
		result.Answer = NoGroundedAnswer
		result.Degraded = true
		return result
	}

	answer := strings.TrimSpace(reply)
	if answer == "" {
		log.Error("%v: empty reply", ErrSynthesisFailure)
		result.Answer = NoGroundedAnswer
		result.Degraded = true
		return result
	}

	log.Info("generated answer for question %q (%d sources)", question.Text, len(agg.Items))
	result.Answer = answer
	return result
}
