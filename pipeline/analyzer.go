// Package pipeline implements the agentic query-processing engine: a
// question is analyzed for complexity, decomposed when needed, retrieved
// against an evidence store per sub-question, aggregated into a single
// ranked context and synthesized into a grounded answer with citations.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/log"
)

// Analyzer classifies a question as simple or complex using a reasoning
// collaborator.
type Analyzer struct {
	reasoner    docqa.Reasoner
	temperature float64
}

// NewAnalyzer creates a query analyzer.
func NewAnalyzer(reasoner docqa.Reasoner, temperature float64) *Analyzer {
	return &Analyzer{
		reasoner:    reasoner,
		temperature: temperature,
	}
}

// Analyze determines whether the question expresses multiple distinct
// intents. A failed or unparseable reasoning call is not an error: the
// analyzer fails open to simple processing and records the failure in the
// reasoning field.
func (a *Analyzer) Analyze(ctx context.Context, question docqa.Question) docqa.AnalysisResult {
	reply, err := a.reasoner.Complete(ctx, analyzerPrompt(question.Text), a.temperature)
	if err != nil {
		log.Warn("query analysis unavailable, defaulting to simple: %v", err)
		return docqa.AnalysisResult{
			IsComplex: false,
			Reasoning: fmt.Sprintf("%v: %v", ErrAnalysisUnavailable, err),
		}
	}

	var parsed struct {
		IsComplex bool   `json:"is_complex"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &parsed); err != nil {
		log.Warn("failed to parse analysis reply as JSON: %v", err)
		return docqa.AnalysisResult{
			IsComplex: false,
			Reasoning: fmt.Sprintf("%v: unparseable reply", ErrAnalysisUnavailable),
		}
	}

	log.Info("query analysis - complex: %v, reason: %s", parsed.IsComplex, parsed.Reasoning)
	return docqa.AnalysisResult{
		IsComplex: parsed.IsComplex,
		Reasoning: parsed.Reasoning,
	}
}
