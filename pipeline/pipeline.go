package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/log"
)

// Options configures the query pipeline. Zero values fall back to the
// defaults of the original system.
type Options struct {
	// TopK is the per-question retrieval depth.
	TopK int
	// MinScore drops retrieved items below this similarity.
	MinScore float64
	// MaxEvidence bounds the aggregated evidence count handed to
	// synthesis, independent of TopK.
	MaxEvidence int
	// MaxContextChars is a secondary character budget for the aggregated
	// context. Zero disables it.
	MaxContextChars int
	// DedupThreshold is the textual-overlap ratio above which two evidence
	// contents count as duplicates.
	DedupThreshold float64
	// Temperature is passed to every reasoning call.
	Temperature float64
	// MaxSubQuestions bounds decomposition fan-out.
	MaxSubQuestions int
	// Timeout is the end-to-end deadline for one question. Zero means no
	// pipeline-imposed deadline.
	Timeout time.Duration
}

// DefaultOptions returns the default pipeline configuration.
func DefaultOptions() Options {
	return Options{
		TopK:            5,
		MinScore:        0.7,
		MaxEvidence:     12,
		MaxContextChars: 8192,
		DedupThreshold:  0.9,
		Temperature:     0.1,
		MaxSubQuestions: 5,
		Timeout:         60 * time.Second,
	}
}

// Pipeline is the query-processing engine. It is stateless between
// invocations: every call to Answer builds its data fresh and shares
// nothing with concurrent calls.
type Pipeline struct {
	analyzer    *Analyzer
	decomposer  *Decomposer
	coordinator *Coordinator
	aggregator  *Aggregator
	synthesizer *Synthesizer
	timeout     time.Duration
}

// New wires a pipeline from its three collaborators.
func New(reasoner docqa.Reasoner, embedder docqa.Embedder, store docqa.EvidenceStore, opts Options) *Pipeline {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.MinScore <= 0 {
		opts.MinScore = def.MinScore
	}
	if opts.MaxEvidence <= 0 {
		opts.MaxEvidence = def.MaxEvidence
	}
	if opts.DedupThreshold <= 0 {
		opts.DedupThreshold = def.DedupThreshold
	}
	if opts.Temperature <= 0 {
		opts.Temperature = def.Temperature
	}

	return &Pipeline{
		analyzer:    NewAnalyzer(reasoner, opts.Temperature),
		decomposer:  NewDecomposer(reasoner, opts.Temperature, opts.MaxSubQuestions),
		coordinator: NewCoordinator(embedder, store, opts.TopK, opts.MinScore),
		aggregator:  NewAggregator(opts.MaxEvidence, opts.MaxContextChars, opts.DedupThreshold),
		synthesizer: NewSynthesizer(reasoner, opts.Temperature),
		timeout:     opts.Timeout,
	}
}

// Answer processes a question end to end and returns either a complete
// answer (possibly marked degraded) or a single typed pipeline error.
func (p *Pipeline) Answer(ctx context.Context, questionText string) (*docqa.AnswerResult, error) {
	return p.AnswerFiltered(ctx, questionText, "")
}

// AnswerFiltered is Answer with an optional source-document restriction
// applied to every retrieval.
func (p *Pipeline) AnswerFiltered(ctx context.Context, questionText, documentFilter string) (*docqa.AnswerResult, error) {
	if questionText == "" {
		return nil, errors.New("question text must not be empty")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	question := docqa.NewQuestion(questionText)
	log.Info("processing question %s: %q", question.ID, questionText)

	analysis := p.analyzer.Analyze(ctx, question)
	if err := deadlineError(ctx); err != nil {
		return nil, err
	}

	questions := []docqa.Question{question}
	var subQuestions []docqa.Question
	if analysis.IsComplex {
		decomposed := p.decomposer.Decompose(ctx, question)
		if err := deadlineError(ctx); err != nil {
			return nil, err
		}
		// A degenerate decomposition hands back the original question and
		// the query proceeds as simple.
		if len(decomposed) > 1 {
			questions = decomposed
			subQuestions = decomposed
		} else {
			analysis.IsComplex = false
		}
	}

	evidence, err := p.coordinator.RetrieveAll(ctx, questions, documentFilter)
	if err != nil && !errors.Is(err, ErrRetrievalPartialFailure) {
		if derr := deadlineError(ctx); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	if errors.Is(err, ErrRetrievalPartialFailure) {
		log.Warn("continuing with partial evidence: %v", err)
	}

	agg := p.aggregator.Aggregate(evidence)

	result := p.synthesizer.Synthesize(ctx, question, agg)
	if err := deadlineError(ctx); err != nil {
		// Synthesis that lost the race against the deadline must not be
		// reported as a degraded answer.
		if result.Degraded {
			return nil, err
		}
	}

	result.IsComplex = analysis.IsComplex
	result.SubQuestions = subQuestions
	result.Metadata.AnalysisReasoning = analysis.Reasoning
	return &result, nil
}

// deadlineError converts an exceeded context deadline into the pipeline's
// timeout error.
func deadlineError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
	return ctx.Err()
}
