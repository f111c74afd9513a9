package pipeline

import "errors"

// Error taxonomy of the query pipeline. Stage-local conditions
// (ErrAnalysisUnavailable, ErrDecompositionDegenerate,
// ErrRetrievalPartialFailure, ErrSynthesisFailure) are absorbed inside the
// pipeline and degrade to simpler behavior; only total retrieval failure
// and timeouts reach the caller.
var (
	// ErrAnalysisUnavailable marks a failed or unparseable complexity
	// analysis. Recovered locally by treating the question as simple.
	ErrAnalysisUnavailable = errors.New("query analysis unavailable")

	// ErrDecompositionDegenerate marks a decomposition that produced fewer
	// than two sub-questions. Recovered locally by falling back to the
	// original question.
	ErrDecompositionDegenerate = errors.New("decomposition produced fewer than two sub-questions")

	// ErrRetrievalPartialFailure marks retrieval failure for some, but not
	// all, sub-questions. Recovered locally; failed questions contribute
	// no evidence.
	ErrRetrievalPartialFailure = errors.New("retrieval failed for some questions")

	// ErrRetrievalTotalFailure is surfaced to the caller when no
	// sub-question could be retrieved.
	ErrRetrievalTotalFailure = errors.New("retrieval failed for all questions")

	// ErrSynthesisFailure marks a failed or empty synthesis call. The
	// pipeline converts it into a degraded answer rather than an error.
	ErrSynthesisFailure = errors.New("answer synthesis failed")

	// ErrTimeout is surfaced to the caller when the end-to-end deadline is
	// exceeded. In-flight retrievals are cancelled.
	ErrTimeout = errors.New("pipeline deadline exceeded")
)
