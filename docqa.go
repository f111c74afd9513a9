// Package docqa defines the shared data model and collaborator interfaces
// of the agentic document question-answering engine.
//
// The package itself holds no behavior beyond constructors and small
// helpers; the pipeline package drives the question flow, the llm package
// provides reasoning and embedding collaborators, and the store package
// tree provides evidence store backends.
package docqa

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContentType classifies the kind of content an evidence item carries.
type ContentType string

const (
	// ContentTypeText is plain prose extracted from a document.
	ContentTypeText ContentType = "text"
	// ContentTypeTable is tabular content serialized as text.
	ContentTypeTable ContentType = "table"
	// ContentTypeImageCaption is a caption describing an image.
	ContentTypeImageCaption ContentType = "image_caption"
)

// Question is an immutable piece of question text. Sub-questions produced
// by decomposition carry a reference to their parent question.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ParentID string `json:"parent_id,omitempty"`
}

// NewQuestion creates a top-level question.
func NewQuestion(text string) Question {
	return Question{
		ID:   uuid.NewString(),
		Text: text,
	}
}

// NewSubQuestion creates a question derived from a parent question.
func NewSubQuestion(parent Question, text string) Question {
	return Question{
		ID:       uuid.NewString(),
		Text:     text,
		ParentID: parent.ID,
	}
}

// AnalysisResult is the outcome of complexity analysis for a question.
type AnalysisResult struct {
	IsComplex bool   `json:"is_complex"`
	Reasoning string `json:"reasoning"`
}

// EvidenceItem is a single retrieved content fragment with provenance and
// a similarity score. Items are immutable once produced by a store.
type EvidenceItem struct {
	Content         string      `json:"content"`
	ContentType     ContentType `json:"content_type"`
	SourceDocument  string      `json:"source_document"`
	PageNumber      int         `json:"page_number"`
	SimilarityScore float64     `json:"similarity_score"`

	// OriginQuestion is the ID of the question whose retrieval produced
	// this item. Set by the retrieval coordinator, empty when the item
	// comes straight from a store.
	OriginQuestion string `json:"origin_question,omitempty"`
}

// AggregatedContext is the deduplicated, ranked and truncated evidence set
// handed to answer synthesis. It is built fresh per query and never
// persisted.
type AggregatedContext struct {
	Items []EvidenceItem `json:"items"`

	// TotalRetrieved counts the evidence items that entered aggregation,
	// before deduplication and truncation.
	TotalRetrieved int `json:"total_retrieved"`
}

// AnswerMetadata carries observability fields attached to an answer.
type AnswerMetadata struct {
	TotalChunksRetrieved int    `json:"total_chunks_retrieved"`
	AnalysisReasoning    string `json:"analysis_reasoning"`
}

// AnswerResult is the final product of the pipeline for one question.
type AnswerResult struct {
	Question     Question       `json:"question"`
	Answer       string         `json:"answer"`
	IsComplex    bool           `json:"is_complex"`
	SubQuestions []Question     `json:"sub_questions,omitempty"`
	Sources      []EvidenceItem `json:"sources"`
	Metadata     AnswerMetadata `json:"metadata"`

	// Degraded marks an answer that could not be grounded in evidence,
	// either because no evidence was found or because synthesis failed.
	Degraded bool `json:"degraded,omitempty"`
}

// SearchOptions narrows an evidence store search.
type SearchOptions struct {
	// TopK is the maximum number of items to return.
	TopK int
	// MinScore drops items whose similarity falls below it.
	MinScore float64
	// DocumentFilter, when non-empty, restricts results to one source
	// document.
	DocumentFilter string
}

// EvidenceStore is the consumed retrieval interface. Implementations own
// their index format; the engine only sees ranked evidence items.
type EvidenceStore interface {
	// Search returns up to opts.TopK items most similar to the query
	// embedding, ordered by similarity descending.
	Search(ctx context.Context, queryEmbedding []float32, opts SearchOptions) ([]EvidenceItem, error)

	// Add stores evidence items with their embeddings. Used by ingestion,
	// not by the query pipeline.
	Add(ctx context.Context, items []EvidenceItem, embeddings [][]float32) error

	// Stats reports store-level counters for health reporting.
	Stats(ctx context.Context) (*StoreStats, error)

	Close() error
}

// StoreStats describes the contents of an evidence store.
type StoreStats struct {
	TotalItems  int       `json:"total_items"`
	Dimension   int       `json:"dimension"`
	LastUpdated time.Time `json:"last_updated"`
}

// Embedder turns text into fixed-length vectors.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reasoner is the consumed language-model interface used by the analyzer,
// decomposer and synthesizer with distinct prompts.
type Reasoner interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}
