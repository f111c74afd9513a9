package ingest

import (
	"context"
	"fmt"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/log"
)

// Ingestor chunks document text, embeds the chunks and stores them as
// evidence items.
type Ingestor struct {
	chunker  *Chunker
	embedder docqa.Embedder
	store    docqa.EvidenceStore
}

// NewIngestor creates an ingestor.
func NewIngestor(chunker *Chunker, embedder docqa.Embedder, store docqa.EvidenceStore) *Ingestor {
	return &Ingestor{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
	}
}

// Ingest chunks, embeds and stores one document's text under the given
// document name. It returns the number of chunks stored. Plain text has no
// page structure, so the chunk ordinal stands in for the page number.
func (in *Ingestor) Ingest(ctx context.Context, documentName, text string) (int, error) {
	chunks := in.chunker.Chunk(text)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no content to ingest for document %q", documentName)
	}

	embeddings, err := in.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	items := make([]docqa.EvidenceItem, len(chunks))
	for i, chunk := range chunks {
		items[i] = docqa.EvidenceItem{
			Content:        chunk,
			ContentType:    docqa.ContentTypeText,
			SourceDocument: documentName,
			PageNumber:     i,
		}
	}

	if err := in.store.Add(ctx, items, embeddings); err != nil {
		return 0, fmt.Errorf("failed to store evidence: %w", err)
	}

	log.Info("ingested %q: %d chunks", documentName, len(items))
	return len(items), nil
}
