// Package ingest provides minimal plain-text ingestion: fixed-size
// chunking with overlap, embedding and storage. Format-aware extraction
// (PDF, tables, images) is outside this module; callers hand in text.
package ingest

import "strings"

// Chunker splits text into fixed-size chunks with overlap, breaking on
// word boundaries where possible.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker. Sizes are in runes; non-positive values
// fall back to 512/50.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 50
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into overlapping chunks. Empty input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		// Pull the cut back to the last space so words stay whole.
		if end < len(runes) {
			cut := end
			for cut > start && runes[cut-1] != ' ' {
				cut--
			}
			if cut > start {
				end = cut
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(runes) {
			break
		}

		// Restart overlap runes before the actual cut, never a fixed step
		// past it: a pulled-back cut must not leave runes in no chunk.
		next := end - c.chunkOverlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}
