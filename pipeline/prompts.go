package pipeline

import (
	"fmt"
	"strings"

	"github.com/docqa-ai/docqa"
)

// Prompt templates for the three reasoning stages. Each stage expects a
// strict JSON reply (analysis, decomposition) or free text (synthesis);
// replies wrapped in markdown code fences are tolerated, see stripCodeFence.

const analyzerPromptFmt = `You are a query analysis expert. Analyze if a user query is simple (single intent) or complex (multiple intents).

A query is COMPLEX if it:
- Asks multiple distinct questions
- Requires information from different topics
- Contains "and", "also", "additionally" connecting different questions

A query is SIMPLE if it:
- Asks one focused question
- Can be answered with a single coherent response

Respond ONLY with valid JSON in this exact format:
{"is_complex": true/false, "reasoning": "brief explanation"}

Query: %s`

const decomposerPromptFmt = `You are a query decomposition expert. Break down complex queries into atomic sub-questions.

Rules for sub-questions:
1. Each sub-question should cover ONE specific intent
2. Each should be answerable independently
3. Together they should cover the full original query
4. Keep them concise and focused
5. Maintain the original query's context

Respond ONLY with valid JSON in this exact format:
{"sub_questions": ["question1", "question2", ...]}

Original query: %s

Decompose this into atomic sub-questions.`

const synthesizerPromptFmt = `You are a helpful assistant that answers questions based ONLY on the provided context.

CRITICAL RULES:
1. Use ONLY information from the provided context
2. If the answer is not in the context, clearly state "The information is not available in the provided documents"
3. Synthesize information from multiple sources when relevant
4. Be concise and accurate
5. Cite sources when possible (e.g., "According to [Source 1]...")
6. Do NOT make up or infer information not present in the context

Context:
%s

User Question: %s

Answer:`

func analyzerPrompt(question string) string {
	return fmt.Sprintf(analyzerPromptFmt, question)
}

func decomposerPrompt(question string) string {
	return fmt.Sprintf(decomposerPromptFmt, question)
}

func synthesizerPrompt(question, context string) string {
	return fmt.Sprintf(synthesizerPromptFmt, context, question)
}

// FormatContext renders evidence items as numbered source blocks for the
// synthesis prompt. The [Source N] labels are what the model is told to
// cite.
func FormatContext(items []docqa.EvidenceItem) string {
	if len(items) == 0 {
		return "No relevant context found."
	}

	parts := make([]string, 0, len(items))
	for i, item := range items {
		parts = append(parts, fmt.Sprintf("[Source %d] Document: %s, Page: %d, Type: %s\n%s",
			i+1, item.SourceDocument, item.PageNumber, item.ContentType, item.Content))
	}

	return strings.Join(parts, "\n\n---\n\n")
}

// stripCodeFence removes a surrounding markdown code fence from an LLM
// reply so the JSON inside can be parsed.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
