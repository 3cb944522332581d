// Package qa contains the answer pipeline: citation-aware generation,
// reference formatting, and the per-session orchestrator that ties them to
// retrieval and chat history.
package qa

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"docqa/internal/models"
)

// NoContextMessage is returned instead of calling the model when retrieval
// produced no chunks, so the model never answers ungrounded
const NoContextMessage = "No context available to answer the question."

const noHistoryPlaceholder = "No previous conversation."

const answerPromptTemplate = `
You are a helpful assistant answering questions based on document content.

Previous conversation:
%s

Relevant context from documents:
%s

INSTRUCTIONS:
- Answer based ONLY on the provided context
- Use inline citations like [1], [2] referring to chunk numbers above
- Be specific and detailed in your answers
- If the information is not in the context, say "I cannot find this information in the provided documents"

User question: %s
`

// LanguageModel produces prose from a prompt
type LanguageModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Answerer generates answers with inline numeric citations. The order of the
// chunks passed to Generate IS the citation numbering contract: chunk i
// (1-based) is cited as [i].
type Answerer struct {
	llm    LanguageModel
	logger *log.Logger
}

// NewAnswerer creates an answerer backed by the given model
func NewAnswerer(llm LanguageModel, logger *log.Logger) *Answerer {
	return &Answerer{llm: llm, logger: logger}
}

// Generate produces an answer grounded in the given chunks. The model output
// is passed through unmodified; citation numbers in it are not validated.
func (a *Answerer) Generate(ctx context.Context, question string, chunks []models.ScoredChunk, history []models.ConversationTurn) (string, error) {
	if len(chunks) == 0 {
		return NoContextMessage, nil
	}

	prompt := fmt.Sprintf(answerPromptTemplate,
		formatHistory(history),
		formatChunks(chunks),
		question,
	)

	answer, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	a.logger.Printf("Generated answer for question: %s", truncate(question, 50))
	return answer, nil
}

// formatChunks renders the numbered context block. Stored pages are 0-based;
// displayed pages are 1-based, with "N/A" when the page is unknown.
func formatChunks(chunks []models.ScoredChunk) string {
	blocks := make([]string, len(chunks))
	for i, sc := range chunks {
		source := sc.Chunk.Metadata.Source
		if source == "" {
			source = "Unknown"
		}
		blocks[i] = fmt.Sprintf("[%d] (Source: %s, Page %s):\n%s",
			i+1, source, displayPage(sc.Chunk.Metadata.Page), sc.Chunk.Content)
	}
	return strings.Join(blocks, "\n\n")
}

// formatHistory flattens the conversation into a role-prefixed transcript
func formatHistory(history []models.ConversationTurn) string {
	if len(history) == 0 {
		return noHistoryPlaceholder
	}

	lines := make([]string, len(history))
	for i, turn := range history {
		lines[i] = turn.Role + ": " + turn.Content
	}
	return strings.Join(lines, "\n")
}

// displayPage converts a stored 0-based page to its 1-based display form
func displayPage(page *int) string {
	if page == nil {
		return "N/A"
	}
	return strconv.Itoa(*page + 1)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
