package qa

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"docqa/internal/models"
)

// Fixed orchestrator responses
const (
	InvalidQuestionMessage = "Please provide a valid question."
	NoResultsMessage       = "I couldn't find relevant information in the uploaded documents."
)

// Retriever supplies ranked chunks for a question
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, useHybrid bool) ([]models.ScoredChunk, error)
}

// Chain orchestrates one session's question flow:
// retrieve → generate → record history → format.
//
// Questions against one chain are serialized; generation reads the history
// and the subsequent append must be ordered after that read.
type Chain struct {
	mu        sync.Mutex
	retriever Retriever
	answerer  *Answerer
	formatter *Formatter
	history   []models.ConversationTurn
	topK      int
	logger    *log.Logger
}

// NewChain creates an orchestrator for one session
func NewChain(retriever Retriever, answerer *Answerer, topK int, logger *log.Logger) *Chain {
	if topK <= 0 {
		topK = 5
	}
	return &Chain{
		retriever: retriever,
		answerer:  answerer,
		formatter: NewFormatter(),
		topK:      topK,
		logger:    logger,
	}
}

// ReplaceRetriever swaps in a new retriever after the session's indexes were
// rebuilt. History is untouched.
func (c *Chain) ReplaceRetriever(retriever Retriever) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retriever = retriever
}

// Ask processes a question end to end. It always returns a well-formed
// response envelope; failures in retrieval or generation are converted into
// an explanatory answer with empty references.
func (c *Chain) Ask(ctx context.Context, question string) models.AskResponse {
	if strings.TrimSpace(question) == "" {
		return emptyResponse(InvalidQuestionMessage)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Printf("Processing question: %s", truncate(question, 50))

	chunks, err := c.retriever.Retrieve(ctx, question, c.topK, true)
	if err != nil {
		c.logger.Printf("Error processing question: %v", err)
		return emptyResponse(fmt.Sprintf("An error occurred while processing your question: %v", err))
	}

	if len(chunks) == 0 {
		return emptyResponse(NoResultsMessage)
	}

	// Generation sees the history as it was before this question
	answer, err := c.answerer.Generate(ctx, question, chunks, c.history)
	if err != nil {
		c.logger.Printf("Error processing question: %v", err)
		return emptyResponse(fmt.Sprintf("An error occurred while processing your question: %v", err))
	}

	c.history = append(c.history,
		models.ConversationTurn{Role: models.RoleUser, Content: question},
		models.ConversationTurn{Role: models.RoleAssistant, Content: answer},
	)

	c.logger.Printf("Successfully processed question with %d chunks", len(chunks))
	return c.formatter.Format(answer, chunks)
}

// History returns a copy of the conversation so far
func (c *Chain) History() []models.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ConversationTurn, len(c.history))
	copy(out, c.history)
	return out
}

// ClearMemory resets the conversation history. Indexes and chunks are
// unaffected.
func (c *Chain) ClearMemory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.logger.Printf("Chat history cleared")
}

func emptyResponse(answer string) models.AskResponse {
	return models.AskResponse{
		Answer:     answer,
		References: "",
		ChunksUsed: 0,
		Sources:    []string{},
	}
}
