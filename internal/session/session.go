// Package session holds per-user state: documents, chunk store, indexes, and
// conversation history. Sessions are fully isolated from one another; the
// registry is the only shared structure.
package session

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"docqa/internal/index"
	"docqa/internal/ingestion"
	"docqa/internal/models"
	"docqa/internal/qa"
	"docqa/internal/retrieval"
)

// NoDocumentsMessage is returned for questions against a session that has no
// ingested documents yet
const NoDocumentsMessage = "Please upload documents first."

// SemanticIndex is the vector-index capability a session needs
type SemanticIndex interface {
	retrieval.SemanticSearcher
	Init(ctx context.Context) error
	Add(ctx context.Context, chunks []models.Chunk) error
	Drop(ctx context.Context) error
}

// AddResult reports the outcome of a document ingestion
type AddResult struct {
	Documents   []string `json:"documents"`
	TotalChunks int      `json:"total_chunks"`
}

// Session is one isolated QA workspace. Ingestion and question answering on
// the same session are mutually exclusive: index mutation and index reads
// never interleave.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	uploadDir string
	documents []string
	chunks    []models.Chunk
	semantic  SemanticIndex
	lexical   *index.LexicalIndex
	chain     *qa.Chain

	pipeline     *ingestion.Pipeline
	answerer     *qa.Answerer
	retrievalCfg retrieval.Config
	logger       *log.Logger
}

// UploadDir returns the directory uploaded files are saved to
func (s *Session) UploadDir() string {
	return s.uploadDir
}

// AddDocuments ingests the given files: load, chunk, embed, and rebuild the
// keyword index over the accumulated chunk store. Repeated calls accumulate.
func (s *Session) AddDocuments(ctx context.Context, paths []string) (*AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newChunks, err := s.pipeline.Process(paths, len(s.chunks))
	if err != nil {
		return nil, err
	}

	// Vector-store failure is fatal to the operation
	if err := s.semantic.Add(ctx, newChunks); err != nil {
		return nil, fmt.Errorf("failed to index documents: %w", err)
	}

	s.chunks = append(s.chunks, newChunks...)
	s.trackSources(newChunks)
	s.rebuildRetrieval()

	s.logger.Printf("Session %s: added %d documents (%d chunks total)", s.ID, len(paths), len(s.chunks))

	return &AddResult{
		Documents:   append([]string(nil), s.documents...),
		TotalChunks: len(s.chunks),
	}, nil
}

// Ask answers a question against the session's documents. Always returns a
// well-formed response envelope.
func (s *Session) Ask(ctx context.Context, question string) models.AskResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chain == nil {
		return models.AskResponse{
			Answer:     NoDocumentsMessage,
			References: "",
			ChunksUsed: 0,
			Sources:    []string{},
		}
	}

	return s.chain.Ask(ctx, question)
}

// History returns the conversation history so far
func (s *Session) History() []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chain == nil {
		return []models.ConversationTurn{}
	}
	return s.chain.History()
}

// ClearChat resets the conversation history, keeping documents and indexes
func (s *Session) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chain != nil {
		s.chain.ClearMemory()
		s.logger.Printf("Session %s: chat history cleared", s.ID)
	}
}

// Documents returns the ordered set of ingested document names
func (s *Session) Documents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.documents...)
}

// Info describes the session for API consumers
func (s *Session) Info() models.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	historyLen := 0
	if s.chain != nil {
		historyLen = len(s.chain.History())
	}

	return models.SessionInfo{
		SessionID:         s.ID,
		CreatedAt:         s.CreatedAt.Format(time.RFC3339),
		Documents:         append([]string(nil), s.documents...),
		HasIndex:          s.chain != nil,
		ChatHistoryLength: historyLen,
	}
}

// trackSources appends newly seen source filenames in insertion order
func (s *Session) trackSources(chunks []models.Chunk) {
	known := make(map[string]bool, len(s.documents))
	for _, d := range s.documents {
		known[d] = true
	}
	for _, c := range chunks {
		if src := c.Metadata.Source; src != "" && !known[src] {
			known[src] = true
			s.documents = append(s.documents, src)
		}
	}
}

// rebuildRetrieval recreates the keyword index over the full chunk store and
// wires a fresh retriever into the chain. Keyword-index failure is non-fatal:
// the session degrades to semantic-only retrieval.
func (s *Session) rebuildRetrieval() {
	if s.lexical != nil {
		s.lexical.Close()
		s.lexical = nil
	}

	var lexical retrieval.RankedIndex
	lex, err := index.NewLexicalIndex(s.chunks)
	if err != nil {
		s.logger.Printf("Session %s: failed to build keyword index, using semantic only: %v", s.ID, err)
	} else {
		s.lexical = lex
		lexical = lex
	}

	retriever, err := retrieval.New(s.semantic, lexical, s.retrievalCfg, s.logger)
	if err != nil {
		// Unreachable while the session holds a semantic index
		s.logger.Printf("Session %s: failed to build retriever: %v", s.ID, err)
		return
	}

	if s.chain == nil {
		s.chain = qa.NewChain(retriever, s.answerer, s.retrievalCfg.TopK, s.logger)
	} else {
		s.chain.ReplaceRetriever(retriever)
	}
}

// cleanup tears down all session state: vector collection, keyword index,
// history, and uploaded files
func (s *Session) cleanup(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.semantic.Drop(ctx); err != nil {
		s.logger.Printf("Session %s: failed to drop vector collection: %v", s.ID, err)
	}
	if s.lexical != nil {
		s.lexical.Close()
		s.lexical = nil
	}
	s.chain = nil
	s.chunks = nil
	s.documents = nil

	if s.uploadDir != "" {
		if err := os.RemoveAll(s.uploadDir); err != nil {
			s.logger.Printf("Session %s: failed to delete upload dir: %v", s.ID, err)
		}
	}

	s.logger.Printf("Session %s: cleanup complete", s.ID)
}
