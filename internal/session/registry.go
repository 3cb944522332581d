package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/internal/ingestion"
	"docqa/internal/qa"
	"docqa/internal/retrieval"
)

// ErrNotFound is returned when a session ID does not exist
var ErrNotFound = errors.New("session not found")

// Deps holds the collaborators sessions are built from
type Deps struct {
	// NewSemanticIndex builds the vector index for a new session, typically
	// one ChromaDB collection per session
	NewSemanticIndex func(sessionID string) SemanticIndex

	Loader    ingestion.Loader
	Splitter  *ingestion.Splitter
	LLM       qa.LanguageModel
	Retrieval retrieval.Config
	UploadDir string
	Logger    *log.Logger
}

// Registry owns all live sessions and supports safe concurrent
// create/get/delete. It is an injected object with its own lifecycle, not
// ambient shared state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Deps
	logger   *log.Logger
}

// NewRegistry creates an empty session registry
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		deps:     deps,
		logger:   deps.Logger,
	}
}

// Create creates a new empty session with its own upload directory and
// vector collection
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()

	uploadDir := filepath.Join(r.deps.UploadDir, id)
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	semantic := r.deps.NewSemanticIndex(id)
	if err := semantic.Init(ctx); err != nil {
		os.RemoveAll(uploadDir)
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	sess := &Session{
		ID:           id,
		CreatedAt:    time.Now(),
		uploadDir:    uploadDir,
		semantic:     semantic,
		pipeline:     ingestion.NewPipeline(r.deps.Loader, r.deps.Splitter, r.logger),
		answerer:     qa.NewAnswerer(r.deps.LLM, r.logger),
		retrievalCfg: r.deps.Retrieval,
		logger:       r.logger,
	}

	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()

	r.logger.Printf("Session created: %s", id)
	return sess, nil
}

// Get returns the session with the given ID, or ErrNotFound
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Delete removes a session and irreversibly discards all its state
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	sess.cleanup(ctx)
	r.logger.Printf("Session deleted: %s", id)
	return nil
}

// List returns the IDs of all live sessions
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CleanupAll deletes every session, for shutdown
func (r *Registry) CleanupAll(ctx context.Context) {
	for _, id := range r.List() {
		if err := r.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			r.logger.Printf("Failed to delete session %s: %v", id, err)
		}
	}
	r.logger.Printf("All sessions cleaned up")
}
