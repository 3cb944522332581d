// Package index provides the two retrieval indexes: a semantic
// nearest-neighbor index backed by ChromaDB and an in-memory lexical index
// backed by bleve.
package index

import (
	"context"
	"fmt"
	"log"

	"docqa/internal/db"
	"docqa/internal/models"
)

// Embedder converts texts into vector representations
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SemanticIndex stores chunk embeddings in a dedicated ChromaDB collection
// and answers nearest-neighbor queries
type SemanticIndex struct {
	chroma     *db.ChromaClient
	embedder   Embedder
	collection string
	logger     *log.Logger
}

// NewSemanticIndex creates a semantic index over the named collection
func NewSemanticIndex(chroma *db.ChromaClient, embedder Embedder, collection string, logger *log.Logger) *SemanticIndex {
	return &SemanticIndex{
		chroma:     chroma,
		embedder:   embedder,
		collection: collection,
		logger:     logger,
	}
}

// Init ensures the backing collection exists
func (s *SemanticIndex) Init(ctx context.Context) error {
	if _, err := s.chroma.CreateCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	return nil
}

// Add embeds the chunks and appends them to the collection
func (s *SemanticIndex) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	ids := make([]string, len(chunks))
	metadatas := make([]map[string]interface{}, len(chunks))
	for i, c := range chunks {
		ids[i] = c.Metadata.ChunkID
		meta := map[string]interface{}{
			"source": c.Metadata.Source,
		}
		if c.Metadata.Page != nil {
			meta["page"] = *c.Metadata.Page
		}
		metadatas[i] = meta
	}

	if err := s.chroma.AddDocuments(ctx, s.collection, ids, texts, embeddings, metadatas); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	s.logger.Printf("Indexed %d chunks into collection %s", len(chunks), s.collection)
	return nil
}

// Query returns the k nearest chunks for the query text, ranked best first
func (s *SemanticIndex) Query(ctx context.Context, text string, k int) ([]models.Chunk, error) {
	scored, err := s.QueryWithDistances(ctx, text, k)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}

// QueryWithDistances returns the k nearest chunks with their raw distances
// (lower is closer)
func (s *SemanticIndex) QueryWithDistances(ctx context.Context, text string, k int) ([]models.ScoredChunk, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	resp, err := s.chroma.Query(ctx, s.collection, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	results := make([]models.ScoredChunk, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		chunk := models.Chunk{
			Metadata: models.ChunkMetadata{ChunkID: id},
		}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			chunk.Content = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			applyMetadata(&chunk, resp.Metadatas[0][i])
		}

		var score *float64
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			d := resp.Distances[0][i]
			score = &d
		}

		results = append(results, models.ScoredChunk{Chunk: chunk, Score: score})
	}

	return results, nil
}

// Count returns the number of chunks stored in the collection
func (s *SemanticIndex) Count(ctx context.Context) (int, error) {
	return s.chroma.CountDocuments(ctx, s.collection)
}

// Drop deletes the backing collection and all its embeddings
func (s *SemanticIndex) Drop(ctx context.Context) error {
	if err := s.chroma.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", s.collection, err)
	}
	return nil
}

// applyMetadata copies Chroma metadata fields back onto a chunk.
// JSON numbers decode as float64.
func applyMetadata(chunk *models.Chunk, meta map[string]interface{}) {
	if source, ok := meta["source"].(string); ok {
		chunk.Metadata.Source = source
	}
	if page, ok := meta["page"].(float64); ok {
		p := int(page)
		chunk.Metadata.Page = &p
	}
}
