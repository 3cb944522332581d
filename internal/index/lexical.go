package index

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve"

	"docqa/internal/models"
)

// lexicalDoc is the shape indexed into bleve
type lexicalDoc struct {
	Content string `json:"content"`
}

// LexicalIndex is an in-memory keyword (BM25-style) index over a session's
// chunk store. It is rebuilt from scratch whenever the store grows.
type LexicalIndex struct {
	idx    bleve.Index
	chunks map[string]models.Chunk
}

// NewLexicalIndex builds an in-memory index over the given chunks
func NewLexicalIndex(chunks []models.Chunk) (*LexicalIndex, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	byID := make(map[string]models.Chunk, len(chunks))
	batch := idx.NewBatch()
	for _, chunk := range chunks {
		byID[chunk.Metadata.ChunkID] = chunk
		if err := batch.Index(chunk.Metadata.ChunkID, lexicalDoc{Content: chunk.Content}); err != nil {
			idx.Close()
			return nil, fmt.Errorf("failed to index chunk %s: %w", chunk.Metadata.ChunkID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("failed to commit index batch: %w", err)
	}

	return &LexicalIndex{idx: idx, chunks: byID}, nil
}

// Query returns up to k chunks ranked by keyword relevance. The underlying
// search over-fetches to survive hits whose chunks are no longer tracked.
func (l *LexicalIndex) Query(ctx context.Context, text string, k int) ([]models.Chunk, error) {
	query := bleve.NewMatchQuery(text)
	req := bleve.NewSearchRequestOptions(query, k*3, 0, false)

	res, err := l.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	var out []models.Chunk
	for _, hit := range res.Hits {
		chunk, ok := l.chunks[hit.ID]
		if !ok {
			continue
		}
		out = append(out, chunk)
		if len(out) >= k {
			break
		}
	}

	return out, nil
}

// Size returns the number of indexed chunks
func (l *LexicalIndex) Size() int {
	return len(l.chunks)
}

// Close releases the in-memory index
func (l *LexicalIndex) Close() error {
	return l.idx.Close()
}
