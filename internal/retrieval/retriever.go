// Package retrieval fuses lexical and semantic search into a single ranked
// candidate list for the answer pipeline.
package retrieval

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"docqa/internal/models"
)

// rrfK is the reciprocal-rank-fusion constant; larger values flatten the
// contribution difference between top and bottom ranks
const rrfK = 60

// RankedIndex answers a text query with an ordered chunk list, best first
type RankedIndex interface {
	Query(ctx context.Context, text string, k int) ([]models.Chunk, error)
}

// SemanticSearcher additionally exposes raw distances for threshold filtering
type SemanticSearcher interface {
	RankedIndex
	QueryWithDistances(ctx context.Context, text string, k int) ([]models.ScoredChunk, error)
}

// Config holds retrieval tuning parameters
type Config struct {
	TopK              int
	SemanticWeight    float64  // 0-1; lexical gets 1 - SemanticWeight
	DistanceThreshold *float64 // semantic-only path: drop results beyond this distance
}

// Retriever combines a required semantic index with an optional lexical index.
// When the lexical index is absent the retriever transparently serves
// semantic-only results.
type Retriever struct {
	semantic SemanticSearcher
	lexical  RankedIndex
	config   Config
	logger   *log.Logger
}

// New creates a retriever. The semantic index is mandatory; pass a nil
// lexical index to run in semantic-only mode.
func New(semantic SemanticSearcher, lexical RankedIndex, config Config, logger *log.Logger) (*Retriever, error) {
	if semantic == nil {
		return nil, fmt.Errorf("semantic index cannot be nil")
	}
	if config.TopK <= 0 {
		config.TopK = 5
	}
	if config.SemanticWeight < 0 || config.SemanticWeight > 1 {
		config.SemanticWeight = 0.5
	}

	return &Retriever{
		semantic: semantic,
		lexical:  lexical,
		config:   config,
		logger:   logger,
	}, nil
}

// Hybrid reports whether both indexes are available
func (r *Retriever) Hybrid() bool {
	return r.lexical != nil
}

// Retrieve returns up to k chunks relevant to the query.
//
// With both indexes available and useHybrid set, the two rankings are fused
// with weighted reciprocal rank and results carry no score. Otherwise the
// semantic index is queried directly, the distance threshold is applied, and
// the rounded distance is attached as the score.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, useHybrid bool) ([]models.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		r.logger.Printf("Empty query provided to retriever")
		return nil, nil
	}

	if k <= 0 {
		k = r.config.TopK
	}

	var results []models.ScoredChunk
	var err error
	if useHybrid && r.lexical != nil {
		results, err = r.retrieveHybrid(ctx, query, k)
	} else {
		results, err = r.retrieveSemantic(ctx, query, k)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	r.logger.Printf("Retrieved %d chunks for query: %s", len(results), truncate(query, 50))
	return results, nil
}

// RetrieveWithFilter retrieves and then keeps only chunks whose source
// matches the given filename (case-insensitive). An empty filter keeps all.
func (r *Retriever) RetrieveWithFilter(ctx context.Context, query, sourceFilter string, k int) ([]models.ScoredChunk, error) {
	results, err := r.Retrieve(ctx, query, k, true)
	if err != nil {
		return nil, err
	}
	if sourceFilter == "" {
		return results, nil
	}

	filtered := results[:0]
	for _, sc := range results {
		if strings.EqualFold(sc.Chunk.Metadata.Source, sourceFilter) {
			filtered = append(filtered, sc)
		}
	}
	return filtered, nil
}

func (r *Retriever) retrieveHybrid(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	lexical, err := r.lexical.Query(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	semantic, err := r.semantic.Query(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	fused := fuseRankings(lexical, semantic, 1-r.config.SemanticWeight, r.config.SemanticWeight, k)

	// Fused rank has no single comparable scale, so no scores are attached
	results := make([]models.ScoredChunk, len(fused))
	for i, chunk := range fused {
		results[i] = models.ScoredChunk{Chunk: chunk}
	}
	return results, nil
}

func (r *Retriever) retrieveSemantic(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	scored, err := r.semantic.QueryWithDistances(ctx, query, k)
	if err != nil {
		return nil, err
	}

	results := make([]models.ScoredChunk, 0, len(scored))
	for _, sc := range scored {
		if sc.Score != nil {
			if r.config.DistanceThreshold != nil && *sc.Score > *r.config.DistanceThreshold {
				continue
			}
			rounded := math.Round(*sc.Score*10000) / 10000
			sc.Score = &rounded
		}
		results = append(results, sc)
	}
	return results, nil
}

// fuseRankings merges two ranked chunk lists with weighted reciprocal-rank
// fusion: each appearance contributes weight/(rrfK + rank). Chunks ranked by
// both lists therefore always outscore single-list chunks at equal weights.
// Ties break by first appearance (lexical list first), keeping the fusion
// deterministic.
func fuseRankings(lexical, semantic []models.Chunk, lexicalWeight, semanticWeight float64, k int) []models.Chunk {
	type fusedEntry struct {
		chunk models.Chunk
		score float64
		order int // first-seen position, for deterministic tie-breaks
	}

	entries := make(map[string]*fusedEntry)
	seen := 0

	accumulate := func(list []models.Chunk, weight float64) {
		for rank, chunk := range list {
			id := chunk.Metadata.ChunkID
			entry, ok := entries[id]
			if !ok {
				entry = &fusedEntry{chunk: chunk, order: seen}
				entries[id] = entry
				seen++
			}
			entry.score += weight / float64(rrfK+rank+1)
		}
	}

	accumulate(lexical, lexicalWeight)
	accumulate(semantic, semanticWeight)

	ranked := make([]*fusedEntry, 0, len(entries))
	for _, entry := range entries {
		ranked = append(ranked, entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]models.Chunk, len(ranked))
	for i, entry := range ranked {
		out[i] = entry.chunk
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
