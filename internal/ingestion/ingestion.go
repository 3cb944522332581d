// Package ingestion turns uploaded documents into chunk sequences ready for
// indexing: load pages, split into bounded chunks, stamp source metadata.
package ingestion

import (
	"fmt"
	"log"
	"path/filepath"

	"docqa/internal/models"
)

// Pipeline runs the load-then-chunk flow for a batch of files
type Pipeline struct {
	loader   Loader
	splitter *Splitter
	logger   *log.Logger
}

// NewPipeline creates an ingestion pipeline
func NewPipeline(loader Loader, splitter *Splitter, logger *log.Logger) *Pipeline {
	return &Pipeline{
		loader:   loader,
		splitter: splitter,
		logger:   logger,
	}
}

// Process loads and chunks the given files. A file that fails to load is
// logged and skipped; the whole batch fails only when no file loads at all.
// Chunk IDs continue from startIndex so repeated batches into one session
// never collide.
func (p *Pipeline) Process(paths []string, startIndex int) ([]models.Chunk, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no file paths provided")
	}

	var chunks []models.Chunk
	loaded := 0
	idx := startIndex

	for _, path := range paths {
		pages, err := p.loader.Load(path)
		if err != nil {
			p.logger.Printf("Skipping %s: %v", path, err)
			continue
		}
		loaded++

		source := filepath.Base(path)
		docChunks := p.splitter.Split(pages, source, idx)
		idx += len(docChunks)
		chunks = append(chunks, docChunks...)
	}

	if loaded == 0 {
		return nil, fmt.Errorf("no documents were successfully loaded")
	}

	p.logger.Printf("Created %d chunks from %d of %d documents", len(chunks), loaded, len(paths))
	return chunks, nil
}
