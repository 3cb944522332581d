package qa

import (
	"fmt"
	"strings"

	"docqa/internal/models"
)

const referencesHeader = "\n\n---\n**References:**\n"

// Formatter assembles the final response envelope: answer, deduplicated
// reference list, and source summary
type Formatter struct{}

// NewFormatter creates a formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format builds the response for an answer and the chunks that grounded it.
// Chunks sharing a (source, page) key collapse into one reference entry;
// citation numbers are contiguous from 1 in first-appearance order, matching
// the numbering the answerer handed to the model.
func (f *Formatter) Format(answer string, chunks []models.ScoredChunk) models.AskResponse {
	return models.AskResponse{
		Answer:     answer,
		References: f.buildReferences(chunks),
		ChunksUsed: len(chunks),
		Sources:    f.uniqueSources(chunks),
	}
}

func (f *Formatter) buildReferences(chunks []models.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(referencesHeader)

	seen := make(map[string]bool)
	citation := 1
	for _, sc := range chunks {
		source := sc.Chunk.Metadata.Source
		if source == "" {
			source = "Unknown"
		}
		key := source + "_" + displayPage(sc.Chunk.Metadata.Page)
		if seen[key] {
			continue
		}
		seen[key] = true

		sb.WriteString(fmt.Sprintf("[%d] %s, Page %s\n", citation, source, displayPage(sc.Chunk.Metadata.Page)))
		citation++
	}

	return sb.String()
}

// uniqueSources returns the distinct source filenames across all chunks.
// This is a summary set, not a citation list; order is first-appearance.
func (f *Formatter) uniqueSources(chunks []models.ScoredChunk) []string {
	seen := make(map[string]bool)
	sources := []string{}
	for _, sc := range chunks {
		source := sc.Chunk.Metadata.Source
		if source == "" {
			source = "Unknown"
		}
		if !seen[source] {
			seen[source] = true
			sources = append(sources, source)
		}
	}
	return sources
}
