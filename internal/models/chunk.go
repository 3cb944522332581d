package models

// ChunkMetadata identifies where a chunk came from
type ChunkMetadata struct {
	Source  string `json:"source"`             // Original filename
	Page    *int   `json:"page,omitempty"`     // 0-based page number, nil when unknown
	ChunkID string `json:"chunk_id,omitempty"` // Unique within a session's chunk store
}

// Chunk represents an indexed unit of document text
// Chunks are immutable once created and owned by the session that ingested them
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Validate checks if the chunk is valid
func (c *Chunk) Validate() error {
	if c.Content == "" {
		return &ValidationError{Field: "content", Message: "content is required"}
	}
	if c.Metadata.Source == "" {
		return &ValidationError{Field: "source", Message: "source filename is required"}
	}
	if c.Metadata.Page != nil && *c.Metadata.Page < 0 {
		return &ValidationError{Field: "page", Message: "page number cannot be negative"}
	}
	return nil
}

// ScoredChunk is a chunk plus retrieval context.
// Score is present only when a single-index similarity search produced the
// result; fused hybrid results carry no score since fused rank has no single
// comparable scale.
type ScoredChunk struct {
	Chunk Chunk    `json:"chunk"`
	Score *float64 `json:"score,omitempty"`
}

// PageRecord is one page of extracted document text, as returned by a loader
type PageRecord struct {
	Text string `json:"text"`
	Page int    `json:"page"` // 0-based
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
