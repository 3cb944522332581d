package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Validate(t *testing.T) {
	page := 0
	valid := Chunk{
		Content:  "Some text",
		Metadata: ChunkMetadata{Source: "doc.pdf", Page: &page, ChunkID: "doc.pdf_chunk_0"},
	}

	t.Run("valid chunk", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("missing content", func(t *testing.T) {
		c := valid
		c.Content = ""
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "content")
	})

	t.Run("missing source", func(t *testing.T) {
		c := valid
		c.Metadata.Source = ""
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source")
	})

	t.Run("negative page", func(t *testing.T) {
		c := valid
		bad := -1
		c.Metadata.Page = &bad
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "page")
	})

	t.Run("nil page is allowed", func(t *testing.T) {
		c := valid
		c.Metadata.Page = nil
		assert.NoError(t, c.Validate())
	})
}

func TestAskRequest_Validate(t *testing.T) {
	t.Run("missing session id", func(t *testing.T) {
		req := AskRequest{Question: "Q?"}
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session_id")
	})

	t.Run("empty question is accepted", func(t *testing.T) {
		// Empty questions get a fixed answer downstream, not a request error
		req := AskRequest{SessionID: "abc"}
		assert.NoError(t, req.Validate())
	})
}
