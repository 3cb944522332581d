package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/models"
)

func lexChunk(id, content string) models.Chunk {
	return models.Chunk{
		Content: content,
		Metadata: models.ChunkMetadata{
			Source:  "test.pdf",
			ChunkID: id,
		},
	}
}

func TestNewLexicalIndex(t *testing.T) {
	t.Run("empty chunk list is rejected", func(t *testing.T) {
		_, err := NewLexicalIndex(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no chunks to index")
	})

	t.Run("indexes all chunks", func(t *testing.T) {
		idx, err := NewLexicalIndex([]models.Chunk{
			lexChunk("a", "alpha"),
			lexChunk("b", "beta"),
		})
		require.NoError(t, err)
		defer idx.Close()

		assert.Equal(t, 2, idx.Size())
	})
}

func TestLexicalIndex_Query(t *testing.T) {
	ctx := context.Background()

	chunks := []models.Chunk{
		lexChunk("c0", "The quarterly revenue grew by twelve percent."),
		lexChunk("c1", "Employee onboarding takes two weeks on average."),
		lexChunk("c2", "Revenue projections for next quarter look strong."),
		lexChunk("c3", "The cafeteria menu changes every Monday."),
	}

	idx, err := NewLexicalIndex(chunks)
	require.NoError(t, err)
	defer idx.Close()

	t.Run("matches keyword-relevant chunks", func(t *testing.T) {
		results, err := idx.Query(ctx, "revenue", 10)
		require.NoError(t, err)

		require.Len(t, results, 2)
		ids := []string{results[0].Metadata.ChunkID, results[1].Metadata.ChunkID}
		assert.Contains(t, ids, "c0")
		assert.Contains(t, ids, "c2")
	})

	t.Run("respects k", func(t *testing.T) {
		results, err := idx.Query(ctx, "revenue quarter", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("unrelated query returns nothing", func(t *testing.T) {
		results, err := idx.Query(ctx, "zebra spacecraft", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("results carry full chunk metadata", func(t *testing.T) {
		results, err := idx.Query(ctx, "cafeteria", 5)
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, "c3", results[0].Metadata.ChunkID)
		assert.Equal(t, "test.pdf", results[0].Metadata.Source)
		assert.Equal(t, "The cafeteria menu changes every Monday.", results[0].Content)
	})
}

func TestLexicalIndex_LargerCorpus(t *testing.T) {
	ctx := context.Background()

	var chunks []models.Chunk
	for i := 0; i < 50; i++ {
		chunks = append(chunks, lexChunk(
			fmt.Sprintf("c%d", i),
			fmt.Sprintf("Filler paragraph number %d about miscellaneous topics.", i)))
	}
	chunks = append(chunks, lexChunk("target", "A unique sentence mentioning cryptography explicitly."))

	idx, err := NewLexicalIndex(chunks)
	require.NoError(t, err)
	defer idx.Close()

	results, err := idx.Query(ctx, "cryptography", 5)
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, "target", results[0].Metadata.ChunkID)
}
