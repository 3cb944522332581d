package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbedModel)
	assert.Equal(t, "localhost", cfg.ChromaHost)
	assert.Equal(t, 8000, cfg.ChromaPort)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopKResults)
	assert.Equal(t, 0.5, cfg.SemanticWeight)
	assert.Nil(t, cfg.DistanceThreshold)
	assert.Equal(t, "uploads", cfg.UploadDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("MODEL_NAME", "llama-3.1-8b")
	t.Setenv("CHROMA_PORT", "8001")
	t.Setenv("CHUNK_SIZE", "512")
	t.Setenv("SEMANTIC_WEIGHT", "0.7")
	t.Setenv("DISTANCE_THRESHOLD", "0.45")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "llama-3.1-8b", cfg.ChatModel)
	assert.Equal(t, 8001, cfg.ChromaPort)
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.Equal(t, 0.7, cfg.SemanticWeight)
	require.NotNil(t, cfg.DistanceThreshold)
	assert.Equal(t, 0.45, *cfg.DistanceThreshold)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CHROMA_PORT", "not-a-number")
	t.Setenv("SEMANTIC_WEIGHT", "abc")
	t.Setenv("DISTANCE_THRESHOLD", "abc")

	cfg := Load()

	assert.Equal(t, 8000, cfg.ChromaPort)
	assert.Equal(t, 0.5, cfg.SemanticWeight)
	assert.Nil(t, cfg.DistanceThreshold)
}
