package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration, read from environment variables
type Config struct {
	ServerAddr string

	// OpenAI-compatible endpoint (OpenAI, LM Studio, etc.)
	OpenAIBaseURL string
	OpenAIAPIKey  string
	ChatModel     string
	EmbedModel    string

	// ChromaDB
	ChromaHost     string
	ChromaPort     int
	ChromaTenant   string
	ChromaDatabase string
	ChromaTimeout  time.Duration

	// Redis (optional, async ingestion jobs)
	RedisHost string
	RedisPort int
	RedisDB   int

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopKResults       int
	SemanticWeight    float64
	DistanceThreshold *float64 // nil = no threshold

	// Paths
	UploadDir string
}

// Load reads configuration from the environment, applying defaults.
// A .env file in the working directory is honored when present.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		ChatModel:      getEnv("MODEL_NAME", "gpt-4o-mini"),
		EmbedModel:     getEnv("EMBED_MODEL", "text-embedding-3-small"),
		ChromaHost:     getEnv("CHROMA_HOST", "localhost"),
		ChromaPort:     getEnvInt("CHROMA_PORT", 8000),
		ChromaTenant:   getEnv("CHROMA_TENANT", "default_tenant"),
		ChromaDatabase: getEnv("CHROMA_DATABASE", "default_database"),
		ChromaTimeout:  30 * time.Second,
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnvInt("REDIS_PORT", 6379),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		ChunkSize:      getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", 200),
		TopKResults:    getEnvInt("TOP_K_RESULTS", 5),
		SemanticWeight: getEnvFloat("SEMANTIC_WEIGHT", 0.5),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
	}

	if raw := os.Getenv("DISTANCE_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.DistanceThreshold = &v
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}
