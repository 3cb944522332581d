// Package server assembles the application: configuration, backing
// services, session registry, background workers, and the HTTP router.
package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"docqa/internal/config"
	"docqa/internal/db"
	"docqa/internal/handlers"
	"docqa/internal/index"
	"docqa/internal/ingestion"
	"docqa/internal/llm"
	"docqa/internal/repositories"
	"docqa/internal/retrieval"
	"docqa/internal/routes"
	"docqa/internal/session"
	"docqa/internal/workers"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewServer builds the fully wired HTTP server
func NewServer() *http.Server {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	cfg := config.Load()

	chromaClient := initializeChroma(cfg, logger)
	llmClient := llm.NewClient(llm.Config{
		BaseURL:    cfg.OpenAIBaseURL,
		APIKey:     cfg.OpenAIAPIKey,
		ChatModel:  cfg.ChatModel,
		EmbedModel: cfg.EmbedModel,
	})

	registry := session.NewRegistry(session.Deps{
		NewSemanticIndex: func(sessionID string) session.SemanticIndex {
			return index.NewSemanticIndex(chromaClient, llmClient, "session_"+sessionID, logger)
		},
		Loader:   ingestion.NewPDFLoader(logger),
		Splitter: ingestion.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		LLM:      llmClient,
		Retrieval: retrieval.Config{
			TopK:              cfg.TopKResults,
			SemanticWeight:    cfg.SemanticWeight,
			DistanceThreshold: cfg.DistanceThreshold,
		},
		UploadDir: cfg.UploadDir,
		Logger:    logger,
	})

	jobRepo := initializeJobQueue(cfg, logger)
	if jobRepo != nil {
		worker := workers.NewIngestWorker(
			workers.DefaultWorkerConfig("ingest-worker-1"), jobRepo, registry, logger)
		if err := worker.Start(context.Background()); err != nil {
			logger.Printf("⚠️  Failed to start ingest worker: %v", err)
		} else {
			logger.Println("✅ Background ingest worker started")
		}
	}

	h := &routes.Handlers{
		Health:  handlers.HealthCheckHandler,
		Session: handlers.NewSessionHandler(registry, logger),
		Upload:  handlers.NewUploadHandler(registry, jobRepo, logger),
		Ask:     handlers.NewAskHandler(registry, logger),
		Job:     handlers.NewJobHandler(jobRepo, logger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Add Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // The url pointing to API definition
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	logger.Printf("Listening on %s", cfg.ServerAddr)
	return &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: corsMiddleware(router),
	}
}

// initializeChroma creates the vector store client and checks connectivity.
// A failed heartbeat is logged but not fatal; sessions created before the
// store comes up will fail to initialize and report that to the caller.
func initializeChroma(cfg config.Config, logger *log.Logger) *db.ChromaClient {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chromaConfig := db.ChromaConfig{
		Host:     cfg.ChromaHost,
		Port:     cfg.ChromaPort,
		Tenant:   cfg.ChromaTenant,
		Database: cfg.ChromaDatabase,
		Timeout:  cfg.ChromaTimeout,
	}
	logger.Printf("Connecting to ChromaDB: %s:%d", chromaConfig.Host, chromaConfig.Port)

	client := db.NewChromaClient(chromaConfig)
	if err := client.Heartbeat(ctx); err != nil {
		logger.Printf("⚠️  ChromaDB connection failed: %v", err)
		logger.Println("   Hint: Ensure ChromaDB is running (docker run -d -p 8000:8000 chromadb/chroma)")
	} else {
		logger.Println("✅ ChromaDB connected successfully")
	}

	return client
}

// initializeJobQueue connects to Redis and builds the job repository.
// Returns nil when Redis is unreachable; uploads then run synchronously.
func initializeJobQueue(cfg config.Config, logger *log.Logger) repositories.JobRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisConfig := db.DefaultRedisConfig()
	redisConfig.Host = cfg.RedisHost
	redisConfig.Port = cfg.RedisPort
	redisConfig.DB = cfg.RedisDB

	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", redisConfig.Host, redisConfig.Port, redisConfig.DB)

	redisClient := db.NewRedisClient(redisConfig)
	if err := redisClient.Ping(ctx); err != nil {
		logger.Printf("❌ Redis connection failed: %v", err)
		logger.Println("   Async ingestion disabled - uploads will be processed synchronously")
		logger.Println("   Hint: Ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		return nil
	}
	logger.Println("✅ Redis connected successfully")

	return repositories.NewRedisJobRepository(redisClient.GetClient())
}
