package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"docqa/internal/repositories"
	"docqa/internal/session"
)

// IngestWorker processes queued document-ingestion jobs. Job payloads carry
// the session ID and the saved file paths to ingest.
type IngestWorker struct {
	*BaseWorker
	jobRepo  repositories.JobRepository
	registry *session.Registry
	logger   *log.Logger
}

// NewIngestWorker creates an ingest worker
func NewIngestWorker(config WorkerConfig, jobRepo repositories.JobRepository, registry *session.Registry, logger *log.Logger) *IngestWorker {
	return &IngestWorker{
		BaseWorker: NewBaseWorker(config),
		jobRepo:    jobRepo,
		registry:   registry,
		logger:     logger,
	}
}

// Start begins polling for ingestion jobs until ctx is cancelled
func (w *IngestWorker) Start(ctx context.Context) error {
	if w.IsRunning() {
		return fmt.Errorf("worker %s already running", w.Name())
	}

	w.setRunning(true)
	w.logger.Printf("Starting ingest worker: %s (concurrency: %d)", w.Name(), w.config.Concurrency)

	for i := 0; i < w.config.Concurrency; i++ {
		go w.pollLoop(ctx, i)
	}

	return nil
}

// Stop halts job processing
func (w *IngestWorker) Stop() {
	w.setRunning(false)
	w.logger.Printf("Ingest worker stopped: %s", w.Name())
}

func (w *IngestWorker) pollLoop(ctx context.Context, id int) {
	interval := w.config.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Printf("Worker goroutine stopping: %s-%d", w.Name(), id)
			return
		case <-ticker.C:
			if !w.IsRunning() {
				return
			}

			job, err := w.jobRepo.Dequeue(ctx, repositories.JobTypeIngest)
			if err != nil {
				w.logger.Printf("Failed to dequeue job: %v", err)
				continue
			}
			if job == nil {
				continue
			}

			w.processJob(ctx, job)
		}
	}
}

func (w *IngestWorker) processJob(ctx context.Context, job *repositories.Job) {
	succeeded := false
	defer func() {
		if w.config.EnableRecovery {
			if r := recover(); r != nil {
				w.logger.Printf("Panic processing job %s: %v", job.ID, r)
				w.jobRepo.SetError(ctx, job.ID, fmt.Sprintf("panic: %v", r))
				w.recordJob(false)
				return
			}
		}
		w.recordJob(succeeded)
	}()

	w.logger.Printf("Processing ingest job %s", job.ID)
	if err := w.jobRepo.UpdateStatus(ctx, job.ID, repositories.JobStatusProcessing, 10, "loading documents"); err != nil {
		w.logger.Printf("Failed to mark job %s processing: %v", job.ID, err)
	}

	sessionID, paths, err := decodePayload(job.Payload)
	if err != nil {
		w.jobRepo.SetError(ctx, job.ID, err.Error())
		return
	}

	sess, err := w.registry.Get(sessionID)
	if err != nil {
		w.jobRepo.SetError(ctx, job.ID, err.Error())
		return
	}

	w.jobRepo.UpdateStatus(ctx, job.ID, repositories.JobStatusProcessing, 50, "chunking and indexing")

	result, err := sess.AddDocuments(ctx, paths)
	if err != nil {
		w.logger.Printf("Ingest job %s failed: %v", job.ID, err)
		w.jobRepo.SetError(ctx, job.ID, err.Error())
		return
	}

	if err := w.jobRepo.SetResult(ctx, job.ID, map[string]interface{}{
		"documents":    result.Documents,
		"total_chunks": result.TotalChunks,
	}); err != nil {
		w.logger.Printf("Failed to record result for job %s: %v", job.ID, err)
		return
	}

	succeeded = true
	w.logger.Printf("Ingest job %s completed: %d chunks", job.ID, result.TotalChunks)
}

func decodePayload(payload map[string]interface{}) (sessionID string, paths []string, err error) {
	sessionID, _ = payload["session_id"].(string)
	if sessionID == "" {
		return "", nil, fmt.Errorf("job payload missing session_id")
	}

	raw, _ := payload["paths"].([]interface{})
	for _, p := range raw {
		if s, ok := p.(string); ok {
			paths = append(paths, s)
		}
	}
	if len(paths) == 0 {
		return "", nil, fmt.Errorf("job payload missing paths")
	}

	return sessionID, paths, nil
}
