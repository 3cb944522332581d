// Package workers runs background job processing for async document
// ingestion.
package workers

import (
	"sync"
	"time"
)

// WorkerConfig holds configuration for workers
type WorkerConfig struct {
	// WorkerName is a unique identifier for this worker instance
	WorkerName string

	// Concurrency is the number of jobs to process concurrently
	Concurrency int

	// PollInterval is how often to check for new jobs
	PollInterval time.Duration

	// EnableRecovery enables panic recovery around job handlers
	EnableRecovery bool
}

// DefaultWorkerConfig returns a worker configuration with sensible defaults
func DefaultWorkerConfig(workerName string) WorkerConfig {
	return WorkerConfig{
		WorkerName:     workerName,
		Concurrency:    2,
		PollInterval:   2 * time.Second,
		EnableRecovery: true,
	}
}

// WorkerStats represents statistics about a worker
type WorkerStats struct {
	WorkerName    string `json:"worker_name"`
	JobsProcessed int64  `json:"jobs_processed"`
	JobsSucceeded int64  `json:"jobs_succeeded"`
	JobsFailed    int64  `json:"jobs_failed"`
	IsRunning     bool   `json:"is_running"`
}

// BaseWorker provides run-state and stats tracking shared by workers
type BaseWorker struct {
	config  WorkerConfig
	running bool
	mu      sync.RWMutex

	jobsProcessed int64
	jobsSucceeded int64
	jobsFailed    int64
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(config WorkerConfig) *BaseWorker {
	return &BaseWorker{config: config}
}

// Name returns the worker's name
func (w *BaseWorker) Name() string {
	return w.config.WorkerName
}

// IsRunning returns whether the worker is currently running
func (w *BaseWorker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Stats returns a snapshot of the worker's counters
func (w *BaseWorker) Stats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerStats{
		WorkerName:    w.config.WorkerName,
		JobsProcessed: w.jobsProcessed,
		JobsSucceeded: w.jobsSucceeded,
		JobsFailed:    w.jobsFailed,
		IsRunning:     w.running,
	}
}

func (w *BaseWorker) setRunning(running bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = running
}

func (w *BaseWorker) recordJob(succeeded bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.jobsProcessed++
	if succeeded {
		w.jobsSucceeded++
	} else {
		w.jobsFailed++
	}
}
