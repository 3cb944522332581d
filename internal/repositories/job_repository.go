// Package repositories defines persistence interfaces and their
// implementations. Only ingestion jobs are persisted; session state is
// deliberately in-memory and dies with the process.
package repositories

import (
	"context"
	"time"
)

// JobType identifies what kind of work a job carries
type JobType string

const (
	JobTypeIngest JobType = "document_ingest"
)

// JobStatus represents the lifecycle state of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background ingestion job
type Job struct {
	ID        string                 `json:"id"`
	Type      JobType                `json:"type"`
	Status    JobStatus              `json:"status"`
	Progress  int                    `json:"progress"` // 0-100
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload"`
	Result    map[string]interface{} `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// JobRepository manages the background job queue
type JobRepository interface {
	// Enqueue stores the job and pushes it onto its type's queue
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue pops the next pending job of the given type, or nil when the
	// queue is empty
	Dequeue(ctx context.Context, jobType JobType) (*Job, error)

	// Get returns a job by ID
	Get(ctx context.Context, jobID string) (*Job, error)

	// UpdateStatus updates status, progress, and message
	UpdateStatus(ctx context.Context, jobID string, status JobStatus, progress int, message string) error

	// SetResult records the job's result payload
	SetResult(ctx context.Context, jobID string, result map[string]interface{}) error

	// SetError marks the job failed with the given error message
	SetError(ctx context.Context, jobID string, errMsg string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
