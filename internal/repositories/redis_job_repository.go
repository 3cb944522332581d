package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	jobKeyPrefix   = "docqa:job:"
	jobQueuePrefix = "docqa:queue:"
	jobTTL         = 24 * time.Hour
)

// RedisJobRepository stores jobs as JSON values and queues as lists
type RedisJobRepository struct {
	client *redis.Client
}

// NewRedisJobRepository creates a Redis-backed job repository
func NewRedisJobRepository(client *redis.Client) *RedisJobRepository {
	return &RedisJobRepository{client: client}
}

// Enqueue stores the job and pushes its ID onto the type queue
func (r *RedisJobRepository) Enqueue(ctx context.Context, job *Job) error {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = JobStatusPending
	}

	if err := r.save(ctx, job); err != nil {
		return err
	}

	if err := r.client.LPush(ctx, jobQueuePrefix+string(job.Type), job.ID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}

	return nil
}

// Dequeue pops the next job ID from the type queue and loads the job.
// Returns nil when the queue is empty.
func (r *RedisJobRepository) Dequeue(ctx context.Context, jobType JobType) (*Job, error) {
	id, err := r.client.RPop(ctx, jobQueuePrefix+string(jobType)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}

	return r.Get(ctx, id)
}

// Get returns a job by ID
func (r *RedisJobRepository) Get(ctx context.Context, jobID string) (*Job, error) {
	data, err := r.client.Get(ctx, jobKeyPrefix+jobID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}

	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}

	return &job, nil
}

// UpdateStatus updates status, progress, and message
func (r *RedisJobRepository) UpdateStatus(ctx context.Context, jobID string, status JobStatus, progress int, message string) error {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return err
	}

	job.Status = status
	job.Progress = progress
	job.Message = message
	job.UpdatedAt = time.Now()

	return r.save(ctx, job)
}

// SetResult records the job's result payload and marks it completed
func (r *RedisJobRepository) SetResult(ctx context.Context, jobID string, result map[string]interface{}) error {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return err
	}

	job.Result = result
	job.Status = JobStatusCompleted
	job.Progress = 100
	job.UpdatedAt = time.Now()

	return r.save(ctx, job)
}

// SetError marks the job failed with the given error message
func (r *RedisJobRepository) SetError(ctx context.Context, jobID string, errMsg string) error {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return err
	}

	job.Status = JobStatusFailed
	job.Error = errMsg
	job.UpdatedAt = time.Now()

	return r.save(ctx, job)
}

// Ping checks the Redis connection
func (r *RedisJobRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (r *RedisJobRepository) Close() error {
	return r.client.Close()
}

func (r *RedisJobRepository) save(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	if err := r.client.Set(ctx, jobKeyPrefix+job.ID, data, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}

	return nil
}
