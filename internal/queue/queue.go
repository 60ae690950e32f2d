package queue

import (
	"context"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// Job is the alert-processing payload carried by the queue. The JSON field
// names are the wire contract shared with queue consumers.
type Job struct {
	AlertID  string `json:"alertId"`
	BrandID  string `json:"brandId"`
	Severity string `json:"severity"`
}

// Priority returns the queue priority for the job's severity:
// critical=1 ... low=4, lower number dequeues first.
func (j *Job) Priority() int {
	return models.SeverityRank(models.Severity(j.Severity))
}

// QueuedJob is a dequeued job plus the backend's bookkeeping handle
type QueuedJob struct {
	Job
	// Handle identifies the job inside its backend (row id, member key).
	// Zero for backends that need no acknowledgement bookkeeping.
	Handle int64
}

// JobQueue is a priority-ordered alert job queue. Enqueue is
// fire-and-forget from the producer's perspective; Dequeue blocks until a
// job is available or ctx is done. Higher-severity jobs dequeue first;
// within one severity tier, order is FIFO.
//
// Backends: NewMemoryQueue (tests, dev), NewSQLiteQueue (durable, default)
// and NewRedisQueue.
type JobQueue interface {
	Enqueue(ctx context.Context, job *Job) error
	Dequeue(ctx context.Context) (*QueuedJob, error)

	// Ack marks a dequeued job done; Fail marks it permanently failed
	// after the worker exhausted its retry budget.
	Ack(ctx context.Context, job *QueuedJob) error
	Fail(ctx context.Context, job *QueuedJob, cause error) error

	Close() error
}
