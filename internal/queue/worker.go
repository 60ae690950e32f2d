package queue

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// Handler processes one alert job. Returning an error triggers a retry,
// except errors wrapping models.ErrNotFound: the referenced data is gone
// and no retry can bring it back, so the job fails immediately.
type Handler func(ctx context.Context, job *Job) error

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

// Worker runs a fixed pool of goroutines that pull jobs from the queue and
// hand them to the handler. Failed jobs are retried with exponential
// backoff (baseDelay * 2^(attempt-1)); after maxAttempts the job is marked
// failed and logged, never re-queued. Errors never reach the enqueuer.
type Worker struct {
	queue   JobQueue
	handler Handler

	count       int
	maxAttempts int
	baseDelay   time.Duration

	wg sync.WaitGroup
}

// NewWorker creates a worker pool of the given size
func NewWorker(q JobQueue, handler Handler, count int) *Worker {
	if count <= 0 {
		count = 1
	}
	return &Worker{
		queue:       q,
		handler:     handler,
		count:       count,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
}

// Start launches the pool. Workers exit when ctx is cancelled or the queue
// closes; Wait blocks until they all have.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.count; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.run(ctx, id)
		}(i)
	}
}

// Wait blocks until all workers have exited
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, id int) {
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() == nil && err != ErrQueueClosed {
				log.Printf("Worker %d: dequeue failed: %v", id, err)
			}
			return
		}
		w.process(ctx, id, job)
	}
}

// process runs the handler with the retry budget. In-flight attempts always
// run to completion; only the delay between attempts is cut short by ctx.
func (w *Worker) process(ctx context.Context, id int, job *QueuedJob) {
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		lastErr = w.handler(ctx, &job.Job)
		if lastErr == nil {
			if err := w.queue.Ack(ctx, job); err != nil {
				log.Printf("Worker %d: failed to ack job for alert %s: %v", id, job.AlertID, err)
			}
			return
		}

		if errors.Is(lastErr, models.ErrNotFound) {
			log.Printf("Worker %d: job references missing data, marking failed without retry: alert=%s err=%v",
				id, job.AlertID, lastErr)
			if err := w.queue.Fail(ctx, job, lastErr); err != nil {
				log.Printf("Worker %d: failed to mark job failed for alert %s: %v", id, job.AlertID, err)
			}
			return
		}

		if attempt < w.maxAttempts {
			delay := w.baseDelay * (1 << (attempt - 1))
			log.Printf("Worker %d: job for alert %s failed (attempt %d/%d), retrying in %v: %v",
				id, job.AlertID, attempt, w.maxAttempts, delay, lastErr)
			select {
			case <-ctx.Done():
				// Shutting down; leave the job to recovery on restart.
				return
			case <-time.After(delay):
			}
		}
	}

	log.Printf("Worker %d: job exhausted retries, marking failed: alert=%s brand=%s severity=%s err=%v",
		id, job.AlertID, job.BrandID, job.Severity, lastErr)
	if err := w.queue.Fail(ctx, job, lastErr); err != nil {
		log.Printf("Worker %d: failed to mark job failed for alert %s: %v", id, job.AlertID, err)
	}
}
