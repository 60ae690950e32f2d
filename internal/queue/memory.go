package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Dequeue after Close
var ErrQueueClosed = errors.New("queue closed")

// numPriorities covers severity ranks 1..4
const numPriorities = 4

// MemoryQueue is an in-process JobQueue. Jobs do not survive a restart;
// it backs tests and development runs.
type MemoryQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tiers  [numPriorities][]*Job
	closed bool
}

// NewMemoryQueue creates an empty in-memory queue
func NewMemoryQueue() *MemoryQueue {
	q := &MemoryQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends the job to its priority tier
func (q *MemoryQueue) Enqueue(_ context.Context, job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	tier := job.Priority() - 1
	if tier < 0 || tier >= numPriorities {
		tier = numPriorities - 1
	}
	q.tiers[tier] = append(q.tiers[tier], job)
	q.cond.Signal()
	return nil
}

// Dequeue blocks until a job is available, the queue closes, or ctx is done
func (q *MemoryQueue) Dequeue(ctx context.Context) (*QueuedJob, error) {
	// Wake the cond wait when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if job := q.pop(); job != nil {
			return &QueuedJob{Job: *job}, nil
		}
		if q.closed {
			return nil, ErrQueueClosed
		}
		q.cond.Wait()
	}
}

// pop removes the head of the highest-priority non-empty tier
func (q *MemoryQueue) pop() *Job {
	for i := 0; i < numPriorities; i++ {
		if len(q.tiers[i]) > 0 {
			job := q.tiers[i][0]
			q.tiers[i] = q.tiers[i][1:]
			return job
		}
	}
	return nil
}

// Ack is a no-op: memory jobs vanish on dequeue
func (q *MemoryQueue) Ack(context.Context, *QueuedJob) error { return nil }

// Fail is a no-op beyond the worker's own logging
func (q *MemoryQueue) Fail(context.Context, *QueuedJob, error) error { return nil }

// Close wakes all blocked consumers
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
	return nil
}

// Len reports the number of queued jobs across all tiers
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for i := range q.tiers {
		n += len(q.tiers[i])
	}
	return n
}
