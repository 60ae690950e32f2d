package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// recordingQueue wraps MemoryQueue and captures Fail calls
type recordingQueue struct {
	*MemoryQueue

	mu     sync.Mutex
	failed []*QueuedJob
	causes []error
}

func (q *recordingQueue) Fail(ctx context.Context, job *QueuedJob, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append(q.failed, job)
	q.causes = append(q.causes, cause)
	return nil
}

func TestWorkerProcessesJob(t *testing.T) {
	q := NewMemoryQueue()

	done := make(chan *Job, 1)
	w := NewWorker(q, func(ctx context.Context, job *Job) error {
		done <- job
		return nil
	}, 1)
	w.baseDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, q.Enqueue(ctx, &Job{AlertID: "a-1", BrandID: "b-1", Severity: "high"}))

	select {
	case job := <-done:
		assert.Equal(t, "a-1", job.AlertID)
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}

	cancel()
	w.Wait()
}

func TestWorkerRetriesWithBackoffThenFails(t *testing.T) {
	q := &recordingQueue{MemoryQueue: NewMemoryQueue()}

	var mu sync.Mutex
	attempts := 0
	handlerErr := errors.New("smtp unreachable")

	w := NewWorker(q, func(ctx context.Context, job *Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return handlerErr
	}, 1)
	w.baseDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, q.Enqueue(ctx, &Job{AlertID: "a-1", Severity: "low"}))

	assert.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.failed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, defaultMaxAttempts, attempts)
	mu.Unlock()

	q.mu.Lock()
	assert.Equal(t, "a-1", q.failed[0].AlertID)
	assert.ErrorIs(t, q.causes[0], handlerErr)
	q.mu.Unlock()

	cancel()
	w.Wait()
}

func TestWorkerFailsMissingDataWithoutRetry(t *testing.T) {
	q := &recordingQueue{MemoryQueue: NewMemoryQueue()}

	var mu sync.Mutex
	attempts := 0
	w := NewWorker(q, func(ctx context.Context, job *Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return fmt.Errorf("failed to load alert %s: %w", job.AlertID, models.ErrNotFound)
	}, 1)
	w.baseDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, q.Enqueue(ctx, &Job{AlertID: "a-gone", Severity: "high"}))

	assert.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.failed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Missing data cannot heal on retry: exactly one attempt.
	mu.Lock()
	assert.Equal(t, 1, attempts)
	mu.Unlock()

	q.mu.Lock()
	assert.Equal(t, "a-gone", q.failed[0].AlertID)
	assert.ErrorIs(t, q.causes[0], models.ErrNotFound)
	q.mu.Unlock()

	cancel()
	w.Wait()
}

func TestWorkerRecoversAfterTransientFailure(t *testing.T) {
	q := &recordingQueue{MemoryQueue: NewMemoryQueue()}

	var mu sync.Mutex
	attempts := 0
	w := NewWorker(q, func(ctx context.Context, job *Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	}, 1)
	w.baseDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, q.Enqueue(ctx, &Job{AlertID: "a-1", Severity: "medium"}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 2
	}, 2*time.Second, 10*time.Millisecond)

	// Recovered on retry: nothing marked failed.
	time.Sleep(20 * time.Millisecond)
	q.mu.Lock()
	assert.Empty(t, q.failed)
	q.mu.Unlock()

	cancel()
	w.Wait()
}

func TestWorkerPoolStopsOnCancel(t *testing.T) {
	q := NewMemoryQueue()
	w := NewWorker(q, func(ctx context.Context, job *Job) error { return nil }, 3)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	stopped := make(chan struct{})
	go func() {
		w.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop on context cancellation")
	}
}
