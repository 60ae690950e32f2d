package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueuePriorityOrder(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &Job{AlertID: "a-low", Severity: "low"}))
	require.NoError(t, q.Enqueue(ctx, &Job{AlertID: "a-crit", Severity: "critical"}))
	require.NoError(t, q.Enqueue(ctx, &Job{AlertID: "a-med", Severity: "medium"}))

	first, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-crit", first.AlertID)

	second, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-med", second.AlertID)

	third, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-low", third.AlertID)
}

func TestMemoryQueueFIFOWithinTier(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &Job{AlertID: "first", Severity: "high"}))
	require.NoError(t, q.Enqueue(ctx, &Job{AlertID: "second", Severity: "high"}))

	a, _ := q.Dequeue(ctx)
	b, _ := q.Dequeue(ctx)
	assert.Equal(t, "first", a.AlertID)
	assert.Equal(t, "second", b.AlertID)
}

func TestMemoryQueueDequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewMemoryQueue()

	got := make(chan *QueuedJob, 1)
	go func() {
		job, err := q.Dequeue(context.Background())
		if err == nil {
			got <- job
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), &Job{AlertID: "a-1", Severity: "low"}))

	select {
	case job := <-got:
		assert.Equal(t, "a-1", job.AlertID)
	case <-time.After(time.Second):
		t.Fatal("Dequeue never returned after Enqueue")
	}
}

func TestMemoryQueueDequeueHonorsContext(t *testing.T) {
	q := NewMemoryQueue()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueueClose(t *testing.T) {
	q := NewMemoryQueue()

	errs := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(context.Background())
		errs <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("Dequeue never returned after Close")
	}

	assert.ErrorIs(t, q.Enqueue(context.Background(), &Job{AlertID: "a"}), ErrQueueClosed)
}

func TestJobPriority(t *testing.T) {
	assert.Equal(t, 1, (&Job{Severity: "critical"}).Priority())
	assert.Equal(t, 2, (&Job{Severity: "high"}).Priority())
	assert.Equal(t, 3, (&Job{Severity: "medium"}).Priority())
	assert.Equal(t, 4, (&Job{Severity: "low"}).Priority())
	assert.Equal(t, 4, (&Job{Severity: "bogus"}).Priority())
}
