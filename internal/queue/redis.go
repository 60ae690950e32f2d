package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// redisKey is the sorted set holding pending jobs
	redisKey = "alerts:jobs"
	// redisFailedKey collects jobs that exhausted their retry budget
	redisFailedKey = "alerts:jobs:failed"
	// redisSeqKey feeds the FIFO tiebreaker within a priority tier
	redisSeqKey = "alerts:jobs:seq"
)

// RedisQueue is a JobQueue over a Redis sorted set. The score encodes
// priority first and an enqueue sequence number second, so ZPOPMIN yields
// priority order with FIFO ties. Jobs survive process restarts as long as
// Redis does.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue connects to Redis and verifies the connection
func NewRedisQueue(redisURL string) (*RedisQueue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{client: client}, nil
}

// Enqueue adds the job to the sorted set
func (q *RedisQueue) Enqueue(ctx context.Context, job *Job) error {
	seq, err := q.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate job sequence: %w", err)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	// priority occupies the high bits, the sequence breaks ties FIFO
	score := float64(job.Priority())*1e12 + float64(seq)
	if err := q.client.ZAdd(ctx, redisKey, redis.Z{Score: score, Member: payload}).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue pops the lowest-score (highest-priority) job, polling until one
// appears or ctx is done.
func (q *RedisQueue) Dequeue(ctx context.Context) (*QueuedJob, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		entries, err := q.client.ZPopMin(ctx, redisKey, 1).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("failed to pop job: %w", err)
		}
		if len(entries) > 0 {
			member, _ := entries[0].Member.(string)
			job := &QueuedJob{}
			if err := json.Unmarshal([]byte(member), &job.Job); err != nil {
				return nil, fmt.Errorf("failed to unmarshal job: %w", err)
			}
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Ack is a no-op: ZPOPMIN already removed the member
func (q *RedisQueue) Ack(context.Context, *QueuedJob) error { return nil }

// Fail pushes the job onto the failed list for operator inspection
func (q *RedisQueue) Fail(ctx context.Context, job *QueuedJob, cause error) error {
	entry, err := json.Marshal(map[string]interface{}{
		"job":       job.Job,
		"error":     cause.Error(),
		"failed_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal failed job: %w", err)
	}
	if err := q.client.LPush(ctx, redisFailedKey, entry).Err(); err != nil {
		return fmt.Errorf("failed to record failed job: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
