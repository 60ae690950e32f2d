package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// pollInterval is how often the sqlite backend checks for new pending jobs
// when the table is empty.
const pollInterval = 500 * time.Millisecond

// SQLiteQueue is a durable JobQueue over the alert_jobs table. Jobs survive
// process restarts: rows left in 'processing' by a crashed worker are moved
// back to 'pending' at construction.
type SQLiteQueue struct {
	db *sql.DB
}

// NewSQLiteQueue creates a durable queue and recovers orphaned jobs
func NewSQLiteQueue(db *sql.DB) (*SQLiteQueue, error) {
	q := &SQLiteQueue{db: db}
	if err := q.recover(); err != nil {
		return nil, err
	}
	return q, nil
}

// recover returns jobs claimed by a previous process to the pending state
func (q *SQLiteQueue) recover() error {
	_, err := q.db.Exec(
		"UPDATE alert_jobs SET status = 'pending', updated_at = ? WHERE status = 'processing'",
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to recover orphaned jobs: %w", err)
	}
	return nil
}

// Enqueue inserts a pending job row
func (q *SQLiteQueue) Enqueue(ctx context.Context, job *Job) error {
	now := time.Now().UTC()
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO alert_jobs (alert_id, brand_id, severity, priority, status, available_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'pending', ?, ?, ?)
	`, job.AlertID, job.BrandID, job.Severity, job.Priority(), now, now, now)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue claims the highest-priority pending job, polling until one
// appears or ctx is done. FIFO within a priority tier comes from the
// autoincrement row id.
func (q *SQLiteQueue) Dequeue(ctx context.Context) (*QueuedJob, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		job, err := q.claim(ctx)
		if err != nil {
			return nil, err
		}
		if job != nil {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// claim attempts to take one pending job. Returns (nil, nil) when the
// table has no claimable rows.
func (q *SQLiteQueue) claim(ctx context.Context) (*QueuedJob, error) {
	job := &QueuedJob{}
	err := q.db.QueryRowContext(ctx, `
		SELECT id, alert_id, brand_id, severity
		FROM alert_jobs
		WHERE status = 'pending' AND available_at <= ?
		ORDER BY priority, id
		LIMIT 1
	`, time.Now().UTC()).Scan(&job.Handle, &job.AlertID, &job.BrandID, &job.Severity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select pending job: %w", err)
	}

	res, err := q.db.ExecContext(ctx,
		"UPDATE alert_jobs SET status = 'processing', attempts = attempts + 1, updated_at = ? WHERE id = ? AND status = 'pending'",
		time.Now().UTC(), job.Handle,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		// Lost the claim race to another worker.
		return nil, nil
	}
	return job, nil
}

// Ack deletes the completed job row
func (q *SQLiteQueue) Ack(ctx context.Context, job *QueuedJob) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM alert_jobs WHERE id = ?", job.Handle)
	if err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}

// Fail marks the job permanently failed, keeping the row for inspection
func (q *SQLiteQueue) Fail(ctx context.Context, job *QueuedJob, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := q.db.ExecContext(ctx,
		"UPDATE alert_jobs SET status = 'failed', last_error = ?, updated_at = ? WHERE id = ?",
		msg, time.Now().UTC(), job.Handle,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

// Close is a no-op; the database connection is owned by the caller
func (q *SQLiteQueue) Close() error { return nil }
