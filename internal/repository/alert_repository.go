package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// AlertRepository handles database operations for alerts
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, brand_id, alert_threshold_id, severity, title, message,
	metric_type, current_value, threshold_value, is_acknowledged,
	acknowledged_by, acknowledged_at, resolved_at, created_at`

// Create inserts a new alert and assigns its ID
func (r *AlertRepository) Create(a *models.Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO alerts (
			id, brand_id, alert_threshold_id, severity, title, message,
			metric_type, current_value, threshold_value, is_acknowledged,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
	`
	_, err := r.db.Exec(query,
		a.ID, a.BrandID, a.AlertThresholdID, string(a.Severity), a.Title,
		a.Message, string(a.MetricType), a.CurrentValue, a.ThresholdValue,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// GetByID retrieves an alert by ID
func (r *AlertRepository) GetByID(id string) (*models.Alert, error) {
	query := "SELECT " + alertColumns + " FROM alerts WHERE id = ?"
	a, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return a, err
}

// Acknowledge marks an alert acknowledged by the given user
func (r *AlertRepository) Acknowledge(id, userID string) error {
	res, err := r.db.Exec(
		"UPDATE alerts SET is_acknowledged = 1, acknowledged_by = ?, acknowledged_at = ? WHERE id = ?",
		userID, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	return requireRow(res)
}

// Resolve marks an alert resolved
func (r *AlertRepository) Resolve(id string) error {
	res, err := r.db.Exec(
		"UPDATE alerts SET resolved_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	return requireRow(res)
}

// List returns alerts for a brand, newest first, narrowed by filter
func (r *AlertRepository) List(brandID string, filter models.AlertFilter) ([]*models.Alert, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + alertColumns + " FROM alerts WHERE brand_id = ?")
	args := []interface{}{brandID}

	if filter.Severity != nil {
		sb.WriteString(" AND severity = ?")
		args = append(args, string(*filter.Severity))
	}
	if filter.Acknowledged != nil {
		sb.WriteString(" AND is_acknowledged = ?")
		args = append(args, *filter.Acknowledged)
	}
	if filter.Resolved != nil {
		if *filter.Resolved {
			sb.WriteString(" AND resolved_at IS NOT NULL")
		} else {
			sb.WriteString(" AND resolved_at IS NULL")
		}
	}

	sb.WriteString(" ORDER BY created_at DESC")
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var out []*models.Alert
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountSimilarRecent counts unresolved alerts for the same brand and metric
// created since the cutoff whose current value lies within tolerance of the
// given threshold value. Used by the duplicate suppressor.
func (r *AlertRepository) CountSimilarRecent(brandID string, metric models.MetricType, thresholdValue, tolerance float64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM alerts
		WHERE brand_id = ?
		  AND metric_type = ?
		  AND resolved_at IS NULL
		  AND created_at >= ?
		  AND current_value BETWEEN ? AND ?
	`
	var n int
	err := r.db.QueryRow(query,
		brandID, string(metric), since,
		thresholdValue-tolerance, thresholdValue+tolerance,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count similar alerts: %w", err)
	}
	return n, nil
}

// Statistics aggregates alert counts for a brand
func (r *AlertRepository) Statistics(brandID string) (*models.AlertStats, error) {
	stats := &models.AlertStats{
		BySeverity: map[models.Severity]int{
			models.SeverityLow:      0,
			models.SeverityMedium:   0,
			models.SeverityHigh:     0,
			models.SeverityCritical: 0,
		},
	}

	rows, err := r.db.Query(
		"SELECT severity, COUNT(*) FROM alerts WHERE brand_id = ? GROUP BY severity",
		brandID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert statistics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, fmt.Errorf("failed to scan alert statistics: %w", err)
		}
		stats.BySeverity[models.Severity(sev)] = n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	query := `
		SELECT
			COALESCE(SUM(is_acknowledged), 0),
			COALESCE(SUM(CASE WHEN resolved_at IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM alerts WHERE brand_id = ?
	`
	if err := r.db.QueryRow(query, brandID).Scan(&stats.Acknowledged, &stats.Resolved); err != nil {
		return nil, fmt.Errorf("failed to query alert counts: %w", err)
	}
	stats.Active = stats.Total - stats.Resolved

	return stats, nil
}

// CleanupResolved deletes resolved alerts older than the cutoff and returns
// how many were removed. Unresolved alerts are never touched.
func (r *AlertRepository) CleanupResolved(cutoff time.Time) (int, error) {
	res, err := r.db.Exec(
		"DELETE FROM alerts WHERE resolved_at IS NOT NULL AND resolved_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up alerts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}

func (r *AlertRepository) scan(row rowScanner) (*models.Alert, error) {
	a := &models.Alert{}
	var severity, metricType string
	err := row.Scan(
		&a.ID, &a.BrandID, &a.AlertThresholdID, &severity, &a.Title,
		&a.Message, &metricType, &a.CurrentValue, &a.ThresholdValue,
		&a.IsAcknowledged, &a.AcknowledgedBy, &a.AcknowledgedAt,
		&a.ResolvedAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}
	a.Severity = models.Severity(severity)
	a.MetricType = models.MetricType(metricType)
	return a, nil
}
