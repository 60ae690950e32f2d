package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// ThresholdRepository handles database operations for alert thresholds
type ThresholdRepository struct {
	db *sql.DB
}

// NewThresholdRepository creates a new threshold repository
func NewThresholdRepository(db *sql.DB) *ThresholdRepository {
	return &ThresholdRepository{db: db}
}

// Create inserts a new threshold and assigns its ID
func (r *ThresholdRepository) Create(t *models.AlertThreshold) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	channels, err := json.Marshal(t.Channels)
	if err != nil {
		return fmt.Errorf("failed to serialize channels: %w", err)
	}

	query := `
		INSERT INTO alert_thresholds (
			id, brand_id, user_id, metric_type, threshold_value,
			comparison_operator, is_active, notification_channels,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		t.ID, t.BrandID, t.UserID, string(t.MetricType), t.ThresholdValue,
		string(t.Operator), t.IsActive, string(channels),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create threshold: %w", err)
	}
	return nil
}

// GetByID retrieves a threshold by ID
func (r *ThresholdRepository) GetByID(id string) (*models.AlertThreshold, error) {
	query := `
		SELECT id, brand_id, user_id, metric_type, threshold_value,
			   comparison_operator, is_active, notification_channels,
			   created_at, updated_at
		FROM alert_thresholds
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// ListActiveByBrand returns all active thresholds for a brand
func (r *ThresholdRepository) ListActiveByBrand(brandID string) ([]*models.AlertThreshold, error) {
	query := `
		SELECT id, brand_id, user_id, metric_type, threshold_value,
			   comparison_operator, is_active, notification_channels,
			   created_at, updated_at
		FROM alert_thresholds
		WHERE brand_id = ? AND is_active = 1
		ORDER BY created_at
	`
	rows, err := r.db.Query(query, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to list thresholds: %w", err)
	}
	defer rows.Close()

	var out []*models.AlertThreshold
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListByUser returns all thresholds owned by a user, active or not
func (r *ThresholdRepository) ListByUser(userID string) ([]*models.AlertThreshold, error) {
	query := `
		SELECT id, brand_id, user_id, metric_type, threshold_value,
			   comparison_operator, is_active, notification_channels,
			   created_at, updated_at
		FROM alert_thresholds
		WHERE user_id = ?
		ORDER BY created_at
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list thresholds: %w", err)
	}
	defer rows.Close()

	var out []*models.AlertThreshold
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a threshold
func (r *ThresholdRepository) Update(t *models.AlertThreshold) error {
	channels, err := json.Marshal(t.Channels)
	if err != nil {
		return fmt.Errorf("failed to serialize channels: %w", err)
	}
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE alert_thresholds
		SET metric_type = ?, threshold_value = ?, comparison_operator = ?,
			is_active = ?, notification_channels = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.Exec(query,
		string(t.MetricType), t.ThresholdValue, string(t.Operator),
		t.IsActive, string(channels), t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update threshold: %w", err)
	}
	return requireRow(res)
}

// Deactivate soft-deletes a threshold. Thresholds are never hard-deleted
// while alerts reference them.
func (r *ThresholdRepository) Deactivate(id string) error {
	res, err := r.db.Exec(
		"UPDATE alert_thresholds SET is_active = 0, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate threshold: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ThresholdRepository) scanOne(row *sql.Row) (*models.AlertThreshold, error) {
	t, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return t, err
}

func (r *ThresholdRepository) scan(row rowScanner) (*models.AlertThreshold, error) {
	t := &models.AlertThreshold{}
	var metricType, operator, channels string
	err := row.Scan(
		&t.ID, &t.BrandID, &t.UserID, &metricType, &t.ThresholdValue,
		&operator, &t.IsActive, &channels, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan threshold: %w", err)
	}
	t.MetricType = models.MetricType(metricType)
	t.Operator = models.Operator(operator)
	if err := json.Unmarshal([]byte(channels), &t.Channels); err != nil {
		return nil, fmt.Errorf("failed to parse channels: %w", err)
	}
	return t, nil
}

// requireRow converts a zero-row UPDATE/DELETE result into ErrNotFound
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
