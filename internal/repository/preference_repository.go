package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// PreferenceRepository handles database operations for notification preferences
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

const preferenceColumns = `user_id, email_enabled, sms_enabled, webhook_enabled,
	in_app_enabled, quiet_hours_start, quiet_hours_end, frequency_limit,
	email_address, phone_number, webhook_url, created_at, updated_at`

// GetOrCreate returns the user's preference row, creating it with defaults
// on first read.
func (r *PreferenceRepository) GetOrCreate(userID string) (*models.NotificationPreference, error) {
	p, err := r.get(userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	p = models.DefaultPreference(userID)
	if err := r.insert(p); err != nil {
		// Lost a create race: another worker inserted first, read theirs.
		if existing, getErr := r.get(userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return p, nil
}

// Update rewrites a user's preference row
func (r *PreferenceRepository) Update(p *models.NotificationPreference) error {
	p.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE notification_preferences
		SET email_enabled = ?, sms_enabled = ?, webhook_enabled = ?,
			in_app_enabled = ?, quiet_hours_start = ?, quiet_hours_end = ?,
			frequency_limit = ?, email_address = ?, phone_number = ?,
			webhook_url = ?, updated_at = ?
		WHERE user_id = ?
	`
	res, err := r.db.Exec(query,
		p.EmailEnabled, p.SMSEnabled, p.WebhookEnabled, p.InAppEnabled,
		p.QuietHoursStart, p.QuietHoursEnd, p.FrequencyLimit,
		p.EmailAddress, p.PhoneNumber, p.WebhookURL, p.UpdatedAt, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update preference: %w", err)
	}
	return requireRow(res)
}

func (r *PreferenceRepository) get(userID string) (*models.NotificationPreference, error) {
	query := "SELECT " + preferenceColumns + " FROM notification_preferences WHERE user_id = ?"
	p := &models.NotificationPreference{}
	err := r.db.QueryRow(query, userID).Scan(
		&p.UserID, &p.EmailEnabled, &p.SMSEnabled, &p.WebhookEnabled,
		&p.InAppEnabled, &p.QuietHoursStart, &p.QuietHoursEnd,
		&p.FrequencyLimit, &p.EmailAddress, &p.PhoneNumber, &p.WebhookURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan preference: %w", err)
	}
	return p, nil
}

func (r *PreferenceRepository) insert(p *models.NotificationPreference) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	query := `
		INSERT INTO notification_preferences (` + preferenceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		p.UserID, p.EmailEnabled, p.SMSEnabled, p.WebhookEnabled,
		p.InAppEnabled, p.QuietHoursStart, p.QuietHoursEnd,
		p.FrequencyLimit, p.EmailAddress, p.PhoneNumber, p.WebhookURL,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create preference: %w", err)
	}
	return nil
}
