package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// DeliveryRepository handles database operations for the delivery audit
// trail and the in-app notification inbox.
type DeliveryRepository struct {
	db *sql.DB
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// Create appends a delivery record. Rows are never updated afterwards.
func (r *DeliveryRepository) Create(d *models.NotificationDelivery) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO notification_deliveries (
			id, alert_id, user_id, channel, status, recipient, subject,
			content, error_message, sent_at, delivered_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		d.ID, d.AlertID, d.UserID, string(d.Channel), string(d.Status),
		d.Recipient, d.Subject, d.Content, d.ErrorMessage,
		d.SentAt, d.DeliveredAt, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create delivery record: %w", err)
	}
	return nil
}

// List returns delivery records newest first, narrowed by filter
func (r *DeliveryRepository) List(filter models.DeliveryFilter) ([]*models.NotificationDelivery, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, alert_id, user_id, channel, status, recipient, subject,
			   content, error_message, sent_at, delivered_at, created_at
		FROM notification_deliveries
		WHERE 1=1
	`)
	var args []interface{}

	if filter.UserID != "" {
		sb.WriteString(" AND user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Channel != nil {
		sb.WriteString(" AND channel = ?")
		args = append(args, string(*filter.Channel))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	sb.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var out []*models.NotificationDelivery
	for rows.Next() {
		d := &models.NotificationDelivery{}
		var channel, status string
		err := rows.Scan(
			&d.ID, &d.AlertID, &d.UserID, &channel, &status, &d.Recipient,
			&d.Subject, &d.Content, &d.ErrorMessage, &d.SentAt,
			&d.DeliveredAt, &d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		d.Channel = models.Channel(channel)
		d.Status = models.DeliveryStatus(status)
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountRecentByUser counts notifications that actually went out to a user
// since the cutoff. Used by the frequency-cap policy check; failed and
// bounced rows are excluded so blocked attempts cannot keep the cap
// engaged past the window.
func (r *DeliveryRepository) CountRecentByUser(userID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM notification_deliveries
		 WHERE user_id = ? AND created_at >= ? AND status IN ('sent', 'delivered')`,
		userID, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent deliveries: %w", err)
	}
	return n, nil
}

// Statistics aggregates delivery counts by channel and status. An empty
// userID aggregates across all users.
func (r *DeliveryRepository) Statistics(userID string) (*models.DeliveryStats, error) {
	stats := &models.DeliveryStats{
		ByChannel: make(map[models.Channel]int),
		ByStatus:  make(map[models.DeliveryStatus]int),
	}

	query := "SELECT channel, status, COUNT(*) FROM notification_deliveries"
	var args []interface{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " GROUP BY channel, status"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery statistics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var channel, status string
		var n int
		if err := rows.Scan(&channel, &status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan delivery statistics: %w", err)
		}
		stats.ByChannel[models.Channel(channel)] += n
		stats.ByStatus[models.DeliveryStatus(status)] += n
		stats.TotalSent += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalSent > 0 {
		ok := stats.ByStatus[models.StatusSent] + stats.ByStatus[models.StatusDelivered]
		stats.SuccessRate = float64(ok) / float64(stats.TotalSent) * 100
	}
	return stats, nil
}

// CreateInApp appends an in-app inbox entry
func (r *DeliveryRepository) CreateInApp(n *models.InAppNotification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO in_app_notifications (
			id, user_id, alert_id, title, message, severity, is_read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`
	_, err := r.db.Exec(query,
		n.ID, n.UserID, n.AlertID, n.Title, n.Message, string(n.Severity),
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create in-app notification: %w", err)
	}
	return nil
}

// ListInApp returns a user's in-app notifications, newest first
func (r *DeliveryRepository) ListInApp(userID string, limit, offset int) ([]*models.InAppNotification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, user_id, alert_id, title, message, severity, is_read, created_at
		FROM in_app_notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list in-app notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.InAppNotification
	for rows.Next() {
		n := &models.InAppNotification{}
		var severity string
		err := rows.Scan(&n.ID, &n.UserID, &n.AlertID, &n.Title, &n.Message,
			&severity, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan in-app notification: %w", err)
		}
		n.Severity = models.Severity(severity)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags an in-app notification as read. The (id, user) pair must
// match an existing row.
func (r *DeliveryRepository) MarkRead(notificationID, userID string) error {
	res, err := r.db.Exec(
		"UPDATE in_app_notifications SET is_read = 1 WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireRow(res)
}
