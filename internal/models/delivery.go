package models

import "time"

// DeliveryStatus is the terminal outcome of one delivery attempt
type DeliveryStatus string

// Delivery statuses
const (
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
	StatusBounced   DeliveryStatus = "bounced"
)

// NotificationDelivery is an append-only audit record: one row per
// (alert, channel, user) delivery attempt, policy failures included.
type NotificationDelivery struct {
	ID           string         `json:"id" db:"id"`
	AlertID      string         `json:"alert_id" db:"alert_id"`
	UserID       string         `json:"user_id" db:"user_id"`
	Channel      Channel        `json:"channel" db:"channel"`
	Status       DeliveryStatus `json:"status" db:"status"`
	Recipient    string         `json:"recipient" db:"recipient"`
	Subject      *string        `json:"subject,omitempty" db:"subject"`
	Content      string         `json:"content" db:"content"`
	ErrorMessage *string        `json:"error_message,omitempty" db:"error_message"`
	SentAt       *time.Time     `json:"sent_at,omitempty" db:"sent_at"`
	DeliveredAt  *time.Time     `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// InAppNotification is a persisted in-app inbox entry, pushed to the user's
// live session on creation and markable as read.
type InAppNotification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	AlertID   string    `json:"alert_id" db:"alert_id"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Severity  Severity  `json:"severity" db:"severity"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DeliveryStats aggregates delivery counts by channel and status
type DeliveryStats struct {
	TotalSent   int                    `json:"total_sent"`
	ByChannel   map[Channel]int        `json:"by_channel"`
	ByStatus    map[DeliveryStatus]int `json:"by_status"`
	SuccessRate float64                `json:"success_rate"`
}

// DeliveryFilter narrows delivery history queries
type DeliveryFilter struct {
	UserID  string
	Channel *Channel
	Limit   int
	Offset  int
}
