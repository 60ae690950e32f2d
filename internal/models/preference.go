package models

import "time"

// Channel names a notification delivery mechanism
type Channel string

// Supported notification channels
const (
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelWebhook Channel = "webhook"
	ChannelInApp   Channel = "in_app"
)

// NotificationPreference holds one user's delivery policy: which channels
// are enabled, an optional quiet-hours window (local HH:MM, may wrap past
// midnight) and a per-hour frequency cap. One row per user, lazily created
// with defaults on first read.
type NotificationPreference struct {
	UserID          string  `json:"user_id" db:"user_id"`
	EmailEnabled    bool    `json:"email_enabled" db:"email_enabled"`
	SMSEnabled      bool    `json:"sms_enabled" db:"sms_enabled"`
	WebhookEnabled  bool    `json:"webhook_enabled" db:"webhook_enabled"`
	InAppEnabled    bool    `json:"in_app_enabled" db:"in_app_enabled"`
	QuietHoursStart *string `json:"quiet_hours_start,omitempty" db:"quiet_hours_start"`
	QuietHoursEnd   *string `json:"quiet_hours_end,omitempty" db:"quiet_hours_end"`
	FrequencyLimit  int     `json:"frequency_limit" db:"frequency_limit"`

	// Channel addresses
	EmailAddress *string `json:"email_address,omitempty" db:"email_address"`
	PhoneNumber  *string `json:"phone_number,omitempty" db:"phone_number"`
	WebhookURL   *string `json:"webhook_url,omitempty" db:"webhook_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultPreference returns the policy applied to users who never saved one:
// email and in-app on, SMS and webhook off, 10 notifications per hour.
func DefaultPreference(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:         userID,
		EmailEnabled:   true,
		SMSEnabled:     false,
		WebhookEnabled: false,
		InAppEnabled:   true,
		FrequencyLimit: 10,
	}
}

// ChannelEnabled reports whether the given channel is switched on
func (p *NotificationPreference) ChannelEnabled(c Channel) bool {
	switch c {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelSMS:
		return p.SMSEnabled
	case ChannelWebhook:
		return p.WebhookEnabled
	case ChannelInApp:
		return p.InAppEnabled
	default:
		return false
	}
}
