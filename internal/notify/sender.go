package notify

import (
	"context"
	"time"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// SendResult is the uniform outcome of one channel send attempt. Transport
// failures are encoded in Status/ErrorMessage rather than returned as
// errors, so one channel's failure never interrupts the fan-out.
type SendResult struct {
	Status       models.DeliveryStatus
	Recipient    string
	Subject      *string
	Content      string
	ErrorMessage *string
	SentAt       *time.Time
	DeliveredAt  *time.Time
}

// Sender delivers an alert over one channel. Implementations resolve the
// recipient address from the preference row or the user directory.
type Sender interface {
	Channel() models.Channel
	Send(ctx context.Context, alert *models.Alert, pref *models.NotificationPreference) *SendResult
}

// failure builds a failed result with the given cause
func failure(recipient, content, cause string) *SendResult {
	return &SendResult{
		Status:       models.StatusFailed,
		Recipient:    recipient,
		Content:      content,
		ErrorMessage: &cause,
	}
}

func now() *time.Time {
	t := time.Now().UTC()
	return &t
}
