package notify

import (
	"context"
	"fmt"

	"github.com/brandpulse/alerts-backend-go/internal/models"
	"github.com/brandpulse/alerts-backend-go/internal/repository"
	"github.com/brandpulse/alerts-backend-go/internal/ws"
)

// InAppSender persists an inbox entry and pushes it to the recipient's live
// websocket sessions.
type InAppSender struct {
	deliveries *repository.DeliveryRepository
	hub        *ws.Hub
}

// NewInAppSender creates an in-app sender. hub may be nil when no live
// push is wanted (tests, batch tools); persistence alone still counts as
// delivered.
func NewInAppSender(deliveries *repository.DeliveryRepository, hub *ws.Hub) *InAppSender {
	return &InAppSender{deliveries: deliveries, hub: hub}
}

// Channel implements Sender
func (s *InAppSender) Channel() models.Channel { return models.ChannelInApp }

// Send writes the inbox row and publishes to topic "user-<id>". The
// delivery is considered complete once the row is persisted; the live push
// is best-effort.
func (s *InAppSender) Send(ctx context.Context, alert *models.Alert, pref *models.NotificationPreference) *SendResult {
	n := &models.InAppNotification{
		UserID:   pref.UserID,
		AlertID:  alert.ID,
		Title:    alert.Title,
		Message:  alert.Message,
		Severity: alert.Severity,
	}
	if err := s.deliveries.CreateInApp(n); err != nil {
		return failure(pref.UserID, alert.Message, fmt.Sprintf("In-app notification failed: %v", err))
	}

	if s.hub != nil {
		s.hub.Publish(fmt.Sprintf("user-%s", pref.UserID), &ws.Message{
			Event: "notification.created",
			Data:  n,
		})
	}

	return &SendResult{
		Status:      models.StatusDelivered,
		Recipient:   pref.UserID,
		Content:     alert.Message,
		DeliveredAt: now(),
	}
}
