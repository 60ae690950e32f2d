package service

import (
	"github.com/brandpulse/alerts-backend-go/internal/models"
	"github.com/brandpulse/alerts-backend-go/internal/repository"
)

// NotificationService exposes the delivery audit trail, aggregate
// statistics, the in-app inbox and preference management.
type NotificationService struct {
	deliveries *repository.DeliveryRepository
	prefs      *repository.PreferenceRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(deliveries *repository.DeliveryRepository, prefs *repository.PreferenceRepository) *NotificationService {
	return &NotificationService{deliveries: deliveries, prefs: prefs}
}

// History returns delivery records narrowed by filter, newest first
func (s *NotificationService) History(filter models.DeliveryFilter) ([]*models.NotificationDelivery, error) {
	return s.deliveries.List(filter)
}

// Statistics aggregates delivery counts by channel and status. An empty
// userID covers all users.
func (s *NotificationService) Statistics(userID string) (*models.DeliveryStats, error) {
	return s.deliveries.Statistics(userID)
}

// Inbox returns a user's in-app notifications, newest first
func (s *NotificationService) Inbox(userID string, limit, offset int) ([]*models.InAppNotification, error) {
	return s.deliveries.ListInApp(userID, limit, offset)
}

// MarkRead flags one in-app notification as read for the given user
func (s *NotificationService) MarkRead(notificationID, userID string) error {
	return s.deliveries.MarkRead(notificationID, userID)
}

// GetPreferences returns the user's delivery policy, creating defaults on
// first read.
func (s *NotificationService) GetPreferences(userID string) (*models.NotificationPreference, error) {
	return s.prefs.GetOrCreate(userID)
}

// UpdatePreferences rewrites the user's delivery policy. The row is
// created first when the user never had one.
func (s *NotificationService) UpdatePreferences(p *models.NotificationPreference) error {
	if _, err := s.prefs.GetOrCreate(p.UserID); err != nil {
		return err
	}
	return s.prefs.Update(p)
}
