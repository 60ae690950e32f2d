package service

import (
	"fmt"

	"github.com/brandpulse/alerts-backend-go/internal/models"
	"github.com/brandpulse/alerts-backend-go/internal/repository"
)

// ThresholdService handles threshold configuration business logic
type ThresholdService struct {
	thresholds *repository.ThresholdRepository
	users      *repository.UserRepository
}

// NewThresholdService creates a new threshold service
func NewThresholdService(thresholds *repository.ThresholdRepository, users *repository.UserRepository) *ThresholdService {
	return &ThresholdService{thresholds: thresholds, users: users}
}

var validMetrics = map[models.MetricType]bool{
	models.MetricOverallScore:       true,
	models.MetricRankingPosition:    true,
	models.MetricMentionFrequency:   true,
	models.MetricAverageSentiment:   true,
	models.MetricCitationCount:      true,
	models.MetricSourceQualityScore: true,
}

var validOperators = map[models.Operator]bool{
	models.OpGreater:      true,
	models.OpLess:         true,
	models.OpGreaterEqual: true,
	models.OpLessEqual:    true,
	models.OpEqual:        true,
}

var validChannels = map[models.Channel]bool{
	models.ChannelEmail:   true,
	models.ChannelSMS:     true,
	models.ChannelWebhook: true,
	models.ChannelInApp:   true,
}

// Create validates and persists a new threshold
func (s *ThresholdService) Create(t *models.AlertThreshold) error {
	if err := s.validate(t); err != nil {
		return err
	}
	if _, err := s.users.GetBrand(t.BrandID); err != nil {
		return fmt.Errorf("brand %s: %w", t.BrandID, err)
	}
	t.IsActive = true
	return s.thresholds.Create(t)
}

// Get retrieves one threshold
func (s *ThresholdService) Get(id string) (*models.AlertThreshold, error) {
	return s.thresholds.GetByID(id)
}

// ListByUser returns all thresholds owned by a user
func (s *ThresholdService) ListByUser(userID string) ([]*models.AlertThreshold, error) {
	return s.thresholds.ListByUser(userID)
}

// Update validates and rewrites a threshold
func (s *ThresholdService) Update(t *models.AlertThreshold) error {
	if err := s.validate(t); err != nil {
		return err
	}
	return s.thresholds.Update(t)
}

// Deactivate soft-deletes a threshold
func (s *ThresholdService) Deactivate(id string) error {
	return s.thresholds.Deactivate(id)
}

func (s *ThresholdService) validate(t *models.AlertThreshold) error {
	if !validMetrics[t.MetricType] {
		return fmt.Errorf("metric %q: %w", t.MetricType, models.ErrUnknownMetricType)
	}
	if !validOperators[t.Operator] {
		return fmt.Errorf("operator %q: %w", t.Operator, models.ErrUnknownOperator)
	}
	for _, c := range t.Channels {
		if !validChannels[c] {
			return fmt.Errorf("unsupported notification channel: %s", c)
		}
	}
	return nil
}
