package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brandpulse/alerts-backend-go/internal/evaluator"
	"github.com/brandpulse/alerts-backend-go/internal/models"
	"github.com/brandpulse/alerts-backend-go/internal/notify"
	"github.com/brandpulse/alerts-backend-go/internal/queue"
	"github.com/brandpulse/alerts-backend-go/internal/repository"
)

// AlertService runs the evaluation pipeline and the alert lifecycle:
// snapshot -> evaluate per threshold -> suppress duplicates -> persist ->
// enqueue, and on the worker side: dequeue -> route to channels.
type AlertService struct {
	thresholds *repository.ThresholdRepository
	alerts     *repository.AlertRepository
	users      *repository.UserRepository
	suppressor *evaluator.Suppressor
	jobs       queue.JobQueue
	router     *notify.Router
}

// NewAlertService wires the evaluation pipeline
func NewAlertService(
	thresholds *repository.ThresholdRepository,
	alerts *repository.AlertRepository,
	users *repository.UserRepository,
	suppressor *evaluator.Suppressor,
	jobs queue.JobQueue,
	router *notify.Router,
) *AlertService {
	return &AlertService{
		thresholds: thresholds,
		alerts:     alerts,
		users:      users,
		suppressor: suppressor,
		jobs:       jobs,
		router:     router,
	}
}

// EvaluateSnapshot runs every active threshold for the snapshot's brand.
// A threshold whose evaluation fails (unknown metric or operator) is
// skipped with a log line; it never aborts the rest of the batch.
// Triggered, non-suppressed evaluations create an Alert and enqueue a
// processing job. Enqueue failures are logged, not surfaced: delivery is
// fire-and-forget from the evaluator's perspective.
func (s *AlertService) EvaluateSnapshot(ctx context.Context, snapshot *models.MetricSnapshot) ([]*models.EvaluationResult, error) {
	thresholds, err := s.thresholds.ListActiveByBrand(snapshot.BrandID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thresholds: %w", err)
	}

	results := make([]*models.EvaluationResult, 0, len(thresholds))
	for _, t := range thresholds {
		result, err := evaluator.Evaluate(t, snapshot)
		if err != nil {
			log.Printf("Skipping threshold %s: %v", t.ID, err)
			continue
		}

		if result.Triggered {
			if err := s.raiseAlert(ctx, result); err != nil {
				log.Printf("Failed to raise alert for threshold %s: %v", t.ID, err)
			}
		}
		results = append(results, result)
	}

	return results, nil
}

// raiseAlert runs the suppression check and, when the evaluation is not a
// duplicate, persists the alert and enqueues its processing job. The
// per-key lock closes the check-then-create race between parallel
// evaluations of the same threshold.
func (s *AlertService) raiseAlert(ctx context.Context, result *models.EvaluationResult) error {
	t := result.Threshold

	unlock := s.suppressor.Guard(t.BrandID, t.MetricType, t.ThresholdValue)
	defer unlock()

	if s.suppressor.IsDuplicate(t.BrandID, t.MetricType, t.ThresholdValue) {
		result.Suppressed = true
		return nil
	}

	alert, err := s.CreateAlert(t, result.CurrentValue, result.Severity)
	if err != nil {
		return err
	}
	result.Alert = alert

	job := &queue.Job{
		AlertID:  alert.ID,
		BrandID:  alert.BrandID,
		Severity: string(alert.Severity),
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		log.Printf("Failed to enqueue job for alert %s: %v", alert.ID, err)
	}
	return nil
}

// CreateAlert builds and persists the alert record for a triggered
// threshold. Fails with ErrNotFound when the referenced brand is unknown.
func (s *AlertService) CreateAlert(t *models.AlertThreshold, currentValue float64, severity models.Severity) (*models.Alert, error) {
	brand, err := s.users.GetBrand(t.BrandID)
	if err != nil {
		return nil, fmt.Errorf("brand %s: %w", t.BrandID, err)
	}

	metricName := models.MetricDisplayName(t.MetricType)
	title := fmt.Sprintf("%s Alert - %s", metricName, models.SeverityLabel(severity))
	message := fmt.Sprintf(
		"%s has %s threshold.\n\nBrand: %s\nCurrent value: %.2f\nThreshold: %.2f (%s %.2f)",
		metricName, evaluator.OperatorPhrase(t.Operator),
		brand.Name, currentValue, t.ThresholdValue, t.Operator, t.ThresholdValue,
	)

	alert := &models.Alert{
		BrandID:          t.BrandID,
		AlertThresholdID: t.ID,
		Severity:         severity,
		Title:            title,
		Message:          message,
		MetricType:       t.MetricType,
		CurrentValue:     currentValue,
		ThresholdValue:   t.ThresholdValue,
	}
	if err := s.alerts.Create(alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// ProcessJob handles one dequeued alert job: load the alert and its
// threshold, then fan out to the configured channels sequentially.
// A returned error makes the worker retry the whole job.
func (s *AlertService) ProcessJob(ctx context.Context, job *queue.Job) error {
	alert, err := s.alerts.GetByID(job.AlertID)
	if err != nil {
		return fmt.Errorf("failed to load alert %s: %w", job.AlertID, err)
	}
	threshold, err := s.thresholds.GetByID(alert.AlertThresholdID)
	if err != nil {
		return fmt.Errorf("failed to load threshold %s: %w", alert.AlertThresholdID, err)
	}

	for _, channel := range threshold.Channels {
		delivery, err := s.router.Dispatch(ctx, alert, threshold.UserID, channel)
		if err != nil {
			return fmt.Errorf("failed to dispatch %s notification: %w", channel, err)
		}
		if delivery.Status == models.StatusFailed && delivery.ErrorMessage != nil {
			log.Printf("Delivery failed for alert %s on %s: %s", alert.ID, channel, *delivery.ErrorMessage)
		}
	}
	return nil
}

// Acknowledge marks an alert acknowledged by the given user
func (s *AlertService) Acknowledge(alertID, userID string) error {
	return s.alerts.Acknowledge(alertID, userID)
}

// Resolve marks an alert resolved
func (s *AlertService) Resolve(alertID string) error {
	return s.alerts.Resolve(alertID)
}

// GetAlert retrieves one alert
func (s *AlertService) GetAlert(alertID string) (*models.Alert, error) {
	return s.alerts.GetByID(alertID)
}

// ListAlerts returns a brand's alerts narrowed by filter
func (s *AlertService) ListAlerts(brandID string, filter models.AlertFilter) ([]*models.Alert, error) {
	return s.alerts.List(brandID, filter)
}

// Statistics aggregates a brand's alert counts
func (s *AlertService) Statistics(brandID string) (*models.AlertStats, error) {
	return s.alerts.Statistics(brandID)
}

// CleanupOldAlerts deletes alerts resolved more than daysOld days ago and
// returns how many were removed.
func (s *AlertService) CleanupOldAlerts(daysOld int) (int, error) {
	if daysOld <= 0 {
		daysOld = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -daysOld)
	return s.alerts.CleanupResolved(cutoff)
}
