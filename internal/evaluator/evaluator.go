package evaluator

import (
	"fmt"
	"math"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// equalityTolerance is the float tolerance applied by the "=" operator
const equalityTolerance = 0.01

// Evaluate compares one metric snapshot against one threshold and returns
// the typed result. Severity is always computed, even when the threshold
// did not trigger, so callers can surface near-misses for diagnostics.
// The result's Alert field is left nil; persisting an alert is the caller's
// concern after the suppression check.
func Evaluate(threshold *models.AlertThreshold, snapshot *models.MetricSnapshot) (*models.EvaluationResult, error) {
	current, err := snapshot.MetricValue(threshold.MetricType)
	if err != nil {
		return nil, fmt.Errorf("metric %q: %w", threshold.MetricType, err)
	}

	triggered, err := compare(current, threshold.ThresholdValue, threshold.Operator)
	if err != nil {
		return nil, fmt.Errorf("operator %q: %w", threshold.Operator, err)
	}

	return &models.EvaluationResult{
		Triggered:    triggered,
		Threshold:    threshold,
		CurrentValue: current,
		Severity:     classifySeverity(threshold.MetricType, current, threshold.ThresholdValue),
	}, nil
}

// compare applies the comparison operator. "=" uses a small tolerance
// instead of exact float equality.
func compare(current, threshold float64, op models.Operator) (bool, error) {
	switch op {
	case models.OpGreater:
		return current > threshold, nil
	case models.OpLess:
		return current < threshold, nil
	case models.OpGreaterEqual:
		return current >= threshold, nil
	case models.OpLessEqual:
		return current <= threshold, nil
	case models.OpEqual:
		return math.Abs(current-threshold) < equalityTolerance, nil
	default:
		return false, models.ErrUnknownOperator
	}
}

// OperatorPhrase renders the operator for alert messages
func OperatorPhrase(op models.Operator) string {
	switch op {
	case models.OpGreater:
		return "exceeded"
	case models.OpLess:
		return "dropped below"
	case models.OpGreaterEqual:
		return "reached or exceeded"
	case models.OpLessEqual:
		return "fallen to or below"
	case models.OpEqual:
		return "hit"
	default:
		return "crossed"
	}
}
