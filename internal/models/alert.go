package models

import "time"

// Severity classifies how far a metric deviated from its threshold
type Severity string

// Severity levels, ordered low to critical
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityRank maps severity to queue priority: lower number, higher priority
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 1
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 3
	default:
		return 4
	}
}

// SeverityLabel returns the capitalized label used in titles and subjects
func SeverityLabel(s Severity) string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// Alert is a persisted record of a triggered, non-suppressed threshold breach.
// Created exactly once per breach; mutated only by acknowledge/resolve.
type Alert struct {
	ID               string     `json:"id" db:"id"`
	BrandID          string     `json:"brand_id" db:"brand_id"`
	AlertThresholdID string     `json:"alert_threshold_id" db:"alert_threshold_id"`
	Severity         Severity   `json:"severity" db:"severity"`
	Title            string     `json:"title" db:"title"`
	Message          string     `json:"message" db:"message"`
	MetricType       MetricType `json:"metric_type" db:"metric_type"`
	CurrentValue     float64    `json:"current_value" db:"current_value"`
	ThresholdValue   float64    `json:"threshold_value" db:"threshold_value"`
	IsAcknowledged   bool       `json:"is_acknowledged" db:"is_acknowledged"`
	AcknowledgedBy   *string    `json:"acknowledged_by,omitempty" db:"acknowledged_by"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// EvaluationResult is the ephemeral outcome of evaluating one threshold
// against one snapshot. Severity is always computed, even when not
// triggered; Alert is populated only when triggered and not suppressed.
type EvaluationResult struct {
	Triggered    bool            `json:"triggered"`
	Threshold    *AlertThreshold `json:"threshold"`
	CurrentValue float64         `json:"current_value"`
	Severity     Severity        `json:"severity"`
	Suppressed   bool            `json:"suppressed"`
	Alert        *Alert          `json:"alert,omitempty"`
}

// AlertStats aggregates alert counts for a brand
type AlertStats struct {
	Total        int              `json:"total"`
	BySeverity   map[Severity]int `json:"by_severity"`
	Acknowledged int              `json:"acknowledged"`
	Resolved     int              `json:"resolved"`
	Active       int              `json:"active"`
}

// AlertFilter narrows alert list queries
type AlertFilter struct {
	Severity     *Severity
	Acknowledged *bool
	Resolved     *bool
	Limit        int
	Offset       int
}
