package models

import "time"

// MetricType identifies which field of a MetricSnapshot a threshold watches
type MetricType string

// Supported metric types
const (
	MetricOverallScore       MetricType = "overall_score"
	MetricRankingPosition    MetricType = "ranking_position"
	MetricMentionFrequency   MetricType = "mention_frequency"
	MetricAverageSentiment   MetricType = "average_sentiment"
	MetricCitationCount      MetricType = "citation_count"
	MetricSourceQualityScore MetricType = "source_quality_score"
)

// Operator is the comparison applied between current and threshold value
type Operator string

// Supported comparison operators
const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "="
)

// AlertThreshold represents a recipient-configured alerting rule for a brand metric
type AlertThreshold struct {
	ID             string     `json:"id" db:"id"`
	BrandID        string     `json:"brand_id" db:"brand_id"`
	UserID         string     `json:"user_id" db:"user_id"`
	MetricType     MetricType `json:"metric_type" db:"metric_type"`
	ThresholdValue float64    `json:"threshold_value" db:"threshold_value"`
	Operator       Operator   `json:"comparison_operator" db:"comparison_operator"`
	IsActive       bool       `json:"is_active" db:"is_active"`

	// Channels to notify when the threshold fires, in dispatch order.
	// Stored as a JSON array column.
	Channels []Channel `json:"notification_channels" db:"notification_channels"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MetricDisplayName returns the human-readable name used in alert titles and messages
func MetricDisplayName(m MetricType) string {
	switch m {
	case MetricOverallScore:
		return "Overall Score"
	case MetricRankingPosition:
		return "Ranking Position"
	case MetricMentionFrequency:
		return "Mention Frequency"
	case MetricAverageSentiment:
		return "Average Sentiment"
	case MetricCitationCount:
		return "Citation Count"
	case MetricSourceQualityScore:
		return "Source Quality Score"
	default:
		return string(m)
	}
}
