package evaluator

import (
	"math"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// severityBand holds the lower bounds (percentage deviation from the
// threshold) for medium, high and critical. Anything below medium is low.
type severityBand struct {
	medium   float64
	high     float64
	critical float64
}

// Bands are tuned per metric: a 10% swing in overall score is a bigger deal
// than a 10% swing in ranking position.
var severityBands = map[models.MetricType]severityBand{
	models.MetricOverallScore:       {medium: 5, high: 15, critical: 30},
	models.MetricRankingPosition:    {medium: 20, high: 50, critical: 100},
	models.MetricAverageSentiment:   {medium: 15, high: 35, critical: 70},
	models.MetricMentionFrequency:   {medium: 25, high: 60, critical: 120},
}

var defaultBand = severityBand{medium: 10, high: 25, critical: 50}

// classifySeverity maps the percentage gap between current and threshold
// value onto a severity level using per-metric bands. A zero threshold is
// treated as a 100% deviation.
func classifySeverity(metric models.MetricType, current, threshold float64) models.Severity {
	var pct float64
	if threshold == 0 {
		pct = 100
	} else {
		pct = math.Abs(current-threshold) / math.Abs(threshold) * 100
	}

	band, ok := severityBands[metric]
	if !ok {
		band = defaultBand
	}

	switch {
	case pct >= band.critical:
		return models.SeverityCritical
	case pct >= band.high:
		return models.SeverityHigh
	case pct >= band.medium:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
