package models

import "time"

// MetricSnapshot is a point-in-time reading of all monitored metrics for one
// brand. Snapshots are produced by the monitoring collaborator and consumed
// by the threshold evaluator; they are never persisted here.
type MetricSnapshot struct {
	BrandID            string    `json:"brand_id"`
	OverallScore       float64   `json:"overall_score"`
	RankingPosition    float64   `json:"ranking_position"`
	MentionFrequency   float64   `json:"mention_frequency"`
	AverageSentiment   float64   `json:"average_sentiment"`
	CitationCount      float64   `json:"citation_count"`
	SourceQualityScore float64   `json:"source_quality_score"`
	TakenAt            time.Time `json:"taken_at"`
}

// MetricValue extracts the field named by m. Returns ErrUnknownMetricType
// for metric types outside the supported set.
func (s *MetricSnapshot) MetricValue(m MetricType) (float64, error) {
	switch m {
	case MetricOverallScore:
		return s.OverallScore, nil
	case MetricRankingPosition:
		return s.RankingPosition, nil
	case MetricMentionFrequency:
		return s.MentionFrequency, nil
	case MetricAverageSentiment:
		return s.AverageSentiment, nil
	case MetricCitationCount:
		return s.CitationCount, nil
	case MetricSourceQualityScore:
		return s.SourceQualityScore, nil
	default:
		return 0, ErrUnknownMetricType
	}
}
