package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brandpulse/alerts-backend-go/internal/middleware"
	"github.com/brandpulse/alerts-backend-go/internal/models"
	"github.com/brandpulse/alerts-backend-go/internal/service"
	"github.com/brandpulse/alerts-backend-go/pkg/response"
)

// AlertHandler handles HTTP requests for alerts and snapshot evaluation
type AlertHandler struct {
	service *service.AlertService
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(service *service.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// EvaluateSnapshotRequest represents an incoming metric snapshot
type EvaluateSnapshotRequest struct {
	BrandID            string  `json:"brand_id" binding:"required"`
	OverallScore       float64 `json:"overall_score"`
	RankingPosition    float64 `json:"ranking_position"`
	MentionFrequency   float64 `json:"mention_frequency"`
	AverageSentiment   float64 `json:"average_sentiment"`
	CitationCount      float64 `json:"citation_count"`
	SourceQualityScore float64 `json:"source_quality_score"`
}

// EvaluateSnapshot runs all active thresholds against the posted snapshot
// POST /api/v1/snapshots/evaluate
func (h *AlertHandler) EvaluateSnapshot(c *gin.Context) {
	var req EvaluateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snapshot := &models.MetricSnapshot{
		BrandID:            req.BrandID,
		OverallScore:       req.OverallScore,
		RankingPosition:    req.RankingPosition,
		MentionFrequency:   req.MentionFrequency,
		AverageSentiment:   req.AverageSentiment,
		CitationCount:      req.CitationCount,
		SourceQualityScore: req.SourceQualityScore,
	}

	results, err := h.service.EvaluateSnapshot(c.Request.Context(), snapshot)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"results": results})
}

// List returns a brand's alerts
// GET /api/v1/alerts?brand_id=...&severity=...&acknowledged=...&resolved=...
func (h *AlertHandler) List(c *gin.Context) {
	brandID := c.Query("brand_id")
	if brandID == "" {
		response.BadRequest(c, "brand_id is required")
		return
	}

	filter := models.AlertFilter{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if v := c.Query("severity"); v != "" {
		sev := models.Severity(v)
		filter.Severity = &sev
	}
	if v := c.Query("acknowledged"); v != "" {
		b := v == "true"
		filter.Acknowledged = &b
	}
	if v := c.Query("resolved"); v != "" {
		b := v == "true"
		filter.Resolved = &b
	}

	alerts, err := h.service.ListAlerts(brandID, filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{
		"alerts": alerts,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Get retrieves one alert
// GET /api/v1/alerts/:id
func (h *AlertHandler) Get(c *gin.Context) {
	alert, err := h.service.GetAlert(c.Param("id"))
	if err != nil {
		response.NotFound(c, "Alert not found")
		return
	}
	response.Success(c, alert)
}

// Acknowledge marks an alert acknowledged by the caller
// POST /api/v1/alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	userID := middleware.CallerID(c)
	if userID == "" {
		response.BadRequest(c, "Caller identity required")
		return
	}

	if err := h.service.Acknowledge(c.Param("id"), userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Alert not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "Alert acknowledged"})
}

// Resolve marks an alert resolved
// POST /api/v1/alerts/:id/resolve
func (h *AlertHandler) Resolve(c *gin.Context) {
	if err := h.service.Resolve(c.Param("id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Alert not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "Alert resolved"})
}

// Statistics returns a brand's alert counts
// GET /api/v1/alerts/stats?brand_id=...
func (h *AlertHandler) Statistics(c *gin.Context) {
	brandID := c.Query("brand_id")
	if brandID == "" {
		response.BadRequest(c, "brand_id is required")
		return
	}

	stats, err := h.service.Statistics(brandID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, stats)
}

// Cleanup deletes resolved alerts older than the given number of days
// POST /api/v1/alerts/cleanup?days=30
func (h *AlertHandler) Cleanup(c *gin.Context) {
	days := queryInt(c, "days", 30)
	deleted, err := h.service.CleanupOldAlerts(days)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// queryInt reads an integer query parameter with a fallback
func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
