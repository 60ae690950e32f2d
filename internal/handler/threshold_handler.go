package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/brandpulse/alerts-backend-go/internal/middleware"
	"github.com/brandpulse/alerts-backend-go/internal/models"
	"github.com/brandpulse/alerts-backend-go/internal/service"
	"github.com/brandpulse/alerts-backend-go/pkg/response"
)

// ThresholdHandler handles HTTP requests for alert thresholds
type ThresholdHandler struct {
	service *service.ThresholdService
}

// NewThresholdHandler creates a new threshold handler
func NewThresholdHandler(service *service.ThresholdService) *ThresholdHandler {
	return &ThresholdHandler{service: service}
}

// CreateThresholdRequest represents the request body for creating a threshold
type CreateThresholdRequest struct {
	BrandID        string   `json:"brand_id" binding:"required"`
	MetricType     string   `json:"metric_type" binding:"required"`
	ThresholdValue float64  `json:"threshold_value"`
	Operator       string   `json:"comparison_operator" binding:"required"`
	Channels       []string `json:"notification_channels" binding:"required,min=1"`
}

// Create creates a new threshold
// POST /api/v1/thresholds
func (h *ThresholdHandler) Create(c *gin.Context) {
	var req CreateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	t := &models.AlertThreshold{
		BrandID:        req.BrandID,
		UserID:         middleware.CallerID(c),
		MetricType:     models.MetricType(req.MetricType),
		ThresholdValue: req.ThresholdValue,
		Operator:       models.Operator(req.Operator),
		Channels:       toChannels(req.Channels),
	}

	if err := h.service.Create(t); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, t)
}

// Get retrieves a threshold by ID
// GET /api/v1/thresholds/:id
func (h *ThresholdHandler) Get(c *gin.Context) {
	t, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.NotFound(c, "Threshold not found")
		return
	}
	response.Success(c, t)
}

// List returns the caller's thresholds
// GET /api/v1/thresholds
func (h *ThresholdHandler) List(c *gin.Context) {
	thresholds, err := h.service.ListByUser(middleware.CallerID(c))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"thresholds": thresholds})
}

// UpdateThresholdRequest represents the request body for updating a threshold
type UpdateThresholdRequest struct {
	MetricType     string   `json:"metric_type" binding:"required"`
	ThresholdValue float64  `json:"threshold_value"`
	Operator       string   `json:"comparison_operator" binding:"required"`
	IsActive       *bool    `json:"is_active"`
	Channels       []string `json:"notification_channels" binding:"required,min=1"`
}

// Update rewrites a threshold
// PUT /api/v1/thresholds/:id
func (h *ThresholdHandler) Update(c *gin.Context) {
	var req UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	t, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.NotFound(c, "Threshold not found")
		return
	}

	t.MetricType = models.MetricType(req.MetricType)
	t.ThresholdValue = req.ThresholdValue
	t.Operator = models.Operator(req.Operator)
	t.Channels = toChannels(req.Channels)
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := h.service.Update(t); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, t)
}

// Delete deactivates a threshold (soft delete)
// DELETE /api/v1/thresholds/:id
func (h *ThresholdHandler) Delete(c *gin.Context) {
	if err := h.service.Deactivate(c.Param("id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Threshold not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "Threshold deactivated"})
}

func toChannels(names []string) []models.Channel {
	out := make([]models.Channel, 0, len(names))
	for _, n := range names {
		out = append(out, models.Channel(n))
	}
	return out
}
