package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/brandpulse/alerts-backend-go/internal/middleware"
	"github.com/brandpulse/alerts-backend-go/internal/models"
	"github.com/brandpulse/alerts-backend-go/internal/service"
	"github.com/brandpulse/alerts-backend-go/internal/ws"
	"github.com/brandpulse/alerts-backend-go/pkg/response"
)

// NotificationHandler handles HTTP requests for delivery history, delivery
// statistics, the in-app inbox and notification preferences.
type NotificationHandler struct {
	service *service.NotificationService
	hub     *ws.Hub
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *service.NotificationService, hub *ws.Hub) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub}
}

// History returns delivery records
// GET /api/v1/notifications?user_id=...&channel=...&limit=50&offset=0
func (h *NotificationHandler) History(c *gin.Context) {
	filter := models.DeliveryFilter{
		UserID: c.Query("user_id"),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if v := c.Query("channel"); v != "" {
		ch := models.Channel(v)
		filter.Channel = &ch
	}

	deliveries, err := h.service.History(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{
		"deliveries": deliveries,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	})
}

// Statistics returns delivery counts and the success rate
// GET /api/v1/notifications/stats?user_id=...
func (h *NotificationHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Query("user_id"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, stats)
}

// Inbox returns the caller's in-app notifications
// GET /api/v1/notifications/inbox
func (h *NotificationHandler) Inbox(c *gin.Context) {
	items, err := h.service.Inbox(middleware.CallerID(c), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"notifications": items})
}

// MarkRead flags one in-app notification as read
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Param("id"), middleware.CallerID(c)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Notification not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "Notification marked read"})
}

// GetPreferences returns a user's notification preferences, creating the
// default row on first read
// GET /api/v1/preferences/:userID
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	p, err := h.service.GetPreferences(c.Param("userID"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, p)
}

// UpdatePreferencesRequest represents the preference update body
type UpdatePreferencesRequest struct {
	EmailEnabled    bool    `json:"email_enabled"`
	SMSEnabled      bool    `json:"sms_enabled"`
	WebhookEnabled  bool    `json:"webhook_enabled"`
	InAppEnabled    bool    `json:"in_app_enabled"`
	QuietHoursStart *string `json:"quiet_hours_start"`
	QuietHoursEnd   *string `json:"quiet_hours_end"`
	FrequencyLimit  int     `json:"frequency_limit" binding:"min=0"`
	EmailAddress    *string `json:"email_address"`
	PhoneNumber     *string `json:"phone_number"`
	WebhookURL      *string `json:"webhook_url"`
}

// UpdatePreferences rewrites a user's notification preferences
// PUT /api/v1/preferences/:userID
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	p := &models.NotificationPreference{
		UserID:          c.Param("userID"),
		EmailEnabled:    req.EmailEnabled,
		SMSEnabled:      req.SMSEnabled,
		WebhookEnabled:  req.WebhookEnabled,
		InAppEnabled:    req.InAppEnabled,
		QuietHoursStart: req.QuietHoursStart,
		QuietHoursEnd:   req.QuietHoursEnd,
		FrequencyLimit:  req.FrequencyLimit,
		EmailAddress:    req.EmailAddress,
		PhoneNumber:     req.PhoneNumber,
		WebhookURL:      req.WebhookURL,
	}
	if err := h.service.UpdatePreferences(p); err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, p)
}

// Stream upgrades the connection and subscribes the caller to their live
// in-app notification topic
// GET /api/v1/ws
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := middleware.CallerID(c)
	if userID == "" {
		response.BadRequest(c, "Caller identity required")
		return
	}
	h.hub.Serve(c.Writer, c.Request, fmt.Sprintf("user-%s", userID))
}
