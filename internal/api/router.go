package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brandpulse/alerts-backend-go/internal/config"
	"github.com/brandpulse/alerts-backend-go/internal/handler"
	"github.com/brandpulse/alerts-backend-go/internal/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Thresholds    *handler.ThresholdHandler
	Alerts        *handler.AlertHandler
	Notifications *handler.NotificationHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(300, time.Minute))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Alerts Backend API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		thresholds := api.Group("/thresholds")
		{
			thresholds.POST("", h.Thresholds.Create)
			thresholds.GET("", h.Thresholds.List)
			thresholds.GET("/:id", h.Thresholds.Get)
			thresholds.PUT("/:id", h.Thresholds.Update)
			thresholds.DELETE("/:id", h.Thresholds.Delete)
		}

		// 指标快照评估
		api.POST("/snapshots/evaluate", h.Alerts.EvaluateSnapshot)

		alerts := api.Group("/alerts")
		{
			alerts.GET("", h.Alerts.List)
			alerts.GET("/stats", h.Alerts.Statistics)
			alerts.POST("/cleanup", h.Alerts.Cleanup)
			alerts.GET("/:id", h.Alerts.Get)
			alerts.POST("/:id/acknowledge", h.Alerts.Acknowledge)
			alerts.POST("/:id/resolve", h.Alerts.Resolve)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.Notifications.History)
			notifications.GET("/stats", h.Notifications.Statistics)
			notifications.GET("/inbox", h.Notifications.Inbox)
			notifications.POST("/:id/read", h.Notifications.MarkRead)
		}

		preferences := api.Group("/preferences")
		{
			preferences.GET("/:userID", h.Notifications.GetPreferences)
			preferences.PUT("/:userID", h.Notifications.UpdatePreferences)
		}

		// 实时通知推送
		api.GET("/ws", h.Notifications.Stream)
	}

	return r
}
