package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	"github.com/brandpulse/alerts-backend-go/internal/api"
	"github.com/brandpulse/alerts-backend-go/internal/config"
	"github.com/brandpulse/alerts-backend-go/internal/database"
	"github.com/brandpulse/alerts-backend-go/internal/evaluator"
	"github.com/brandpulse/alerts-backend-go/internal/handler"
	"github.com/brandpulse/alerts-backend-go/internal/notify"
	"github.com/brandpulse/alerts-backend-go/internal/queue"
	"github.com/brandpulse/alerts-backend-go/internal/repository"
	"github.com/brandpulse/alerts-backend-go/internal/service"
	"github.com/brandpulse/alerts-backend-go/internal/ws"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	// 存储层
	thresholdRepo := repository.NewThresholdRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	userRepo := repository.NewUserRepository(db)

	// 任务队列
	jobs, err := buildQueue(cfg, db)
	if err != nil {
		log.Fatal("Failed to initialize job queue:", err)
	}
	defer jobs.Close()

	// 通知渠道
	hub := ws.NewHub()
	senders := []notify.Sender{
		notify.NewEmailSender(userRepo, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom),
		notify.NewSMSSender(userRepo, cfg.SMSAPIURL, cfg.SMSAPIKey),
		notify.NewWebhookSender(),
		notify.NewInAppSender(deliveryRepo, hub),
	}
	router := notify.NewRouter(prefRepo, deliveryRepo, senders, cfg.FrequencyWindow)

	// 评估管线
	suppressor := evaluator.NewSuppressor(alertRepo, cfg.SuppressionWindow, cfg.SuppressionTolerance)
	alertService := service.NewAlertService(thresholdRepo, alertRepo, userRepo, suppressor, jobs, router)
	thresholdService := service.NewThresholdService(thresholdRepo, userRepo)
	notificationService := service.NewNotificationService(deliveryRepo, prefRepo)

	// 启动工作池
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := queue.NewWorker(jobs, alertService.ProcessJob, cfg.WorkerCount)
	worker.Start(ctx)

	// 初始化路由
	engine := api.SetupRouter(cfg, api.Handlers{
		Thresholds:    handler.NewThresholdHandler(thresholdService),
		Alerts:        handler.NewAlertHandler(alertService),
		Notifications: handler.NewNotificationHandler(notificationService, hub),
	})

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := engine.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}

	worker.Wait()
}

// buildQueue selects the job queue backend from configuration
func buildQueue(cfg *config.Config, db *sql.DB) (queue.JobQueue, error) {
	switch cfg.QueueBackend {
	case "redis":
		return queue.NewRedisQueue(cfg.RedisURL)
	case "memory":
		return queue.NewMemoryQueue(), nil
	default:
		return queue.NewSQLiteQueue(db)
	}
}
