package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Queue backend: "sqlite", "redis" or "memory"
	QueueBackend string
	RedisURL     string
	WorkerCount  int

	// SMTP settings for the email channel
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// SMS provider HTTP endpoint and credentials
	SMSAPIURL string
	SMSAPIKey string

	// Alerting policy knobs
	SuppressionWindow    time.Duration
	SuppressionTolerance float64
	FrequencyWindow      time.Duration
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", ":8080"),
		DBPath:    getEnv("DB_PATH", "./data/alerts/alerts.db"),
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		QueueBackend: getEnv("QUEUE_BACKEND", "sqlite"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		WorkerCount:  getEnvInt("WORKER_COUNT", 4),

		SMTPHost: getEnv("SMTP_HOST", "localhost"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		SMTPFrom: getEnv("SMTP_FROM", "alerts@brandpulse.io"),

		SMSAPIURL: getEnv("SMS_API_URL", ""),
		SMSAPIKey: getEnv("SMS_API_KEY", ""),

		SuppressionWindow:    getEnvDuration("SUPPRESSION_WINDOW", time.Hour),
		SuppressionTolerance: getEnvFloat("SUPPRESSION_TOLERANCE", 0.05),
		FrequencyWindow:      getEnvDuration("FREQUENCY_WINDOW", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
