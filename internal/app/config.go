package app

import (
	"os"
	"time"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string

	HTTPAddr          string
	RBACModelPath     string
	PaystubArchiveDir string
	OutboxPollEvery   time.Duration
}

func LoadConfig() Config {
	return Config{
		DBHost:     envOr("DB_HOST", "localhost"),
		DBUser:     envOr("DB_USER", "postgres"),
		DBPassword: envOr("DB_PASSWORD", "postgres"),
		DBName:     envOr("DB_NAME", "payroll"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBSSLMode:  envOr("DB_SSLMODE", "disable"),

		RedisAddr:   envOr("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: envOr("KAFKA_BROKER", "localhost:9092"),

		HTTPAddr:          ":" + envOr("HTTP_PORT", "8080"),
		RBACModelPath:     envOr("RBAC_MODEL_PATH", "internal/rbac/infra/model.conf"),
		PaystubArchiveDir: envOr("PAYSTUB_ARCHIVE_DIR", "./paystubs"),
		OutboxPollEvery:   durationOr("OUTBOX_POLL_INTERVAL", 3*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
