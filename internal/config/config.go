package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	DBDriver    string
	DatabaseURL string

	// HTTP API
	HTTPPort int

	// Stats cache; empty RedisAddr disables it
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Model
	ModelConfigPath string
	PredictWorkers  int

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBDriver:    envStr("DB_DRIVER", "sqlite"),
		DatabaseURL: envStr("DATABASE_URL", "predictor.db"),

		HTTPPort: envInt("HTTP_PORT", 8080),

		RedisAddr:     envStr("REDIS_ADDR", ""),
		RedisPassword: envStr("REDIS_PASSWORD", ""),
		CacheTTL:      time.Duration(envInt("STATS_CACHE_TTL_SEC", 600)) * time.Second,

		ModelConfigPath: envStr("MODEL_CONFIG_PATH", ""),
		PredictWorkers:  envInt("PREDICT_WORKERS", 4),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
