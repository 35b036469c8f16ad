package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	GRPCPort              int
	GRPCReflectionEnabled bool
	CacheTTL              time.Duration
	SurveyConfigPath      string
	MaxUploadBytes        int
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	port, err := strconv.Atoi(getEnv("GRPC_PORT", "50051"))
	if err != nil {
		port = 50051
	}

	reflection, err := strconv.ParseBool(getEnv("GRPC_REFLECTION_ENABLED", "false"))
	if err != nil {
		reflection = false
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "30m"))
	if err != nil || ttl <= 0 {
		ttl = 30 * time.Minute
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		redisDB = 0
	}

	uploadMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "64"))
	if err != nil || uploadMB <= 0 {
		uploadMB = 64
	}

	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/runs.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               redisDB,
		GRPCPort:              port,
		GRPCReflectionEnabled: reflection,
		CacheTTL:              ttl,
		SurveyConfigPath:      getEnv("SURVEY_CONFIG", ""),
		MaxUploadBytes:        uploadMB << 20,
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
