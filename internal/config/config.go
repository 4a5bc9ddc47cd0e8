package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Content
	ContentSource   string // "postgres" | "api"
	ContentAPIURL   string
	ContentCacheTTL time.Duration

	// Trust-score / XP service
	TrustAPIURL        string
	TrustServiceSecret string
	RewardWorkers      int

	// Sessions
	SessionIdleTTL  time.Duration
	CatalogPageSize int

	// Seed importer
	YouTubeLookup bool

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		DatabaseURL:        getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:           mustGetEnv("REDIS_URL"),
		ContentSource:      getEnvOrDefault("CONTENT_SOURCE", "postgres"),
		ContentAPIURL:      getEnvOrDefault("CONTENT_API_URL", ""),
		ContentCacheTTL:    getEnvAsDurationOrDefault("CONTENT_CACHE_TTL", 10*time.Minute),
		TrustAPIURL:        getEnvOrDefault("TRUST_API_URL", ""),
		TrustServiceSecret: getEnvOrDefault("TRUST_SERVICE_SECRET", ""),
		RewardWorkers:      getEnvAsIntOrDefault("REWARD_WORKERS", 3),
		SessionIdleTTL:     getEnvAsDurationOrDefault("SESSION_IDLE_TTL", 2*time.Hour),
		CatalogPageSize:    getEnvAsIntOrDefault("CATALOG_PAGE_SIZE", 6),
		YouTubeLookup:      getEnvAsBoolOrDefault("YOUTUBE_LOOKUP", false),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	switch cfg.ContentSource {
	case "postgres":
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required when CONTENT_SOURCE=postgres")
		}
	case "api":
		if cfg.ContentAPIURL == "" {
			panic("CONTENT_API_URL is required when CONTENT_SOURCE=api")
		}
	default:
		panic(fmt.Sprintf("CONTENT_SOURCE must be postgres or api, got %q", cfg.ContentSource))
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
