package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	AdminUser     string
	AdminPassword string

	DatabaseURL string

	ListenAddr string

	// AdminAPIKey is the bootstrap bearer token for admin endpoints
	// (batch recompute, seeding). If empty, no bootstrap key is created.
	AdminAPIKey string

	// RetentionDays is how long access events are kept before the retention
	// worker deletes them. Zero (the default) means unbounded retention,
	// which matches the historical behavior of this pipeline; set it only
	// when an explicit expiry policy is wanted.
	RetentionDays int

	// RecordTimeout bounds each detached access-recording call so a slow
	// store cannot stall indefinitely behind a search response.
	RecordTimeout time.Duration
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		AdminUser:     getenv("APP_ADMIN_USER", "admin"),
		AdminPassword: getenv("APP_ADMIN_PASSWORD", "changeme"),
		DatabaseURL:   os.Getenv("APP_DATABASE_URL"),
		ListenAddr:    getenv("APP_LISTEN_ADDR", ":8080"),
		AdminAPIKey:   getenv("APP_ADMIN_API_KEY", ""),
		RetentionDays: 0,
		RecordTimeout: 3 * time.Second,
	}

	if v := os.Getenv("APP_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.RetentionDays = days
		}
	}

	if v := os.Getenv("APP_RECORD_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.RecordTimeout = time.Duration(secs) * time.Second
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
