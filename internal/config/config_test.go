package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Zero(t, cfg.RetentionDays)
	assert.Equal(t, 3*time.Second, cfg.RecordTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ADMIN_USER", "root")
	t.Setenv("APP_LISTEN_ADDR", ":9999")
	t.Setenv("APP_RETENTION_DAYS", "30")
	t.Setenv("APP_RECORD_TIMEOUT_SECONDS", "10")
	t.Setenv("APP_DATABASE_URL", "postgres://localhost/factify")

	cfg := Load()

	assert.Equal(t, "root", cfg.AdminUser)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 10*time.Second, cfg.RecordTimeout)
	assert.Equal(t, "postgres://localhost/factify", cfg.DatabaseURL)
}

func TestLoad_IgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("APP_RETENTION_DAYS", "not-a-number")
	t.Setenv("APP_RECORD_TIMEOUT_SECONDS", "-4")

	cfg := Load()

	assert.Zero(t, cfg.RetentionDays)
	assert.Equal(t, 3*time.Second, cfg.RecordTimeout)
}
