package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("CACHE_ENABLED", "")
	t.Setenv("VALKEY_AUTH_TTL_SEC", "")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, "users:auth", cfg.Cache.KeyPrefix)
	assert.Equal(t, 5*time.Minute, cfg.Cache.AuthTTL)
	assert.Equal(t, 256, cfg.Tickets.QRSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("TICKET_TOKEN_SECRET", "s3cret")
	t.Setenv("VALKEY_AUTH_TTL_SEC", "60")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 1025, cfg.SMTP.Port)
	assert.Equal(t, "s3cret", cfg.Tickets.TokenSecret)
	assert.Equal(t, time.Minute, cfg.Cache.AuthTTL)
}
