package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_HOST", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.AuditEnabled())
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.AMQPURL)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
}

func TestRateLimitConfigClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "3")
	t.Setenv("RATE_LIMIT_WRITE_COST", "10")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()

	assert.Equal(t, 3, cfg.Capacity)
	assert.Equal(t, 3, cfg.WriteCost)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestCacheConfigDefaultsUnknownStrategy(t *testing.T) {
	t.Setenv("CACHE_KEY_STRATEGY", "route")
	t.Setenv("CACHE_ENABLED", "off")

	cfg := LoadCacheConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "path_query", cfg.KeyStrategy)
}

func TestSessionConfigFloorsTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "5s")
	assert.Equal(t, time.Minute, LoadSessionConfig().TTL)
}
