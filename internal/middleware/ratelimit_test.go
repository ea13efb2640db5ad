package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/seatmap-editor/internal/config"
)

func newLimited(t *testing.T, cfg config.RateLimitConfig) *echo.Echo {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, nil))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/r", ok)
	e.POST("/w", ok)
	return e
}

func do(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucketBlocksWhenEmpty(t *testing.T) {
	e := newLimited(t, config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "rl", WriteCost: 2,
	})

	first := do(e, http.MethodGet, "/r")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusNoContent, do(e, http.MethodGet, "/r").Code)

	blocked := do(e, http.MethodGet, "/r")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
}

func TestTokenBucketChargesWrites(t *testing.T) {
	e := newLimited(t, config.RateLimitConfig{
		Enabled: true, Capacity: 3, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "rl", WriteCost: 2,
	})

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodPost, "/w").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodPost, "/w").Code)
	assert.Equal(t, http.StatusNoContent, do(e, http.MethodGet, "/r").Code)
}

func TestTokenBucketDisabled(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, nil))
	e.GET("/r", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, do(e, http.MethodGet, "/r").Code)
	}
}
