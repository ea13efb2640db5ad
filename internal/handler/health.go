package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness plus the state of the optional backends.
// A backend that is configured but unreachable turns the answer into 503 so
// load balancers stop routing to this instance.
type HealthHandler struct {
	Redis *redis.Client
	DB    *sql.DB
}

func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := echo.Map{"status": "ok", "store": "memory", "redis": "disabled", "audit": "disabled"}
	if h.Redis != nil {
		body["store"] = "redis"
		body["redis"] = "ok"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			body["redis"] = "down"
			status = http.StatusServiceUnavailable
		}
	}
	if h.DB != nil {
		body["audit"] = "ok"
		if err := h.DB.PingContext(ctx); err != nil {
			body["audit"] = "down"
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	return c.JSON(status, body)
}
