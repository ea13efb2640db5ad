package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seatmap-editor/internal/handler"
	"github.com/iliyamo/seatmap-editor/internal/middleware"
)

// EditorRoles may use the seat map API.
var EditorRoles = []string{"OWNER", "EDITOR"}

// Options carries the cross-cutting middleware for the /v1 API.
type Options struct {
	JWTSecret string
	RateLimit echo.MiddlewareFunc       // nil disables rate limiting
	Cache     *middleware.ResponseCache // nil disables response caching
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler) {
	e.GET("/healthz", health.Check)
}

// RegisterSeatMaps registers the seat map editing API under /v1.  Every route
// needs a valid JWT with one of EditorRoles.  The token bucket runs after
// authentication so buckets can be keyed per operator.
func RegisterSeatMaps(e *echo.Echo, h *handler.SeatMapHandler, opts Options) {
	mws := []echo.MiddlewareFunc{
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(EditorRoles...),
	}
	if opts.RateLimit != nil {
		mws = append(mws, opts.RateLimit)
	}
	v1 := e.Group("/v1", mws...)
	v1.POST("/apply", h.ApplyOnce)

	g := v1.Group("/seatmaps")
	g.POST("", h.Upload)
	g.POST("/:id/parse", h.Parse)
	g.POST("/:id/apply", h.Apply)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/edits", h.Edits)

	// Cached reads.  Apply and Delete invalidate them.
	cached := g.Group("", opts.Cache.Middleware())
	cached.GET("/:id", h.Download)
	cached.GET("/:id/sections", h.Sections)
	cached.GET("/:id/summary", h.Summary)
	cached.GET("/:id/summary.xlsx", h.SummaryXLSX)
}
