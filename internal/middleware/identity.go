package middleware

import "github.com/labstack/echo/v4"

// Actor returns the authenticated subject, or "anon" when JWTAuth did not run.
func Actor(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
