package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Allower reports whether one more request for key may proceed.
type Allower interface {
	Allow(key string) bool
}

// RateLimit rejects requests with 429 once the caller's bucket is empty. The
// bucket key is the route template plus the client IP.
func RateLimit(limiter Allower) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}
			if !limiter.Allow(c.Path() + "|" + c.RealIP()) {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"message": "too many requests",
					"code":    "ERR_RATE_LIMITED",
				})
			}
			return next(c)
		}
	}
}
