package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/wa-validator/internal/config"
)

// RateLimiter applies one shared token bucket to the routes it wraps. A zero
// config disables limiting.
func RateLimiter(cfg config.RateLimitConfig, message string) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	limiter := rate.NewLimiter(rate.Every(perRequest), cfg.Requests)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"status": "error", "message": message})
			}
			return next(c)
		}
	}
}
