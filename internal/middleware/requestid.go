package middleware

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderRequestID is echoed on every response and written to the access log.
const HeaderRequestID = "X-Request-ID"

// Caller-supplied ids end up in logs and reply envelopes, so only short
// token-like values are accepted.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// RequestID tags the request with the caller's X-Request-ID, or a fresh UUID
// when the header is missing or malformed.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(HeaderRequestID)
			if !requestIDPattern.MatchString(rid) {
				rid = uuid.NewString()
			}

			c.Set(ContextKeyRequestID, rid)
			c.Response().Header().Set(HeaderRequestID, rid)

			return next(c)
		}
	}
}

// RequestIDFromContext returns the id set by RequestID, or "" outside it.
func RequestIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyRequestID).(string); ok {
		return val
	}
	return ""
}
