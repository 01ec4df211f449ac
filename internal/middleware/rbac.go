package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole lets the request through only when the session role set by JWT
// is one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyUserRole).(string)
			if role == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"status": "error", "message": "Missing role"})
			}
			if !slices.Contains(roles, role) {
				return c.JSON(http.StatusForbidden, map[string]string{"status": "error", "message": "Insufficient permissions"})
			}
			return next(c)
		}
	}
}
