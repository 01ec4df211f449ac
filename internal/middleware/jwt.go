package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	authpkg "github.com/octobees/wa-validator/internal/auth"
)

// JWT validates the session token and stores user metadata in the request
// context. The token is read from the auth-token cookie, falling back to a
// bearer Authorization header.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := sessionToken(c)
			if !ok {
				return unauthorized(c, "Authentication required")
			}

			claims, err := manager.ParseToken(token)
			if err != nil {
				zap.L().Debug("session token rejected", zap.Error(err), zap.String("request_id", RequestIDFromContext(c)))
				return unauthorized(c, "Invalid or expired session")
			}

			c.Set(ContextKeyUserID, claims.Subject)
			c.Set(ContextKeyUserEmail, claims.Email)
			c.Set(ContextKeyUserName, claims.Name)
			c.Set(ContextKeyUserRole, claims.Role)

			return next(c)
		}
	}
}

func sessionToken(c echo.Context) (string, bool) {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"status": "error", "message": message})
}
