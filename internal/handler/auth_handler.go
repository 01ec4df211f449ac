package handler

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/auth"
	"github.com/octobees/wa-validator/internal/dto"
	"github.com/octobees/wa-validator/internal/middleware"
	"github.com/octobees/wa-validator/internal/service"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	clients      *auth.Lockout
	sessionTTL   time.Duration
	secureCookie bool
}

// NewAuthHandler constructs an AuthHandler. clients throttles failed logins
// per client address.
func NewAuthHandler(authService *service.AuthService, clients *auth.Lockout, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = auth.DefaultTokenTTL
	}
	return &AuthHandler{authService: authService, clients: clients, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	clientIP := c.RealIP()
	if clientIP == "" {
		clientIP = "unknown"
	}

	status, err := h.clients.Check(ctx, clientIP)
	if err != nil {
		zap.L().Error("login throttle check failed", zap.Error(err))
		return Error(c, http.StatusInternalServerError, "Internal server error")
	}
	if status.Locked {
		return Error(c, http.StatusTooManyRequests, fmt.Sprintf("Too many login attempts. Please try again in %d minutes.", status.RetryMinutes()))
	}

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid input format")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "Email and password are required")
	}
	if !emailPattern.MatchString(req.Email) {
		return Error(c, http.StatusBadRequest, "Invalid email format")
	}

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		var credErr service.CredentialsError
		if errors.As(err, &credErr) {
			if _, failErr := h.clients.Fail(ctx, clientIP); failErr != nil {
				zap.L().Warn("record login failure", zap.Error(failErr))
			}
			return Error(c, http.StatusUnauthorized, credErr.Message)
		}
		zap.L().Error("login failed", zap.Error(err))
		return Error(c, http.StatusInternalServerError, "Internal server error")
	}

	if err := h.clients.Clear(ctx, clientIP); err != nil {
		zap.L().Warn("reset login throttle", zap.Error(err))
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	user := dto.SessionUser{
		ID:    result.User.ID.String(),
		Email: result.User.Email,
		Name:  result.User.Name,
		Role:  result.User.Role,
	}
	return Success(c, http.StatusOK, "Login successful", dto.LoginResponse{User: user, AccessToken: result.Token})
}

// Logout handles POST /auth/logout requests by expiring the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return Success(c, http.StatusOK, "Logged out", nil)
}

// Me handles GET /auth/me and returns the session of the caller.
func (h *AuthHandler) Me(c echo.Context) error {
	id, _ := c.Get(middleware.ContextKeyUserID).(string)
	if id == "" {
		return Error(c, http.StatusUnauthorized, "Authentication required")
	}
	email, _ := c.Get(middleware.ContextKeyUserEmail).(string)
	name, _ := c.Get(middleware.ContextKeyUserName).(string)
	role, _ := c.Get(middleware.ContextKeyUserRole).(string)

	return Success(c, http.StatusOK, "Session active", dto.SessionUser{ID: id, Email: email, Name: name, Role: role})
}
