package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/wa-validator/internal/middleware"
)

// APIResponse is the envelope of every dashboard API reply. RequestID echoes
// the X-Request-ID of the call so operators can match a reply to server logs.
type APIResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{
		Status:    "success",
		Message:   message,
		Data:      data,
		RequestID: middleware.RequestIDFromContext(c),
	})
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	return Invalid(c, status, message, nil)
}

// Invalid sends an error response that lists what was wrong with the input.
func Invalid(c echo.Context, status int, message string, details any) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Status:    "error",
		Message:   message,
		Details:   details,
		RequestID: middleware.RequestIDFromContext(c),
	})
}
