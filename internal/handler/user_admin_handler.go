package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/wa-validator/internal/dto"
	"github.com/octobees/wa-validator/internal/repository"
	"github.com/octobees/wa-validator/internal/service"
)

// UserAdminHandler exposes administrative user management endpoints.
type UserAdminHandler struct {
	users *service.UserService
}

// NewUserAdminHandler constructs a handler instance.
func NewUserAdminHandler(users *service.UserService) *UserAdminHandler {
	return &UserAdminHandler{users: users}
}

// List returns all users.
func (h *UserAdminHandler) List(c echo.Context) error {
	records, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "Failed to list users")
	}
	return Success(c, http.StatusOK, "Users retrieved", records)
}

// Create provisions a new operator.
func (h *UserAdminHandler) Create(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid payload")
	}

	user, err := h.users.CreateUser(c.Request().Context(), req)
	if err != nil {
		var pwErr service.PasswordError
		switch {
		case errors.Is(err, repository.ErrEmailDuplicate):
			return Error(c, http.StatusConflict, "Email already exists")
		case errors.As(err, &pwErr):
			return Invalid(c, http.StatusBadRequest, "Password does not meet requirements", pwErr.Problems)
		default:
			return Error(c, http.StatusBadRequest, err.Error())
		}
	}

	return Success(c, http.StatusCreated, "User created", user)
}

// Delete removes an operator.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	if err := h.users.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return Error(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidUserID):
			return Error(c, http.StatusBadRequest, "Invalid user id")
		default:
			return Error(c, http.StatusInternalServerError, "Failed to delete user")
		}
	}

	return Success(c, http.StatusOK, "User deleted", nil)
}
