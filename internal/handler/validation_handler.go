package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/dto"
	"github.com/octobees/wa-validator/internal/service"
)

// ValidationHandler runs carrier validation for stored contacts.
type ValidationHandler struct {
	validation *service.ValidationService
}

// NewValidationHandler constructs a ValidationHandler.
func NewValidationHandler(validation *service.ValidationService) *ValidationHandler {
	return &ValidationHandler{validation: validation}
}

// Single handles POST /validate/single.
func (h *ValidationHandler) Single(c echo.Context) error {
	var req dto.SingleValidationRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return Error(c, http.StatusBadRequest, "Customer ID and phone number are required")
	}

	result, err := h.validation.ValidateSingle(c.Request().Context(), req.CustomerID, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			return Error(c, http.StatusNotFound, "Customer not found")
		}
		zap.L().Error("single validation", zap.Error(err), zap.String("customer_id", req.CustomerID))
		return Error(c, http.StatusInternalServerError, "Validation failed")
	}
	return Success(c, http.StatusOK, "Validation completed", result)
}

// Bulk handles POST /validate/bulk. An empty customerIds list validates every
// stored customer.
func (h *ValidationHandler) Bulk(c echo.Context) error {
	var req dto.BulkValidationRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return Error(c, http.StatusBadRequest, "Customer IDs array is required")
	}

	result, err := h.validation.ValidateBulk(c.Request().Context(), req.CustomerIDs)
	if err != nil {
		if errors.Is(err, service.ErrNoCustomers) {
			return Error(c, http.StatusBadRequest, "No customers found to validate")
		}
		zap.L().Error("bulk validation", zap.Error(err), zap.Int("requested", len(req.CustomerIDs)))
		return Error(c, http.StatusInternalServerError, "Bulk validation failed")
	}
	return Success(c, http.StatusOK, "Bulk validation completed", result)
}
