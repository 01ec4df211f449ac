package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/entity"
	"github.com/octobees/wa-validator/internal/service"
)

// CustomersHandler serves the stored contact list.
type CustomersHandler struct {
	customers *service.CustomerService
}

// NewCustomersHandler constructs a CustomersHandler.
func NewCustomersHandler(customers *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{customers: customers}
}

type updateCustomerRequest struct {
	Customer *entity.Contact `json:"customer"`
}

// List handles GET /customers.
func (h *CustomersHandler) List(c echo.Context) error {
	contacts, err := h.customers.List(c.Request().Context())
	if err != nil {
		zap.L().Error("list customers", zap.Error(err))
		return Error(c, http.StatusInternalServerError, "Failed to fetch customers")
	}
	return Success(c, http.StatusOK, "", map[string]any{"customers": contacts})
}

// Update handles PUT /customers/:id.
func (h *CustomersHandler) Update(c echo.Context) error {
	var req updateCustomerRequest
	if err := c.Bind(&req); err != nil || req.Customer == nil {
		return Error(c, http.StatusBadRequest, "Customer data is required")
	}
	if id := c.Param("id"); id != "" {
		req.Customer.ID = id
	}
	if req.Customer.ID == "" {
		return Error(c, http.StatusBadRequest, "Customer data is required")
	}

	updated, err := h.customers.Update(c.Request().Context(), *req.Customer)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			return Error(c, http.StatusNotFound, "Customer not found")
		}
		zap.L().Error("update customer", zap.Error(err), zap.String("customer_id", req.Customer.ID))
		return Error(c, http.StatusInternalServerError, "Failed to update customer")
	}
	return Success(c, http.StatusOK, "Customer updated successfully in destination sheet", map[string]any{"customer": updated})
}
