package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/dto"
	"github.com/octobees/wa-validator/internal/oracle/contactsearch"
)

// ContactSearcher finds phone numbers for a person.
type ContactSearcher interface {
	Search(ctx context.Context, params contactsearch.Params) ([]contactsearch.Contact, error)
	Enrich(ctx context.Context, email string) (*contactsearch.Contact, error)
}

// SearchHandler exposes manual phone search.
type SearchHandler struct {
	search ContactSearcher
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(search ContactSearcher) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles POST /search/phone.
func (h *SearchHandler) Search(c echo.Context) error {
	var req dto.PhoneSearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid payload")
	}

	params := contactsearch.Params{
		Name:         req.Name,
		Email:        req.Email,
		Company:      req.Company,
		Domain:       req.Domain,
		CurrentPhone: req.CurrentPhone,
	}
	if params.Empty() {
		return Error(c, http.StatusBadRequest, "At least one search parameter is required (name, email, company, or domain)")
	}
	if err := c.Validate(&req); err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	results, err := h.search.Search(c.Request().Context(), params)
	if err != nil {
		return searchError(c, err, "Phone search failed")
	}
	if results == nil {
		results = []contactsearch.Contact{}
	}
	return Success(c, http.StatusOK, "Phone search completed", map[string]any{"results": results, "count": len(results)})
}

// Enrich handles GET /search/phone?email=.
func (h *SearchHandler) Enrich(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return Error(c, http.StatusBadRequest, "Email parameter is required for enrichment")
	}

	contact, err := h.search.Enrich(c.Request().Context(), email)
	if err != nil {
		return searchError(c, err, "Contact enrichment failed")
	}
	if contact == nil {
		return Success(c, http.StatusOK, "No additional contact data found", map[string]any{"result": nil})
	}
	return Success(c, http.StatusOK, "Contact enrichment completed", map[string]any{"result": contact})
}

func searchError(c echo.Context, err error, message string) error {
	switch {
	case errors.Is(err, contactsearch.ErrUnconfigured):
		return Error(c, http.StatusServiceUnavailable, "Contact search is not configured")
	case errors.Is(err, contactsearch.ErrCallFailed):
		zap.L().Warn("contact search call failed", zap.Error(err))
		return Error(c, http.StatusBadGateway, message)
	default:
		zap.L().Error("contact search", zap.Error(err))
		return Error(c, http.StatusInternalServerError, message)
	}
}
