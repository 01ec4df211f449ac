package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/service"
)

// ExportHandler renders contact lists as downloads.
type ExportHandler struct {
	now func() time.Time
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{now: time.Now}
}

type exportRequest struct {
	Customers []service.ExportRecord `json:"customers"`
	Format    string                 `json:"format"`
}

// Export handles POST /export.
func (h *ExportHandler) Export(c echo.Context) error {
	var req exportRequest
	if err := c.Bind(&req); err != nil || req.Customers == nil {
		return Error(c, http.StatusBadRequest, "Customers data is required")
	}
	if req.Format == "" {
		req.Format = service.FormatCSV
	}

	out, err := service.ExportContacts(req.Customers, req.Format, h.now())
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFormat) {
			return Error(c, http.StatusBadRequest, `Invalid format. Use "csv", "json" or "xlsx"`)
		}
		zap.L().Error("export contacts", zap.Error(err), zap.String("format", req.Format))
		return Error(c, http.StatusInternalServerError, "Failed to export data")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", out.Filename))
	return c.Blob(http.StatusOK, out.ContentType, out.Body)
}
