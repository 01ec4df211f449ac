package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/service"
)

// maxUploadBytes bounds the size of an uploaded contact file.
const maxUploadBytes = 10 << 20

// ImportHandler previews and saves contact imports.
type ImportHandler struct {
	imports *service.ImportService
}

// NewImportHandler constructs an ImportHandler.
func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

type enrichRequest struct {
	Rows []service.ImportRow `json:"rows"`
}

type confirmRequest struct {
	ConfirmedRows []service.EnrichedRow `json:"confirmedRows"`
}

type previewResponse struct {
	Rows    []service.EnrichedRow `json:"rows"`
	Summary service.ImportSummary `json:"summary"`
}

// Enrich handles POST /import/enrich with rows parsed by the client.
func (h *ImportHandler) Enrich(c echo.Context) error {
	var req enrichRequest
	if err := c.Bind(&req); err != nil || req.Rows == nil {
		return Error(c, http.StatusBadRequest, "Invalid data format. Expected array of rows.")
	}

	rows, summary := h.imports.Enrich(c.Request().Context(), req.Rows)
	return Success(c, http.StatusOK, "Import preview ready", previewResponse{Rows: rows, Summary: summary})
}

// Upload handles POST /import/upload with a CSV or XLSX file in the "file" field.
func (h *ImportHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "Missing import file")
	}
	if fileHeader.Size > maxUploadBytes {
		return Error(c, http.StatusRequestEntityTooLarge, "Import file is too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "Unable to open file")
	}
	defer file.Close()

	parsed, err := service.ParseImportFile(fileHeader.Filename, file)
	if err != nil {
		var validationErr service.FileValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		zap.L().Error("parse import file", zap.Error(err), zap.String("filename", fileHeader.Filename))
		return Error(c, http.StatusInternalServerError, "Failed to process import")
	}

	rows, summary := h.imports.Enrich(c.Request().Context(), parsed)
	return Success(c, http.StatusOK, "Import preview ready", previewResponse{Rows: rows, Summary: summary})
}

// Confirm handles PUT /import/enrich and saves the reviewed rows.
func (h *ImportHandler) Confirm(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil || req.ConfirmedRows == nil {
		return Error(c, http.StatusBadRequest, "Invalid data format")
	}

	imported, err := h.imports.ConfirmImport(c.Request().Context(), req.ConfirmedRows)
	if err != nil {
		zap.L().Error("save import", zap.Error(err), zap.Int("rows", len(req.ConfirmedRows)))
		return Error(c, http.StatusInternalServerError, "Failed to save import")
	}
	return Success(c, http.StatusOK, fmt.Sprintf("Successfully imported %d customers", imported), map[string]int{"imported": imported})
}
