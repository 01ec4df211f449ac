package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// FileValidationError indicates that an uploaded file cannot be imported.
type FileValidationError struct {
	Message string
}

// Error implements the error interface.
func (e FileValidationError) Error() string {
	return e.Message
}

// ParseImportFile reads rows from a .csv or .xlsx upload. Files use the
// spreadsheet column order (client id, first name, last name, account,
// country, phone, mobile code, mobile, email, language, owner) after one
// header row; rows without a client id are skipped.
func ParseImportFile(name string, r io.Reader) ([]ImportRow, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrap(err, "read upload")
		}
		return ParseXLSX(data)
	default:
		return nil, FileValidationError{Message: fmt.Sprintf("unsupported file type %q, upload .csv or .xlsx", filepath.Ext(name))}
	}
}

// ParseCSV reads import rows from CSV.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, FileValidationError{Message: fmt.Sprintf("invalid csv on line %d", parseErr.Line)}
		}
		return nil, eris.Wrap(err, "read csv")
	}
	return recordsToRows(records)
}

// ParseXLSX reads import rows from the first sheet of an XLSX workbook.
func ParseXLSX(data []byte) ([]ImportRow, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, FileValidationError{Message: "file is not a valid xlsx workbook"}
	}
	if len(f.Sheets) == 0 {
		return nil, FileValidationError{Message: "workbook has no sheets"}
	}

	sheet := f.Sheets[0]
	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		records = append(records, cells)
	}
	return recordsToRows(records)
}

func recordsToRows(records [][]string) ([]ImportRow, error) {
	if len(records) == 0 {
		return nil, FileValidationError{Message: "file is empty"}
	}

	rows := make([]ImportRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if field(rec, 0) == "" {
			continue
		}
		rows = append(rows, ImportRow{
			ClientID:          field(rec, 0),
			FirstName:         field(rec, 1),
			LastName:          field(rec, 2),
			AccountName:       field(rec, 3),
			Country:           field(rec, 4),
			Phone:             field(rec, 5),
			CountryMobileCode: field(rec, 6),
			Mobile:            field(rec, 7),
			Email:             field(rec, 8),
			Language:          field(rec, 9),
			AccountOwner:      field(rec, 10),
		})
	}
	return rows, nil
}

func field(rec []string, idx int) string {
	if idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}
