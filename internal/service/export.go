package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/octobees/wa-validator/internal/entity"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = eris.New(`Invalid format. Use "csv", "json" or "xlsx"`)

var exportHeader = []string{
	"Client ID",
	"First Name",
	"Last Name",
	"Account Name",
	"Country",
	"Original Phone",
	"Validated Phone",
	"Email",
	"Language",
	"Account Owner",
	"Status",
	"Last Validated",
	"Carrier",
	"Line Type",
	"WhatsApp Ready",
	"Recommendations",
}

// ExportRecord is a contact as shown on the dashboard, with the carrier
// details of its last validation when known.
type ExportRecord struct {
	entity.Contact
	Carrier  string `json:"carrier,omitempty"`
	LineType string `json:"lineType,omitempty"`
}

// Export is a rendered download.
type Export struct {
	ContentType string
	Filename    string
	Body        []byte
}

// ExportContacts renders records in the requested format.
func ExportContacts(records []ExportRecord, format string, now time.Time) (*Export, error) {
	filename := fmt.Sprintf("validated-customers-%d.%s", now.UnixMilli(), format)

	switch format {
	case FormatCSV:
		body, err := exportCSV(records)
		if err != nil {
			return nil, err
		}
		return &Export{ContentType: "text/csv", Filename: filename, Body: body}, nil
	case FormatJSON:
		body, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, eris.Wrap(err, "encode json export")
		}
		return &Export{ContentType: "application/json", Filename: filename, Body: body}, nil
	case FormatXLSX:
		body, err := exportXLSX(records)
		if err != nil {
			return nil, err
		}
		return &Export{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    filename,
			Body:        body,
		}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

func exportRow(r ExportRecord) []string {
	validated := r.Mobile
	if validated == "" {
		validated = r.Phone
	}
	status := r.Status
	if status == "" {
		status = entity.StatusPending
	}
	ready := "No"
	if r.Status == entity.StatusValid {
		ready = "Yes"
	}
	return []string{
		r.ClientID,
		r.FirstName,
		r.LastName,
		r.AccountName,
		r.CountryName,
		r.Phone,
		validated,
		r.Email,
		r.Language,
		r.AccountOwner,
		status,
		r.LastValidated,
		r.Carrier,
		r.LineType,
		ready,
		"",
	}
}

func exportCSV(records []ExportRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, eris.Wrap(err, "write csv header")
	}
	for _, r := range records {
		if err := w.Write(exportRow(r)); err != nil {
			return nil, eris.Wrapf(err, "write csv row %s", r.ClientID)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}

func exportXLSX(records []ExportRecord) ([]byte, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Validated Customers")
	if err != nil {
		return nil, eris.Wrap(err, "add xlsx sheet")
	}

	writeRow := func(values []string) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	writeRow(exportHeader)
	for _, r := range records {
		writeRow(exportRow(r))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "write xlsx")
	}
	return buf.Bytes(), nil
}
