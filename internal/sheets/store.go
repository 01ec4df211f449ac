// Package sheets stores contacts in Google Sheets: rows are read from a source
// spreadsheet and results are written to a destination spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/octobees/wa-validator/internal/config"
	"github.com/octobees/wa-validator/internal/entity"
)

const (
	sheetName        = "Sheet1"
	readRange        = sheetName + "!A2:M"
	valueInputOption = "USER_ENTERED"
	firstDataRow     = 2
)

// ErrSourceNotConfigured is returned when credentials exist but no source sheet id does.
var ErrSourceNotConfigured = eris.New("google sheet id not configured, set GOOGLE_SHEET_ID")

// Store reads and writes contacts. A Store without credentials reads nothing
// and skips writes, leaving manual import as the only data path.
type Store struct {
	values        valuesAPI
	sourceID      string
	destinationID string
	now           func() time.Time
	newBackOff    func() backoff.BackOff
}

// New connects to the Sheets API with the service account in cfg.
func New(ctx context.Context, cfg config.GoogleSheetsConfig) (*Store, error) {
	if !cfg.Configured() {
		zap.L().Warn("google sheets credentials not configured, manual import mode active")
		return newStore(nil, cfg), nil
	}

	jwtCfg := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheetsapi.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	return NewWithHTTPClient(ctx, cfg, jwtCfg.Client(ctx))
}

// NewWithHTTPClient builds a Store over an already authorised client.
func NewWithHTTPClient(ctx context.Context, cfg config.GoogleSheetsConfig, client *http.Client, opts ...option.ClientOption) (*Store, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "create sheets service")
	}
	return newStore(serviceValues{svc: svc}, cfg), nil
}

func newStore(values valuesAPI, cfg config.GoogleSheetsConfig) *Store {
	return &Store{
		values:        values,
		sourceID:      strings.TrimSpace(cfg.SourceSheetID),
		destinationID: strings.TrimSpace(cfg.DestinationSheetID),
		now:           time.Now,
		newBackOff:    defaultBackOff,
	}
}

// Configured reports whether the store talks to Google Sheets.
func (s *Store) Configured() bool {
	return s.values != nil
}

// GetAll returns every contact row of the source sheet. Rows with a blank
// client id are skipped but still count towards row numbering.
func (s *Store) GetAll(ctx context.Context) ([]entity.Contact, error) {
	if s.values == nil {
		zap.L().Warn("google sheets not configured, returning no contacts")
		return []entity.Contact{}, nil
	}
	if s.sourceID == "" {
		return nil, ErrSourceNotConfigured
	}

	rows, err := s.values.Get(ctx, s.sourceID, readRange)
	if err != nil {
		return nil, eris.Wrap(err, "read contacts from sheet")
	}

	contacts := make([]entity.Contact, 0, len(rows))
	for i, row := range rows {
		if cell(row, 0) == "" {
			continue
		}
		contacts = append(contacts, rowToContact(row, i+firstDataRow))
	}

	zap.L().Debug("contacts read from sheet", zap.Int("rows", len(rows)), zap.Int("contacts", len(contacts)))
	return contacts, nil
}

// Update writes a single contact to its row in the destination sheet.
func (s *Store) Update(ctx context.Context, c entity.Contact) error {
	if !s.writable("update") {
		return nil
	}
	values := [][]any{s.contactToRow(c)}
	err := s.retry(ctx, "update", func() error {
		return s.values.Update(ctx, s.destinationID, rowRange(c.Row), values)
	})
	return eris.Wrapf(err, "write contact %s", c.ID)
}

// BatchUpdate writes all contacts in one request.
func (s *Store) BatchUpdate(ctx context.Context, contacts []entity.Contact) error {
	if len(contacts) == 0 || !s.writable("batch update") {
		return nil
	}

	data := make([]*sheetsapi.ValueRange, 0, len(contacts))
	for _, c := range contacts {
		data = append(data, &sheetsapi.ValueRange{
			Range:  rowRange(c.Row),
			Values: [][]any{s.contactToRow(c)},
		})
	}

	err := s.retry(ctx, "batch update", func() error {
		return s.values.BatchUpdate(ctx, s.destinationID, data)
	})
	return eris.Wrapf(err, "write %d contacts", len(contacts))
}

func (s *Store) writable(op string) bool {
	if s.values == nil {
		zap.L().Warn("google sheets not configured, skipping write", zap.String("operation", op))
		return false
	}
	if s.destinationID == "" {
		zap.L().Warn("destination sheet not configured, skipping write", zap.String("operation", op))
		return false
	}
	return true
}

func (s *Store) retry(ctx context.Context, op string, fn func() error) error {
	notify := func(err error, d time.Duration) {
		zap.L().Warn("retrying sheets write", zap.String("operation", op), zap.Error(err), zap.Duration("after", d))
	}
	return backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(s.newBackOff(), ctx), notify)
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	b.Reset()
	return b
}

// isTransient reports quota and server-side errors from the Google API.
func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}

func rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:M%d", sheetName, row, row)
}

func rowToContact(row []any, rowNumber int) entity.Contact {
	return entity.Contact{
		ID:                entity.ContactIDForRow(rowNumber),
		ClientID:          cell(row, 0),
		FirstName:         cell(row, 1),
		LastName:          cell(row, 2),
		AccountName:       cell(row, 3),
		CountryName:       cell(row, 4),
		Phone:             cell(row, 5),
		CountryMobileCode: cell(row, 6),
		Mobile:            cell(row, 7),
		Email:             cell(row, 8),
		Language:          cell(row, 9),
		AccountOwner:      cell(row, 10),
		Status:            parseStatus(cell(row, 11)),
		LastValidated:     cell(row, 12),
		Row:               rowNumber,
	}
}

func (s *Store) contactToRow(c entity.Contact) []any {
	lastValidated := c.LastValidated
	if lastValidated == "" {
		lastValidated = s.now().UTC().Format(time.RFC3339)
	}
	return []any{
		c.ClientID,
		c.FirstName,
		c.LastName,
		c.AccountName,
		c.CountryName,
		c.Phone,
		c.CountryMobileCode,
		c.Mobile,
		c.Email,
		c.Language,
		c.AccountOwner,
		c.Status,
		lastValidated,
	}
}

func parseStatus(raw string) string {
	switch status := strings.ToLower(raw); status {
	case entity.StatusValid, entity.StatusInvalid, entity.StatusPending:
		return status
	default:
		return entity.StatusPending
	}
}

func cell(row []any, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}
