package service

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/batch"
	"github.com/octobees/wa-validator/internal/entity"
	"github.com/octobees/wa-validator/internal/metrics"
	"github.com/octobees/wa-validator/internal/oracle/carrier"
)

// Bulk validation limits. Records beyond MaxBulkValidation are dropped from
// a call and reported in BulkSummary.Dropped.
const (
	MaxBulkValidation    = 50
	ValidationBatchSize  = 5
	ValidationBatchDelay = time.Second
)

// MsgNoPhone is the failure recorded for contacts without any phone value.
const MsgNoPhone = "No phone number to validate"

var (
	// ErrNoCustomers is returned when the working set of a bulk validation is empty.
	ErrNoCustomers = eris.New("No customers found to validate")
	// ErrCustomerNotFound is returned when a single validation names an unknown contact.
	ErrCustomerNotFound = eris.New("Customer not found")
)

// ValidationOutcome is the result of validating one contact.
type ValidationOutcome struct {
	CustomerID       string          `json:"customerId"`
	Success          bool            `json:"success"`
	ValidationResult *carrier.Result `json:"validationResult,omitempty"`
	Customer         *entity.Contact `json:"customer,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// BulkSummary aggregates the outcomes of a bulk validation.
type BulkSummary struct {
	Total      int `json:"total"`
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Valid      int `json:"valid"`
	Invalid    int `json:"invalid"`
	Errors     int `json:"errors"`
	Dropped    int `json:"dropped"`
}

// BulkResult holds per-contact outcomes in input order.
type BulkResult struct {
	Results []ValidationOutcome `json:"results"`
	Summary BulkSummary         `json:"summary"`
}

// SingleResult is the outcome of validating one contact on demand.
type SingleResult struct {
	Customer         entity.Contact `json:"customer"`
	ValidationResult *carrier.Result `json:"validationResult"`
}

// ValidationService checks contact phones with the carrier lookup and stores
// the resulting status.
type ValidationService struct {
	store  ContactStore
	lookup carrier.Client
	rt     settings
}

// NewValidationService wires the store and lookup client.
func NewValidationService(store ContactStore, lookup carrier.Client, opts ...Option) *ValidationService {
	return &ValidationService{store: store, lookup: lookup, rt: applyOptions(opts)}
}

// ValidateBulk validates the stored contacts whose ids are listed, or every
// stored contact when ids is empty. All successfully validated contacts are
// written back in one batch update; a write failure fails the whole call.
func (s *ValidationService) ValidateBulk(ctx context.Context, ids []string) (*BulkResult, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load contacts")
	}

	work := filterContacts(all, ids)
	if len(work) == 0 {
		return nil, ErrNoCustomers
	}

	dropped := 0
	if len(work) > MaxBulkValidation {
		dropped = len(work) - MaxBulkValidation
		zap.L().Info("limiting bulk validation",
			zap.Int("limit", MaxBulkValidation), zap.Int("customers", len(work)))
		work = work[:MaxBulkValidation]
	}

	runner := batch.Runner{Size: ValidationBatchSize, Delay: ValidationBatchDelay, Sleep: s.rt.sleep, Name: "validate"}
	outcomes, runErr := batch.Run(ctx, runner, work, s.validateOne)

	updated := make([]entity.Contact, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Success {
			updated = append(updated, *o.Customer)
		}
	}

	if len(updated) > 0 {
		// Completed results are written even if ctx was cancelled between batches.
		if err := s.store.BatchUpdate(context.WithoutCancel(ctx), updated); err != nil {
			return nil, eris.Wrap(err, "persist validation results")
		}
	}
	if runErr != nil {
		return nil, eris.Wrapf(runErr, "bulk validation interrupted after %d of %d contacts", len(outcomes), len(work))
	}

	summary := summarize(outcomes, len(work))
	summary.Dropped = dropped
	zap.L().Info("bulk validation completed",
		zap.Int("total", summary.Total), zap.Int("valid", summary.Valid),
		zap.Int("invalid", summary.Invalid), zap.Int("errors", summary.Errors))

	return &BulkResult{Results: outcomes, Summary: summary}, nil
}

// ValidateSingle validates phone for the stored contact id and writes the
// updated row.
func (s *ValidationService) ValidateSingle(ctx context.Context, id, phone string) (*SingleResult, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load contacts")
	}

	var found *entity.Contact
	for i := range all {
		if all[i].ID == id {
			found = &all[i]
			break
		}
	}
	if found == nil {
		return nil, ErrCustomerNotFound
	}

	result, err := s.lookup.Lookup(ctx, phone)
	if err != nil {
		metrics.IncValidation("error")
		return nil, eris.Wrapf(err, "validate %s", id)
	}

	updated := applyLookup(*found, phone, result, s.rt.now())
	countOutcome(result)
	if err := s.store.Update(ctx, updated); err != nil {
		return nil, eris.Wrap(err, "persist validation result")
	}

	return &SingleResult{Customer: updated, ValidationResult: result}, nil
}

func (s *ValidationService) validateOne(ctx context.Context, c entity.Contact) ValidationOutcome {
	phone := c.PhoneToValidate()
	if phone == "" {
		metrics.IncValidation("no_phone")
		return ValidationOutcome{CustomerID: c.ID, Error: MsgNoPhone}
	}

	result, err := s.lookup.Lookup(ctx, phone)
	if err != nil {
		zap.L().Warn("phone validation failed", zap.String("customer_id", c.ID), zap.Error(err))
		metrics.IncValidation("error")
		return ValidationOutcome{CustomerID: c.ID, Error: err.Error()}
	}

	countOutcome(result)
	updated := applyLookup(c, phone, result, s.rt.now())
	return ValidationOutcome{
		CustomerID:       c.ID,
		Success:          true,
		ValidationResult: result,
		Customer:         &updated,
	}
}

// applyLookup returns a copy of c carrying the lookup verdict.
func applyLookup(c entity.Contact, phone string, r *carrier.Result, now time.Time) entity.Contact {
	c.Phone = phone
	if r.InternationalFormat != "" {
		c.Phone = r.InternationalFormat
	}
	c.Status = entity.StatusInvalid
	if r.IsWhatsAppCapable {
		c.Status = entity.StatusValid
	}
	c.LastValidated = now.UTC().Format(time.RFC3339)
	return c
}

func countOutcome(r *carrier.Result) {
	if r.IsWhatsAppCapable {
		metrics.IncValidation("valid")
		return
	}
	metrics.IncValidation("invalid")
}

func filterContacts(all []entity.Contact, ids []string) []entity.Contact {
	if len(ids) == 0 {
		return all
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]entity.Contact, 0, len(ids))
	for _, c := range all {
		if _, ok := wanted[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

func summarize(outcomes []ValidationOutcome, total int) BulkSummary {
	s := BulkSummary{Total: total, Processed: len(outcomes)}
	for _, o := range outcomes {
		if !o.Success {
			continue
		}
		s.Successful++
		if o.ValidationResult != nil && o.ValidationResult.IsWhatsAppCapable {
			s.Valid++
		}
	}
	s.Invalid = s.Successful - s.Valid
	s.Errors = s.Processed - s.Successful
	return s
}
