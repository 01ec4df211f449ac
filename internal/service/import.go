package service

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/entity"
	"github.com/octobees/wa-validator/internal/oracle/contactsearch"
	"github.com/octobees/wa-validator/internal/phone"
)

// firstContactRow is the sheet row of the first contact, below the header.
const firstContactRow = 2

// ImportRow is one raw row of an uploaded contact file.
type ImportRow struct {
	ClientID          string `json:"clientId"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	AccountName       string `json:"accountName"`
	Country           string `json:"country"`
	Phone             string `json:"phone"`
	CountryMobileCode string `json:"countryMobileCode"`
	Mobile            string `json:"mobile"`
	Email             string `json:"email"`
	Language          string `json:"language,omitempty"`
	AccountOwner      string `json:"accountOwner,omitempty"`
}

// Name joins first and last name.
func (r ImportRow) Name() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// EnrichedRow is an ImportRow with its normalized phone and any suggestions.
type EnrichedRow struct {
	ImportRow
	NormalizedPhone string                     `json:"normalizedPhone"`
	PhoneValid      bool                       `json:"phoneValid"`
	PhoneIssues     []string                   `json:"phoneIssues"`
	NeedsEnrichment bool                       `json:"needsEnrichment"`
	Suggestions     []contactsearch.Suggestion `json:"suggestions"`
}

// ImportSummary counts the rows of an import preview.
type ImportSummary struct {
	Total           int `json:"total"`
	Valid           int `json:"valid"`
	NeedsEnrichment int `json:"needsEnrichment"`
	WithSuggestions int `json:"withSuggestions"`
	EnrichDropped   int `json:"enrichDropped"`
}

// ImportService previews uploaded rows and saves the confirmed ones.
type ImportService struct {
	store    ContactStore
	enricher *EnrichmentService
}

// NewImportService wires the contact store and enrichment orchestrator.
func NewImportService(store ContactStore, enricher *EnrichmentService) *ImportService {
	return &ImportService{store: store, enricher: enricher}
}

// AnalyzeRows normalizes every row and flags the ones that need enrichment.
func AnalyzeRows(rows []ImportRow) ([]EnrichedRow, ImportSummary) {
	out := make([]EnrichedRow, 0, len(rows))
	summary := ImportSummary{Total: len(rows)}

	for _, row := range rows {
		r := phone.CombinePhoneFields(row.Phone, row.Mobile, row.CountryMobileCode, row.Country)
		enriched := EnrichedRow{
			ImportRow:       row,
			NormalizedPhone: r.Normalized,
			PhoneValid:      r.IsValid,
			PhoneIssues:     r.Issues,
			NeedsEnrichment: phone.NeedsEnrichment(r),
			Suggestions:     []contactsearch.Suggestion{},
		}
		if enriched.PhoneValid {
			summary.Valid++
		}
		if enriched.NeedsEnrichment {
			summary.NeedsEnrichment++
		}
		out = append(out, enriched)
	}

	return out, summary
}

// Enrich normalizes rows and attaches contact-search suggestions to the rows
// that need them.
func (s *ImportService) Enrich(ctx context.Context, rows []ImportRow) ([]EnrichedRow, ImportSummary) {
	enriched, summary := AnalyzeRows(rows)

	candidates := make([]EnrichmentCandidate, 0, summary.NeedsEnrichment)
	for _, row := range enriched {
		if !row.NeedsEnrichment {
			continue
		}
		candidates = append(candidates, EnrichmentCandidate{
			ClientID:     row.ClientID,
			Name:         row.Name(),
			Email:        row.Email,
			Company:      row.AccountName,
			CurrentPhone: row.NormalizedPhone,
		})
	}
	if len(candidates) == 0 || s.enricher == nil {
		return enriched, summary
	}

	found, stats := s.enricher.BatchEnrich(ctx, candidates)
	summary.EnrichDropped = stats.Dropped

	for i := range enriched {
		if !enriched[i].NeedsEnrichment {
			continue
		}
		if contacts, ok := found[enriched[i].ClientID]; ok {
			enriched[i].Suggestions = contactsearch.Suggestions(contacts, contactsearch.SourceAmplemarket)
		}
		if len(enriched[i].Suggestions) > 0 {
			summary.WithSuggestions++
		}
	}

	zap.L().Info("import rows enriched",
		zap.Int("total", summary.Total), zap.Int("needs_enrichment", summary.NeedsEnrichment),
		zap.Int("with_suggestions", summary.WithSuggestions), zap.Int("dropped", summary.EnrichDropped))
	return enriched, summary
}

// ConfirmImport writes confirmed rows to the store. Rows whose client id is
// already stored keep their row. New rows are appended after the highest
// stored row, so blank sheet rows between contacts are never reused. Saved
// rows carry the normalized phone as mobile and start as pending.
func (s *ImportService) ConfirmImport(ctx context.Context, rows []EnrichedRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	existing, err := s.store.GetAll(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "load contacts")
	}
	byClientID := make(map[string]entity.Contact, len(existing))
	nextRow := firstContactRow
	for _, c := range existing {
		byClientID[c.ClientID] = c
		if c.Row >= nextRow {
			nextRow = c.Row + 1
		}
	}

	contacts := make([]entity.Contact, 0, len(rows))
	for _, row := range rows {
		c := entity.Contact{
			ClientID:          row.ClientID,
			FirstName:         row.FirstName,
			LastName:          row.LastName,
			AccountName:       row.AccountName,
			CountryName:       row.Country,
			Phone:             row.Phone,
			CountryMobileCode: row.CountryMobileCode,
			Mobile:            row.NormalizedPhone,
			Email:             row.Email,
			Language:          row.Language,
			AccountOwner:      row.AccountOwner,
			Status:            entity.StatusPending,
		}
		if prev, ok := byClientID[row.ClientID]; ok {
			c.Row = prev.Row
			c.LastValidated = prev.LastValidated
			if c.Language == "" {
				c.Language = prev.Language
			}
			if c.AccountOwner == "" {
				c.AccountOwner = prev.AccountOwner
			}
		} else {
			c.Row = nextRow
			nextRow++
			byClientID[c.ClientID] = c
		}
		c.ID = entity.ContactIDForRow(c.Row)
		contacts = append(contacts, c)
	}

	if err := s.store.BatchUpdate(ctx, contacts); err != nil {
		return 0, eris.Wrap(err, "save imported contacts")
	}
	return len(contacts), nil
}
