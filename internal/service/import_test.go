package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/wa-validator/internal/entity"
	"github.com/octobees/wa-validator/internal/oracle/contactsearch"
	"github.com/octobees/wa-validator/internal/phone"
)

func TestAnalyzeRows(t *testing.T) {
	rows := []ImportRow{
		{ClientID: "A", FirstName: "Ana", Phone: "+351912345678"},
		{ClientID: "B", FirstName: "Bo", Phone: "5551234", Country: "Brazil"},
		{ClientID: "C", FirstName: "Cy"},
	}

	enriched, summary := AnalyzeRows(rows)
	require.Len(t, enriched, 3)

	assert.Equal(t, "+351912345678", enriched[0].NormalizedPhone)
	assert.True(t, enriched[0].PhoneValid)
	assert.False(t, enriched[0].NeedsEnrichment)

	assert.Equal(t, "+555551234", enriched[1].NormalizedPhone)
	assert.True(t, enriched[1].NeedsEnrichment)
	assert.Equal(t, []string{phone.IssueInferredCountry("55")}, enriched[1].PhoneIssues)

	assert.False(t, enriched[2].PhoneValid)
	assert.Equal(t, []string{phone.IssueNoPhoneProvided}, enriched[2].PhoneIssues)

	assert.Equal(t, ImportSummary{Total: 3, Valid: 2, NeedsEnrichment: 2}, summary)
}

func TestImportEnrichAttachesSuggestions(t *testing.T) {
	search := &stubSearch{
		configured: true,
		results: map[string][]contactsearch.Contact{
			"Bo Reis": {{Phone: "+5511987654321", Confidence: 0.7}},
		},
	}
	enricher := NewEnrichmentService(search, WithSleeper((&recordingSleeper{}).Sleep))
	svc := NewImportService(&stubStore{}, enricher)

	rows := []ImportRow{
		{ClientID: "A", FirstName: "Ana", Phone: "+351912345678"},
		{ClientID: "B", FirstName: "Bo", LastName: "Reis", Phone: "5551234", Country: "Brazil", Email: "bo@acme.com", AccountName: "Acme"},
		{ClientID: "C", FirstName: "Cy", Mobile: "912345678"},
	}
	enriched, summary := svc.Enrich(context.Background(), rows)

	require.Len(t, search.calls, 2)
	assert.Contains(t, search.calls, contactsearch.Params{Name: "Bo Reis", Email: "bo@acme.com", Company: "Acme", CurrentPhone: "+555551234"})

	assert.Empty(t, enriched[0].Suggestions)
	assert.Equal(t, []contactsearch.Suggestion{{Phone: "+5511987654321", Confidence: 0.7, Source: "Amplemarket"}}, enriched[1].Suggestions)
	assert.Empty(t, enriched[2].Suggestions)
	assert.Equal(t, 1, summary.WithSuggestions)
	assert.Equal(t, 2, summary.NeedsEnrichment)
}

func TestImportEnrichWithoutSearch(t *testing.T) {
	svc := NewImportService(&stubStore{}, NewEnrichmentService(&stubSearch{}))
	enriched, summary := svc.Enrich(context.Background(), []ImportRow{{ClientID: "X", Phone: "123"}})
	require.Len(t, enriched, 1)
	assert.NotNil(t, enriched[0].Suggestions)
	assert.Equal(t, 0, summary.WithSuggestions)
}

func TestConfirmImport(t *testing.T) {
	existing := fakeContacts(3)
	existing[1].ClientID = "KNOWN"
	existing[1].LastValidated = "2026-01-01T00:00:00Z"
	existing[1].Language = "pt"
	store := &stubStore{contacts: existing}
	svc := NewImportService(store, nil)

	rows := []EnrichedRow{
		{ImportRow: ImportRow{ClientID: "NEW-1", FirstName: "Ana", Phone: "912345678", Country: "Portugal"}, NormalizedPhone: "+351912345678"},
		{ImportRow: ImportRow{ClientID: "KNOWN", FirstName: "Bo", Phone: "5551234"}, NormalizedPhone: "+555551234"},
		{ImportRow: ImportRow{ClientID: "NEW-2", FirstName: "Cy"}, NormalizedPhone: ""},
	}

	n, err := svc.ConfirmImport(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, store.batchCalls, 1)
	saved := store.batchCalls[0]
	require.Len(t, saved, 3)

	assert.Equal(t, 5, saved[0].Row)
	assert.Equal(t, "customer-5", saved[0].ID)
	assert.Equal(t, "+351912345678", saved[0].Mobile)
	assert.Equal(t, "912345678", saved[0].Phone)
	assert.Equal(t, "Portugal", saved[0].CountryName)
	assert.Equal(t, entity.StatusPending, saved[0].Status)

	assert.Equal(t, existing[1].Row, saved[1].Row)
	assert.Equal(t, existing[1].ID, saved[1].ID)
	assert.Equal(t, "2026-01-01T00:00:00Z", saved[1].LastValidated)
	assert.Equal(t, "pt", saved[1].Language)
	assert.Equal(t, entity.StatusPending, saved[1].Status)

	assert.Equal(t, 6, saved[2].Row, "rows matching stored contacts do not consume a new row")
}

func TestConfirmImportSkipsBlankSheetRows(t *testing.T) {
	existing := []entity.Contact{
		{ID: "customer-2", ClientID: "A", Row: 2},
		{ID: "customer-4", ClientID: "B", Row: 4},
	}
	store := &stubStore{contacts: existing}

	rows := []EnrichedRow{
		{ImportRow: ImportRow{ClientID: "NEW"}, NormalizedPhone: "+351912345678"},
		{ImportRow: ImportRow{ClientID: "NEW-2"}, NormalizedPhone: "+351912345679"},
	}
	_, err := NewImportService(store, nil).ConfirmImport(context.Background(), rows)
	require.NoError(t, err)

	require.Len(t, store.batchCalls, 1)
	saved := store.batchCalls[0]
	require.Len(t, saved, 2)
	assert.Equal(t, 5, saved[0].Row)
	assert.Equal(t, "customer-5", saved[0].ID)
	assert.Equal(t, 6, saved[1].Row)
	for _, c := range saved {
		assert.NotEqual(t, 4, c.Row, "client B on row 4 must not be overwritten")
	}
}

func TestConfirmImportIntoEmptySheet(t *testing.T) {
	store := &stubStore{}
	_, err := NewImportService(store, nil).ConfirmImport(context.Background(), []EnrichedRow{
		{ImportRow: ImportRow{ClientID: "FIRST"}},
	})
	require.NoError(t, err)

	require.Len(t, store.batchCalls, 1)
	assert.Equal(t, 2, store.batchCalls[0][0].Row)
	assert.Equal(t, "customer-2", store.batchCalls[0][0].ID)
}

func TestConfirmImportErrors(t *testing.T) {
	svc := NewImportService(&stubStore{getErr: errors.New("no sheet")}, nil)
	_, err := svc.ConfirmImport(context.Background(), []EnrichedRow{{ImportRow: ImportRow{ClientID: "A"}}})
	assert.ErrorContains(t, err, "no sheet")

	svc = NewImportService(&stubStore{batchErr: errors.New("write failed")}, nil)
	_, err = svc.ConfirmImport(context.Background(), []EnrichedRow{{ImportRow: ImportRow{ClientID: "A"}}})
	assert.ErrorContains(t, err, "write failed")

	store := &stubStore{}
	n, err := NewImportService(store, nil).ConfirmImport(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.batchCalls)
}
