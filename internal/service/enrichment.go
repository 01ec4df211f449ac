package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/batch"
	"github.com/octobees/wa-validator/internal/metrics"
	"github.com/octobees/wa-validator/internal/oracle/contactsearch"
)

// Enrichment limits. Candidates beyond MaxEnrichCandidates are dropped from
// a call and reported in EnrichStats.Dropped.
const (
	MaxEnrichCandidates = 20
	EnrichBatchSize     = 5
	EnrichBatchDelay    = time.Second
)

// EnrichmentCandidate is a contact whose phone should be looked up.
type EnrichmentCandidate struct {
	ClientID     string `json:"clientId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	CurrentPhone string `json:"currentPhone,omitempty"`
}

// EnrichStats summarises one BatchEnrich call.
type EnrichStats struct {
	Requested   int `json:"requested"`
	Processed   int `json:"processed"`
	Dropped     int `json:"dropped"`
	WithResults int `json:"withResults"`
	Failed      int `json:"failed"`
}

// EnrichmentService looks up alternative phone numbers for contacts.
type EnrichmentService struct {
	search contactsearch.Client
	rt     settings
}

// NewEnrichmentService builds an EnrichmentService over a contact-search client.
func NewEnrichmentService(search contactsearch.Client, opts ...Option) *EnrichmentService {
	return &EnrichmentService{search: search, rt: applyOptions(opts)}
}

type enrichOutcome struct {
	clientID string
	contacts []contactsearch.Contact
	failed   bool
}

// BatchEnrich searches for every candidate, five at a time with a one second
// pause between groups. A failed search yields an empty list for that
// candidate. Without a configured client no calls are made and the map is empty.
func (s *EnrichmentService) BatchEnrich(ctx context.Context, candidates []EnrichmentCandidate) (map[string][]contactsearch.Contact, EnrichStats) {
	results := make(map[string][]contactsearch.Contact)
	stats := EnrichStats{Requested: len(candidates)}

	if s.search == nil || !s.search.Configured() {
		zap.L().Warn("contact search not configured, skipping enrichment", zap.Int("candidates", len(candidates)))
		metrics.IncEnrichment("unconfigured")
		return results, stats
	}

	work := candidates
	if len(work) > MaxEnrichCandidates {
		zap.L().Info("limiting enrichment batch",
			zap.Int("limit", MaxEnrichCandidates), zap.Int("candidates", len(candidates)))
		work = work[:MaxEnrichCandidates]
	}
	runner := batch.Runner{Size: EnrichBatchSize, Delay: EnrichBatchDelay, Sleep: s.rt.sleep, Name: "enrich"}
	outcomes, err := batch.Run(ctx, runner, work, s.enrichOne)
	if err != nil {
		zap.L().Warn("enrichment stopped early", zap.Int("processed", len(outcomes)), zap.Error(err))
	}

	for _, o := range outcomes {
		results[o.clientID] = o.contacts
		if o.failed {
			stats.Failed++
		}
		if len(o.contacts) > 0 {
			stats.WithResults++
		}
	}
	stats.Processed = len(outcomes)
	stats.Dropped = len(candidates) - stats.Processed

	return results, stats
}

func (s *EnrichmentService) enrichOne(ctx context.Context, c EnrichmentCandidate) enrichOutcome {
	contacts, err := s.search.Search(ctx, contactsearch.Params{
		Name:         c.Name,
		Email:        c.Email,
		Company:      c.Company,
		CurrentPhone: c.CurrentPhone,
	})
	switch {
	case errors.Is(err, contactsearch.ErrUnconfigured):
		zap.L().Warn("contact search unconfigured", zap.String("client_id", c.ClientID))
		metrics.IncEnrichment("unconfigured")
		return enrichOutcome{clientID: c.ClientID, contacts: []contactsearch.Contact{}, failed: true}
	case err != nil:
		zap.L().Error("contact search failed", zap.String("client_id", c.ClientID), zap.Error(err))
		metrics.IncEnrichment("failed")
		return enrichOutcome{clientID: c.ClientID, contacts: []contactsearch.Contact{}, failed: true}
	}

	if len(contacts) > contactsearch.MaxResults {
		contacts = contacts[:contactsearch.MaxResults]
	}
	if contacts == nil {
		contacts = []contactsearch.Contact{}
	}
	if len(contacts) == 0 {
		metrics.IncEnrichment("empty")
	} else {
		metrics.IncEnrichment("found")
	}
	return enrichOutcome{clientID: c.ClientID, contacts: contacts}
}
