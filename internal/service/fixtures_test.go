package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/octobees/wa-validator/internal/entity"
	"github.com/octobees/wa-validator/internal/oracle/carrier"
	"github.com/octobees/wa-validator/internal/oracle/contactsearch"
)

func init() {
	gofakeit.Seed(20260301)
}

// fakeContacts builds n stored contacts on consecutive rows starting at 2.
func fakeContacts(n int) []entity.Contact {
	contacts := make([]entity.Contact, 0, n)
	for i := 0; i < n; i++ {
		row := i + 2
		contacts = append(contacts, entity.Contact{
			ID:          entity.ContactIDForRow(row),
			ClientID:    gofakeit.Numerify("C-#####"),
			FirstName:   gofakeit.FirstName(),
			LastName:    gofakeit.LastName(),
			AccountName: gofakeit.Company(),
			CountryName: "Portugal",
			Mobile:      gofakeit.Numerify("+3519########"),
			Email:       gofakeit.Email(),
			Status:      entity.StatusPending,
			Row:         row,
		})
	}
	return contacts
}

type stubStore struct {
	mu         sync.Mutex
	contacts   []entity.Contact
	getErr     error
	updateErr  error
	batchErr   error
	updated    []entity.Contact
	batchCalls [][]entity.Contact
}

func (s *stubStore) GetAll(context.Context) ([]entity.Contact, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make([]entity.Contact, len(s.contacts))
	copy(out, s.contacts)
	return out, nil
}

func (s *stubStore) Update(_ context.Context, c entity.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, c)
	return nil
}

func (s *stubStore) BatchUpdate(_ context.Context, contacts []entity.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchCalls = append(s.batchCalls, contacts)
	return s.batchErr
}

// stubLookup answers from a table keyed by phone; unknown phones are valid mobiles.
type stubLookup struct {
	mu      sync.Mutex
	results map[string]*carrier.Result
	errs    map[string]error
	calls   []string
}

func (l *stubLookup) Lookup(_ context.Context, phone string) (*carrier.Result, error) {
	l.mu.Lock()
	l.calls = append(l.calls, phone)
	l.mu.Unlock()

	if err, ok := l.errs[phone]; ok {
		return nil, err
	}
	if r, ok := l.results[phone]; ok {
		return r, nil
	}
	return carrier.NewResult(true, phone, "PT", phone, carrier.LineTypeMobile, "MEO"), nil
}

func (l *stubLookup) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// stubSearch records concurrency and answers per contact name.
type stubSearch struct {
	configured bool
	mu         sync.Mutex
	inFlight   int
	peak       int
	calls      []contactsearch.Params
	results    map[string][]contactsearch.Contact
	fail       map[string]bool
	hold       time.Duration
}

func (s *stubSearch) Configured() bool { return s.configured }

func (s *stubSearch) Search(_ context.Context, p contactsearch.Params) ([]contactsearch.Contact, error) {
	s.mu.Lock()
	s.calls = append(s.calls, p)
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
	s.mu.Unlock()

	if s.hold > 0 {
		time.Sleep(s.hold)
	}

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	if s.fail[p.Name] {
		return nil, errors.Join(contactsearch.ErrCallFailed, errors.New("timeout"))
	}
	return s.results[p.Name], nil
}

// recordingSleeper captures requested pauses without waiting.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return r.err
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
