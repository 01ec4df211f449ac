package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/wa-validator/internal/entity"
	"github.com/octobees/wa-validator/internal/oracle/carrier"
	"github.com/octobees/wa-validator/internal/oracle/contactsearch"
	"github.com/octobees/wa-validator/internal/validator"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.Echo{}
	return e
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details []string        `json:"details"`
}

func jsonRequest(t *testing.T, method, target string, payload any) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body []byte
	switch p := payload.(type) {
	case string:
		body = []byte(p)
	default:
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func multipartRequest(t *testing.T, field, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import/upload", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req, httptest.NewRecorder()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

type memoryStore struct {
	mu       sync.Mutex
	contacts []entity.Contact
	updated  []entity.Contact
	batches  [][]entity.Contact
	err      error
}

func (s *memoryStore) GetAll(context.Context) ([]entity.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]entity.Contact(nil), s.contacts...), nil
}

func (s *memoryStore) Update(_ context.Context, c entity.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, c)
	return s.err
}

func (s *memoryStore) BatchUpdate(_ context.Context, contacts []entity.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, contacts)
	return s.err
}

func sampleContacts() []entity.Contact {
	return []entity.Contact{
		{ID: "customer-2", ClientID: "C-1", FirstName: "Ana", LastName: "Lima", Mobile: "+351912345678", Status: entity.StatusPending, Row: 2},
		{ID: "customer-3", ClientID: "C-2", FirstName: "Bo", Phone: "+5511987654321", Status: entity.StatusPending, Row: 3},
		{ID: "customer-4", ClientID: "C-3", FirstName: "Cy", Status: entity.StatusPending, Row: 4},
	}
}

type stubCarrier struct {
	err error
}

func (s stubCarrier) Lookup(_ context.Context, phone string) (*carrier.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return carrier.NewResult(true, phone, "PT", phone, carrier.LineTypeMobile, "MEO"), nil
}

type stubSearcher struct {
	configured bool
	results    []contactsearch.Contact
	enriched   *contactsearch.Contact
	err        error
	params     []contactsearch.Params
}

func (s *stubSearcher) Configured() bool { return s.configured }

func (s *stubSearcher) Search(_ context.Context, p contactsearch.Params) ([]contactsearch.Contact, error) {
	s.params = append(s.params, p)
	return s.results, s.err
}

func (s *stubSearcher) Enrich(_ context.Context, email string) (*contactsearch.Contact, error) {
	return s.enriched, s.err
}

func noSleep(context.Context, time.Duration) error { return nil }
