package contactsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/metrics"
)

const (
	defaultBaseURL          = "https://api.amplemarket.com"
	defaultTimeout          = 10 * time.Second
	defaultSearchConfidence = 0.5
	defaultEnrichConfidence = 0.8
	maxResponseBytes        = 4 << 20
)

// HTTPClient abstracts the transport so tests can stub responses.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AmplemarketClient searches people through the Amplemarket API.
type AmplemarketClient struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	strategies []Strategy
	now        func() time.Time
}

// Option configures optional dependencies.
type Option func(*AmplemarketClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *AmplemarketClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API host.
func WithBaseURL(base string) Option {
	return func(c *AmplemarketClient) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// WithStrategies replaces the endpoint order.
func WithStrategies(strategies ...Strategy) Option {
	return func(c *AmplemarketClient) {
		if len(strategies) > 0 {
			c.strategies = strategies
		}
	}
}

// NewAmplemarketClient builds a client for apiKey.
func NewAmplemarketClient(apiKey string, opts ...Option) *AmplemarketClient {
	c := &AmplemarketClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		strategies: DefaultStrategies(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *AmplemarketClient) Configured() bool {
	return c.apiKey != ""
}

// Search tries each strategy in order and returns the first non-empty result.
// A strategy that answers with no usable contacts is not a failure; only when
// every strategy errors is ErrCallFailed returned.
func (c *AmplemarketClient) Search(ctx context.Context, params Params) ([]Contact, error) {
	if !c.Configured() {
		return nil, ErrUnconfigured
	}
	if params.Domain == "" {
		params.Domain = searchDomain(params)
	}

	log := zap.L().With(zap.String("oracle", "amplemarket"))
	answered := false
	var lastErr error

	for _, strategy := range c.strategies {
		req, err := strategy.Build(ctx, c.baseURL, params)
		if err != nil {
			lastErr = eris.Wrapf(err, "build %s", strategy.Name)
			continue
		}

		start := time.Now()
		contacts, err := c.searchWith(req)
		metrics.ObserveOracle("amplemarket", time.Since(start), err)
		if err != nil {
			log.Debug("search strategy failed", zap.String("strategy", strategy.Name), zap.Error(err))
			lastErr = err
			continue
		}
		answered = true
		if len(contacts) > 0 {
			log.Debug("search strategy matched", zap.String("strategy", strategy.Name), zap.Int("contacts", len(contacts)))
			return contacts, nil
		}
	}

	if answered {
		return []Contact{}, nil
	}
	if lastErr == nil {
		lastErr = eris.New("no strategies configured")
	}
	return nil, eris.Wrap(ErrCallFailed, lastErr.Error())
}

// Enrich looks up a single person by email. It returns nil when the service
// knows no phone for them.
func (c *AmplemarketClient) Enrich(ctx context.Context, email string) (*Contact, error) {
	if !c.Configured() {
		return nil, ErrUnconfigured
	}

	target := c.baseURL + "/people/enrich?" + url.Values{"email": {email}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "build enrich request")
	}

	start := time.Now()
	body, err := c.do(req)
	metrics.ObserveOracle("amplemarket", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(ErrCallFailed, "decode enrich response")
	}
	if firstString(raw, "phone") == "" {
		return nil, nil
	}

	contact := c.toContact(raw, "enriched", defaultEnrichConfidence)
	if contact.Email == "" {
		contact.Email = email
	}
	return &contact, nil
}

func (c *AmplemarketClient) searchWith(req *http.Request) ([]Contact, error) {
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Contacts []map[string]any `json:"contacts"`
		People   []map[string]any `json:"people"`
		Results  []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(ErrCallFailed, "decode search response")
	}

	raw := payload.Contacts
	if len(raw) == 0 {
		raw = payload.People
	}
	if len(raw) == 0 {
		raw = payload.Results
	}

	contacts := make([]Contact, 0, min(len(raw), MaxResults))
	for _, item := range raw {
		if firstString(item, "phone", "mobile_phone", "phone_number") == "" {
			continue
		}
		contacts = append(contacts, c.toContact(item, "contact", defaultSearchConfidence))
		if len(contacts) == MaxResults {
			break
		}
	}
	return contacts, nil
}

func (c *AmplemarketClient) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(ErrCallFailed, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, eris.Wrap(ErrCallFailed, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Wrapf(ErrCallFailed, "%s %s responded with status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}

func (c *AmplemarketClient) toContact(raw map[string]any, idPrefix string, defaultConfidence float64) Contact {
	id := firstString(raw, "id")
	if id == "" {
		id = fmt.Sprintf("%s-%d", idPrefix, c.now().UnixNano())
	}
	confidence, ok := firstNumber(raw, "confidence", "score")
	if !ok {
		confidence = defaultConfidence
	}
	return Contact{
		ID:         id,
		Name:       firstString(raw, "name", "full_name"),
		Email:      firstString(raw, "email"),
		Phone:      firstString(raw, "phone", "mobile_phone", "phone_number"),
		Company:    firstString(raw, "company", "company_name"),
		Position:   firstString(raw, "position", "title"),
		Confidence: min(max(confidence, 0), 1),
	}
}

// firstString returns the first non-empty value among keys. Numeric ids are
// rendered without a fraction.
func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// firstNumber returns the first non-zero number among keys.
func firstNumber(raw map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := raw[key].(float64); ok && v != 0 {
			return v, true
		}
	}
	return 0, false
}
