package carrier

import (
	"context"
	"encoding/json"
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
	defaultTwilioBaseURL = "https://lookups.twilio.com"
	lookupFields         = "line_type_intelligence,carrier"
	defaultTimeout       = 10 * time.Second
)

// HTTPClient abstracts the transport so tests can stub responses.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TwilioClient calls the Twilio Lookup v2 API.
type TwilioClient struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient HTTPClient
}

// TwilioOption configures optional dependencies.
type TwilioOption func(*TwilioClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPClient) TwilioOption {
	return func(c *TwilioClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the client at another Lookup API host.
func WithBaseURL(base string) TwilioOption {
	return func(c *TwilioClient) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// NewTwilioClient builds a client. Missing credentials are reported on first use.
func NewTwilioClient(accountSID, authToken string, opts ...TwilioOption) *TwilioClient {
	c := &TwilioClient{
		accountSID: strings.TrimSpace(accountSID),
		authToken:  strings.TrimSpace(authToken),
		baseURL:    defaultTwilioBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.Configured() {
		zap.L().Warn("twilio credentials not configured")
	}
	return c
}

// Configured reports whether credentials are present.
func (c *TwilioClient) Configured() bool {
	return c.accountSID != "" && c.authToken != ""
}

type twilioLookup struct {
	Valid                bool   `json:"valid"`
	PhoneNumber          string `json:"phone_number"`
	CountryCode          string `json:"country_code"`
	NationalFormat       string `json:"national_format"`
	LineTypeIntelligence *struct {
		Type        string `json:"type"`
		CarrierName string `json:"carrier_name"`
	} `json:"line_type_intelligence"`
	Carrier *struct {
		Name string `json:"name"`
	} `json:"carrier"`
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Lookup fetches line type and carrier for phone.
func (c *TwilioClient) Lookup(ctx context.Context, phone string) (*Result, error) {
	if !c.Configured() {
		return nil, ErrClientNotInitialized
	}

	cleaned := cleanNumber(phone)
	endpoint := c.baseURL + "/v2/PhoneNumbers/" + url.PathEscape(cleaned) + "?Fields=" + url.QueryEscape(lookupFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "build twilio lookup request")
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	result, err := c.do(req)
	metrics.ObserveOracle("twilio", time.Since(start), err)
	if err != nil {
		return nil, eris.Wrapf(err, "lookup %s", cleaned)
	}
	return result, nil
}

func (c *TwilioClient) do(req *http.Request) (*Result, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(ErrLookupFailed, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(ErrLookupFailed, "read response body")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr twilioError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return nil, eris.Wrapf(ErrLookupFailed, "twilio %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, eris.Wrapf(ErrLookupFailed, "twilio responded with status %d", resp.StatusCode)
	}

	var payload twilioLookup
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(ErrLookupFailed, "decode twilio response")
	}

	var lineType, carrierName string
	if payload.LineTypeIntelligence != nil {
		lineType = payload.LineTypeIntelligence.Type
		carrierName = payload.LineTypeIntelligence.CarrierName
	}
	if carrierName == "" && payload.Carrier != nil {
		carrierName = payload.Carrier.Name
	}

	return NewResult(payload.Valid, payload.PhoneNumber, payload.CountryCode, payload.NationalFormat, lineType, carrierName), nil
}
