// Package carrier looks up whether a phone number is real and what kind of
// line it is.
package carrier

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrClientNotInitialized is returned when the lookup service has no credentials.
	ErrClientNotInitialized = eris.New("carrier lookup client not initialized")
	// ErrLookupFailed marks a lookup that reached the service but did not produce an answer.
	ErrLookupFailed = eris.New("carrier lookup failed")
)

// Line types reported by the lookup services.
const (
	LineTypeMobile   = "mobile"
	LineTypeVoIP     = "voip"
	LineTypeLandline = "landline"
	LineTypeUnknown  = "unknown"
)

// Client validates a single phone number.
type Client interface {
	Lookup(ctx context.Context, phone string) (*Result, error)
}

// Result describes the line behind a phone number.
type Result struct {
	IsValid             bool   `json:"isValid"`
	PhoneNumber         string `json:"phoneNumber"`
	CountryCode         string `json:"countryCode"`
	NationalFormat      string `json:"nationalFormat"`
	InternationalFormat string `json:"internationalFormat"`
	Carrier             string `json:"carrier,omitempty"`
	LineType            string `json:"lineType,omitempty"`
	IsMobile            bool   `json:"isMobile"`
	IsWhatsAppCapable   bool   `json:"isWhatsAppCapable"`
}

// NewResult fills the derived mobile and WhatsApp flags.
func NewResult(valid bool, phoneNumber, countryCode, nationalFormat, lineType, carrierName string) *Result {
	if lineType == "" {
		lineType = LineTypeUnknown
	}
	mobile := lineType == LineTypeMobile || lineType == LineTypeVoIP
	return &Result{
		IsValid:             valid,
		PhoneNumber:         phoneNumber,
		CountryCode:         countryCode,
		NationalFormat:      nationalFormat,
		InternationalFormat: phoneNumber,
		Carrier:             carrierName,
		LineType:            lineType,
		IsMobile:            mobile,
		IsWhatsAppCapable:   mobile && valid,
	}
}

// cleanNumber keeps digits and '+'.
func cleanNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
