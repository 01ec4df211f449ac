// Package contactsearch finds candidate phone numbers for a person through an
// external people-search service.
package contactsearch

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/idna"
)

// MaxResults caps how many contacts a single search returns.
const MaxResults = 10

var (
	// ErrUnconfigured is returned when the service has no API key.
	ErrUnconfigured = eris.New("contact search not configured")
	// ErrCallFailed is returned when every request to the service failed.
	ErrCallFailed = eris.New("contact search call failed")
)

// Params describes the person being searched for.
type Params struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Company      string `json:"company,omitempty"`
	Domain       string `json:"domain,omitempty"`
	CurrentPhone string `json:"currentPhone,omitempty"`
}

// Empty reports whether no search criteria are set.
func (p Params) Empty() bool {
	return strings.TrimSpace(p.Name) == "" &&
		strings.TrimSpace(p.Email) == "" &&
		strings.TrimSpace(p.Company) == "" &&
		strings.TrimSpace(p.Domain) == ""
}

// Contact is one person returned by the service.
type Contact struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Company    string  `json:"company"`
	Position   string  `json:"position"`
	Confidence float64 `json:"confidence"`
}

// SourceAmplemarket labels suggestions found through Amplemarket.
const SourceAmplemarket = "Amplemarket"

// Suggestion is a candidate phone number for a contact.
type Suggestion struct {
	Phone      string  `json:"phone"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Suggestions converts search results into phone suggestions, preserving order.
func Suggestions(contacts []Contact, source string) []Suggestion {
	out := make([]Suggestion, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, Suggestion{Phone: c.Phone, Confidence: c.Confidence, Source: source})
	}
	return out
}

// Client searches for contacts.
type Client interface {
	Search(ctx context.Context, params Params) ([]Contact, error)
	Configured() bool
}

// searchDomain returns the explicit domain or the ASCII form of the email's domain.
func searchDomain(p Params) string {
	if domain := strings.TrimSpace(p.Domain); domain != "" {
		return domain
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	ascii, err := idna.Lookup.ToASCII(email[at+1:])
	if err != nil {
		return ""
	}
	return ascii
}
