// Package phone turns free-form spreadsheet phone columns into canonical
// +<digits> candidates and decides whether a record needs enrichment.
package phone

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minInternationalDigits = 7
	maxInternationalDigits = 15
	minNormalizedLength    = 8
	maxNormalizedLength    = 16
)

// Issue messages attached to a Result.
const (
	IssueEmpty              = "Phone number is empty"
	IssueTooShort           = "Phone number too short"
	IssueTooLong            = "Phone number too long"
	IssueFromMobileCode     = "Added country code from mobile code column"
	IssueUnknownCountry     = "Could not determine country code"
	IssueNoCountryInfo      = "No country code information available"
	IssueNoPhoneProvided    = "No phone number provided"
	issueInferredFromFormat = "Inferred country code +%s from country name"
)

var e164Split = regexp.MustCompile(`^\+(\d{1,3})(\d+)$`)

// Result is the outcome of normalizing a single phone value.
type Result struct {
	Original       string   `json:"original"`
	Normalized     string   `json:"normalized"`
	IsValid        bool     `json:"isValid"`
	CountryCode    string   `json:"countryCode,omitempty"`
	NationalNumber string   `json:"nationalNumber,omitempty"`
	Issues         []string `json:"issues"`
}

// IssueInferredCountry is the issue text used when the calling code came from the country name.
func IssueInferredCountry(code string) string {
	return fmt.Sprintf(issueInferredFromFormat, code)
}

// Normalize builds a canonical candidate for phone using, in order of
// preference, an explicit leading '+', the mobile country code column and the
// country name. Any value that did not already carry a '+' is flagged with an
// issue even when the result is valid.
func Normalize(phone, mobileCountryCode, countryName string) Result {
	cleaned := cleanPhone(phone)
	code := digitsOnly(mobileCountryCode)
	issues := make([]string, 0, 1)

	if cleaned == "" || cleaned == "+" {
		return Result{
			Original: phone,
			IsValid:  false,
			Issues:   []string{IssueEmpty},
		}
	}

	var normalized string
	switch {
	case strings.HasPrefix(cleaned, "+"):
		normalized = cleaned
		digits := len(normalized) - 1
		if digits < minInternationalDigits {
			issues = append(issues, IssueTooShort)
		} else if digits > maxInternationalDigits {
			issues = append(issues, IssueTooLong)
		}
	case code != "":
		normalized = "+" + code + cleaned
		issues = append(issues, IssueFromMobileCode)
	case countryName != "":
		if resolved, ok := ResolveCountryCode(countryName); ok {
			normalized = "+" + resolved + cleaned
			issues = append(issues, IssueInferredCountry(resolved))
		} else {
			normalized = cleaned
			issues = append(issues, IssueUnknownCountry)
		}
	default:
		normalized = cleaned
		issues = append(issues, IssueNoCountryInfo)
	}

	result := Result{
		Original:   phone,
		Normalized: normalized,
		IsValid:    isCanonical(normalized),
		Issues:     issues,
	}
	if m := e164Split.FindStringSubmatch(normalized); m != nil {
		result.CountryCode = m[1]
		result.NationalNumber = m[2]
	}
	return result
}

// CombinePhoneFields prefers the mobile column over the phone column and
// normalizes whichever is present.
func CombinePhoneFields(phone, mobile, mobileCountryCode, countryName string) Result {
	primary := strings.TrimSpace(mobile)
	if primary == "" {
		primary = strings.TrimSpace(phone)
	}
	if primary == "" {
		return Result{
			IsValid: false,
			Issues:  []string{IssueNoPhoneProvided},
		}
	}
	return Normalize(primary, mobileCountryCode, countryName)
}

func isCanonical(normalized string) bool {
	if !strings.HasPrefix(normalized, "+") {
		return false
	}
	if len(normalized) < minNormalizedLength || len(normalized) > maxNormalizedLength {
		return false
	}
	return digitsOnly(normalized[1:]) == normalized[1:]
}

// cleanPhone keeps digits plus a '+' when it is the first retained character.
func cleanPhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
