package phone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var bareInternational = regexp.MustCompile(`^\d{1,3}\d{6,}$`)

// FormatForDisplay renders a stored phone value for humans. Valid
// international numbers are grouped the libphonenumber way; bare digit
// strings that look like they carry a calling code get a '+' prefix.
func FormatForDisplay(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "No phone"
	}
	if strings.HasPrefix(value, "+") {
		if num, err := phonenumbers.Parse(value, ""); err == nil && phonenumbers.IsValidNumber(num) {
			return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
		}
		return value
	}
	if bareInternational.MatchString(value) {
		return "+" + value
	}
	return value
}
