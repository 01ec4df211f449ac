package phone

import "strings"

// countryCallingCodes maps spreadsheet country names to E.164 calling codes.
// Several aliases may share a code.
var countryCallingCodes = map[string]string{
	"United States":       "1",
	"USA":                 "1",
	"US":                  "1",
	"Canada":              "1",
	"Mexico":              "52",
	"Brazil":              "55",
	"Argentina":           "54",
	"Chile":               "56",
	"Colombia":            "57",
	"Peru":                "51",
	"Venezuela":           "58",
	"Spain":               "34",
	"United Kingdom":      "44",
	"UK":                  "44",
	"Germany":             "49",
	"France":              "33",
	"Italy":               "39",
	"Portugal":            "351",
	"Netherlands":         "31",
	"Belgium":             "32",
	"Switzerland":         "41",
	"Austria":             "43",
	"Poland":              "48",
	"Romania":             "40",
	"Czech Republic":      "420",
	"India":               "91",
	"China":               "86",
	"Japan":               "81",
	"South Korea":         "82",
	"Australia":           "61",
	"New Zealand":         "64",
	"South Africa":        "27",
	"Egypt":               "20",
	"Nigeria":             "234",
	"Kenya":               "254",
	"Ghana":               "233",
	"Panama":              "507",
	"Costa Rica":          "506",
	"Guatemala":           "502",
	"Honduras":            "504",
	"El Salvador":         "503",
	"Nicaragua":           "505",
	"Ecuador":             "593",
	"Bolivia":             "591",
	"Paraguay":            "595",
	"Uruguay":             "598",
	"Dominican Republic":  "1",
	"Puerto Rico":         "1",
	"Cuba":                "53",
	"Jamaica":             "1",
	"Trinidad and Tobago": "1",
	"Bahamas":             "1",
	"Barbados":            "1",
	"Estonia":             "372",
	"Latvia":              "371",
	"Lithuania":           "370",
}

// ResolveCountryCode returns the calling code for an exact (case-sensitive,
// whitespace-trimmed) country name. The second value is false when the name is
// not in the table.
func ResolveCountryCode(countryName string) (string, bool) {
	code, ok := countryCallingCodes[strings.TrimSpace(countryName)]
	return code, ok
}
