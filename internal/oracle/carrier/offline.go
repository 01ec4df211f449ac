package carrier

import (
	"context"
	"time"

	"github.com/nyaruka/phonenumbers"

	"github.com/octobees/wa-validator/internal/metrics"
)

// OfflineClient answers lookups from libphonenumber metadata without network
// calls. It knows number plans, not live subscriber state.
type OfflineClient struct {
	lang string
}

// NewOfflineClient returns a client that names carriers in English.
func NewOfflineClient() *OfflineClient {
	return &OfflineClient{lang: "en"}
}

// Lookup parses phone and classifies it. Unparseable input is a definite
// invalid answer, not a failure.
func (c *OfflineClient) Lookup(_ context.Context, phone string) (*Result, error) {
	start := time.Now()
	defer func() { metrics.ObserveOracle("offline", time.Since(start), nil) }()

	cleaned := cleanNumber(phone)
	num, err := phonenumbers.Parse(cleaned, "")
	if err != nil {
		return NewResult(false, cleaned, "", "", LineTypeUnknown, ""), nil
	}

	carrierName, _ := phonenumbers.GetCarrierForNumber(num, c.lang)
	return NewResult(
		phonenumbers.IsValidNumber(num),
		phonenumbers.Format(num, phonenumbers.E164),
		phonenumbers.GetRegionCodeForNumber(num),
		phonenumbers.Format(num, phonenumbers.NATIONAL),
		lineTypeName(phonenumbers.GetNumberType(num)),
		carrierName,
	), nil
}

func lineTypeName(t phonenumbers.PhoneNumberType) string {
	switch t {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return LineTypeMobile
	case phonenumbers.FIXED_LINE:
		return LineTypeLandline
	case phonenumbers.VOIP:
		return LineTypeVoIP
	case phonenumbers.TOLL_FREE:
		return "tollFree"
	case phonenumbers.PREMIUM_RATE:
		return "premium"
	case phonenumbers.SHARED_COST:
		return "sharedCost"
	case phonenumbers.PERSONAL_NUMBER:
		return "personal"
	case phonenumbers.PAGER:
		return "pager"
	case phonenumbers.UAN:
		return "uan"
	case phonenumbers.VOICEMAIL:
		return "voicemail"
	default:
		return LineTypeUnknown
	}
}
