// Package phone normalizes raw phone strings into digits plus calling and
// country codes for the CRM phone block.
package phone

import "strings"

// Number is a normalized phone number. CallingCode and CountryCode are empty
// when they could not be determined; Digits is always the best-effort digit
// string (possibly unannotated).
type Number struct {
	Digits      string
	CallingCode string // e.g. "+1"
	CountryCode string // ISO 3166-1 alpha-2, e.g. "CA"
}

// provinceToCountry maps Canadian province and territory abbreviations to
// their country code. Leads frequently carry "ON" or "QC" where a country
// code is expected.
var provinceToCountry = map[string]string{
	"ON": "CA", "QC": "CA", "BC": "CA", "AB": "CA", "MB": "CA",
	"SK": "CA", "NS": "CA", "NB": "CA", "NL": "CA", "PE": "CA",
	"YT": "CA", "NT": "CA", "NU": "CA",
}

// canadianAreaCodes holds area codes assigned to Canada, used to tell CA
// from US for bare 10-digit North American numbers.
var canadianAreaCodes = map[string]struct{}{
	"204": {}, "226": {}, "236": {}, "249": {}, "250": {}, "289": {},
	"306": {}, "343": {}, "365": {}, "403": {}, "416": {}, "418": {},
	"431": {}, "437": {}, "438": {}, "450": {}, "506": {}, "514": {},
	"519": {}, "548": {}, "579": {}, "581": {}, "587": {}, "604": {},
	"613": {}, "639": {}, "647": {}, "672": {}, "705": {}, "709": {},
	"742": {}, "753": {}, "778": {}, "780": {}, "782": {}, "807": {},
	"819": {}, "825": {}, "867": {}, "873": {}, "902": {}, "905": {},
	"942": {},
}

// NormalizeRegion uppercases a region hint and folds Canadian province
// abbreviations into "CA". Empty input stays empty.
func NormalizeRegion(hint string) string {
	hint = strings.ToUpper(strings.TrimSpace(hint))
	if country, ok := provinceToCountry[hint]; ok {
		return country
	}
	return hint
}

// Normalize parses a raw phone string into a Number. regionHint, when given,
// biases country resolution for North American numbers ("ON" and other
// provinces count as "CA").
//
// Normalize is total: it never fails, and in the worst case returns the
// cleaned digit string with no calling or country code.
func Normalize(raw, regionHint string) Number {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Number{}
	}

	hint := NormalizeRegion(regionHint)

	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(raw)

	if strings.HasPrefix(cleaned, "+") {
		digits := cleaned[1:]
		switch {
		case len(digits) == 11 && strings.HasPrefix(digits, "1"):
			country := hint
			if country == "" {
				country = "US"
			}
			return Number{Digits: digits[1:], CallingCode: "+1", CountryCode: country}
		case len(digits) >= 10 && strings.HasPrefix(digits, "33"):
			num := strings.TrimPrefix(digits[2:], "0")
			return Number{Digits: num, CallingCode: "+33", CountryCode: "FR"}
		case strings.HasPrefix(digits, "44"):
			num := strings.TrimPrefix(digits[2:], "0")
			return Number{Digits: num, CallingCode: "+44", CountryCode: "GB"}
		default:
			// International format we don't recognize.
			return Number{Digits: digits}
		}
	}

	// French local format without the + prefix, e.g. "06 10 20 30 40".
	if len(cleaned) == 10 && isDigits(cleaned) && cleaned[0] == '0' {
		return Number{Digits: cleaned[1:], CallingCode: "+33", CountryCode: "FR"}
	}

	// Bare North American 10-digit format.
	if len(cleaned) == 10 && isDigits(cleaned) {
		if hint != "" {
			return Number{Digits: cleaned, CallingCode: "+1", CountryCode: hint}
		}
		if _, ok := canadianAreaCodes[cleaned[:3]]; ok {
			return Number{Digits: cleaned, CallingCode: "+1", CountryCode: "CA"}
		}
		return Number{Digits: cleaned, CallingCode: "+1", CountryCode: "US"}
	}

	return Number{Digits: cleaned}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
