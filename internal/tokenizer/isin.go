package tokenizer

import "regexp"

// isinShape matches the structural form of an ISIN: two letters, nine
// alphanumerics, one check digit.
var isinShape = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// knownPrefixes is the allow-list of national (and supranational, XS)
// two-letter ISIN prefixes accepted for standalone matches.
var knownPrefixes = map[string]bool{
	"AT": true, "AU": true, "BE": true, "BM": true, "CA": true,
	"CH": true, "CN": true, "DE": true, "DK": true, "ES": true,
	"FI": true, "FR": true, "GB": true, "GG": true, "GI": true,
	"GR": true, "HK": true, "IE": true, "IL": true, "IT": true,
	"JE": true, "JP": true, "KY": true, "LI": true, "LU": true,
	"NL": true, "NO": true, "NZ": true, "PT": true, "SE": true,
	"SG": true, "US": true, "VG": true, "XS": true, "ZA": true,
}

// ValidISINShape reports whether code has the structural form of an ISIN
// with a known prefix. Used for anchor-prefixed matches ("ISIN: ..."), where
// OCR-damaged check digits are tolerated.
func ValidISINShape(code string) bool {
	return isinShape.MatchString(code) && knownPrefixes[code[:2]]
}

// ValidISIN reports whether code is a structurally valid ISIN with a known
// prefix and a correct Luhn check digit. Standalone matches must pass this;
// malformed codes are rejected rather than silently accepted.
func ValidISIN(code string) bool {
	if !ValidISINShape(code) {
		return false
	}

	// Expand letters to two-digit values (A=10 .. Z=35), then run the Luhn
	// check over the resulting digit string, check digit included.
	digits := make([]int, 0, len(code)*2)
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			digits = append(digits, v/10, v%10)
		default:
			return false
		}
	}

	sum := 0
	double := true // rightmost digit is the check digit, doubling starts left of it
	for i := len(digits) - 2; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	check := (10 - sum%10) % 10
	return check == digits[len(digits)-1]
}
