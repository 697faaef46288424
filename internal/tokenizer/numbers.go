package tokenizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseAmount normalizes a statement-formatted numeric string into a float64.
//
// Two grouping conventions are supported: apostrophe grouping (199'080, the
// Swiss convention) and comma/period grouping (199,080 or 199.080). When a
// single comma or period appears, the digit count after it decides its role:
// one or two digits is a decimal suffix, three digits is a grouping separator.
// swissLocale is the document-level majority vote on apostrophe grouping; in
// Swiss documents a period is always a decimal separator.
func ParseAmount(raw string, swissLocale bool) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty numeric string")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount %q", raw)
	}

	if strings.Contains(s, "'") {
		return parseApostropheGrouped(s, raw)
	}

	hasComma := strings.Contains(s, ",")
	hasPeriod := strings.Contains(s, ".")

	switch {
	case hasComma && hasPeriod:
		// The last separator is the decimal separator, the other groups.
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case hasComma:
		s = resolveSingleSeparator(s, ",", false)
	case hasPeriod:
		s = resolveSingleSeparator(s, ".", swissLocale)
	}

	return finishParse(s, raw)
}

// parseApostropheGrouped handles the Swiss convention: apostrophes group,
// any remaining comma or period is the decimal separator.
func parseApostropheGrouped(s, raw string) (float64, error) {
	parts := strings.Split(decimalHead(s), "'")
	for i, group := range parts {
		if i == 0 {
			if len(group) == 0 || len(group) > 3 {
				return 0, fmt.Errorf("invalid apostrophe grouping in %q", raw)
			}
			continue
		}
		if len(group) != 3 {
			return 0, fmt.Errorf("invalid apostrophe grouping in %q", raw)
		}
	}

	s = strings.ReplaceAll(s, "'", "")
	s = strings.Replace(s, ",", ".", 1)
	return finishParse(s, raw)
}

// decimalHead returns the integer portion of s, cutting at the first comma
// or period.
func decimalHead(s string) string {
	if i := strings.IndexAny(s, ".,"); i >= 0 {
		return s[:i]
	}
	return s
}

// resolveSingleSeparator rewrites s so that sep is interpreted either as a
// grouping or a decimal separator, by the trailing digit count rule.
func resolveSingleSeparator(s, sep string, alwaysDecimal bool) string {
	if strings.Count(s, sep) > 1 {
		// Repeated separators can only be grouping.
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.LastIndex(s, sep)
	trailing := len(s) - idx - 1
	if !alwaysDecimal && trailing == 3 {
		return strings.ReplaceAll(s, sep, "")
	}
	if sep == "," {
		return s[:idx] + "." + s[idx+1:]
	}
	return s
}

func finishParse(s, raw string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("amount %q is not a finite non-negative number", raw)
	}
	return v, nil
}
