package normalize

import (
	"strconv"
	"strings"
)

// ParseNumber reads a numeric cell value, tolerating thousands separators,
// currency symbols, and trailing unit suffixes ("1,250 lbs", "$450.00").
// Returns 0, false for empty or non-numeric input.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || isNullLiteral(s) {
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")

	// Cut a trailing unit suffix: the numeric prefix up to the first
	// character that cannot be part of a number.
	end := len(s)
	for i, r := range s {
		if r >= '0' && r <= '9' || r == '.' || (i == 0 && (r == '-' || r == '+')) {
			continue
		}
		end = i
		break
	}
	s = strings.TrimSpace(s[:end])
	if s == "" || s == "-" || s == "+" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// CleanString trims whitespace and collapses internal whitespace runs.
func CleanString(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
