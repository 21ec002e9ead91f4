package normalize

import (
	"log"
	"strconv"
	"strings"
	"time"
)

// DateOrder selects how an ambiguous all-numeric date is read when both of the
// first two groups could be a month.
type DateOrder string

const (
	OrderMonthFirst DateOrder = "MDY"
	OrderDayFirst   DateOrder = "DMY"
)

// CanonicalDateLayout is the string form this package emits and re-accepts;
// ExtractDateField is idempotent on it.
const CanonicalDateLayout = "2006-01-02"

// excelEpoch is the day-zero of spreadsheet date serials. Using Dec 30 1899
// (not Dec 31) absorbs the inherited convention that treats 1900 as a leap
// year, so serial 45292 lands on 2024-01-01.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Bounds for plausible spreadsheet serials: 1900 through roughly 2173.
const (
	minDateSerial = 1
	maxDateSerial = 100000
)

// ExtractDateField reads a date-typed value from a raw row. Empty or null-ish
// input yields nil. Numeric input is treated as a spreadsheet date serial.
// Unparseable input yields nil plus a diagnostic log line, never a guessed
// date: a silent misparse is worse than no date.
func ExtractDateField(row map[string]string, field string, order DateOrder) *time.Time {
	raw, ok := row[field]
	if !ok {
		return nil
	}
	return ParseDate(raw, order)
}

// ParseDate converts one raw cell value to a calendar date, or nil.
func ParseDate(raw string, order DateOrder) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" || isNullLiteral(s) {
		return nil
	}

	if serial, ok := asNumber(s); ok {
		return fromSerial(s, serial)
	}

	// Unambiguous layouts first; the canonical layout leads so canonical
	// output round-trips exactly.
	layouts := []string{
		CanonicalDateLayout,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006/01/02",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"02-Jan-2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}

	if d := parseNumericGroups(s, order); d != nil {
		return d
	}

	log.Printf("normalize.ParseDate: unparseable date value %q, returning absent", raw)
	return nil
}

// Canonical renders a parsed date back into the canonical string form.
func Canonical(t time.Time) string {
	return t.Format(CanonicalDateLayout)
}

func isNullLiteral(s string) bool {
	switch strings.ToLower(s) {
	case "null", "nil", "n/a", "na", "none", "-", "--":
		return true
	}
	return false
}

func asNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func fromSerial(raw string, serial float64) *time.Time {
	days := int(serial)
	if days < minDateSerial || days > maxDateSerial {
		log.Printf("normalize.ParseDate: numeric value %q out of date-serial range, returning absent", raw)
		return nil
	}
	d := excelEpoch.AddDate(0, 0, days)
	return &d
}

// parseNumericGroups handles delimiter-separated numeric dates with one
// deterministic ambiguity rule: a leading 4-digit group is the year (Y-M-D);
// otherwise the year is the last group, and of the first two groups, one
// exceeding 12 must be the day. When both are 12 or less the configured
// default order applies.
func parseNumericGroups(s string, order DateOrder) *time.Time {
	groups := splitNumericGroups(s)
	if len(groups) != 3 {
		return nil
	}

	a, b, c := groups[0], groups[1], groups[2]

	var year, month, day int
	switch {
	case len(a.text) == 4:
		year, month, day = a.val, b.val, c.val
	default:
		year = normalizeYear(c.val)
		first, second := a.val, b.val
		switch {
		case first > 12 && second <= 12:
			day, month = first, second
		case second > 12 && first <= 12:
			month, day = first, second
		case order == OrderDayFirst:
			day, month = first, second
		default:
			month, day = first, second
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 || year > 2200 {
		return nil
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject rollovers like Feb 30 that time.Date silently normalizes.
	if d.Day() != day || d.Month() != time.Month(month) {
		return nil
	}
	return &d
}

type numGroup struct {
	val  int
	text string
}

// normalizeYear widens a 2-digit year into the 2000s.
func normalizeYear(y int) int {
	if y < 100 {
		return 2000 + y
	}
	return y
}

func splitNumericGroups(s string) []numGroup {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.' || r == ' '
	})
	var groups []numGroup
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil
		}
		groups = append(groups, numGroup{val: v, text: f})
	}
	return groups
}
