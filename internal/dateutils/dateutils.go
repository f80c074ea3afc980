// Package dateutils parses the loosely formatted date, year and month cells found in
// sales exports.
package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Common date layout constants used throughout the application
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutEuropean  = "2.1.2006"
	DateLayoutUS        = "1/2/2006"
	DateLayoutWithMonth = "2-Jan-2006"
	YearMonthLayout     = "2006-01"
)

// AcceptedDateFormats is tried in order when parsing a date cell; the first layout
// that parses wins. Month-first slash dates precede day-first ones.
var AcceptedDateFormats = []string{
	DateLayoutISO,
	DateLayoutFull,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	DateLayoutUS,
	"2/1/2006",
	DateLayoutEuropean,
	"2-1-2006",
	DateLayoutWithMonth,
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

// yearMonthFormats are tried before falling back to full dates.
var yearMonthFormats = []string{
	YearMonthLayout,
	"2006/01",
	"2006-1",
	"1/2006",
	"1-2006",
	"Jan 2006",
	"January 2006",
	"Jan-2006",
	"200601",
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseDate attempts to parse a date string using AcceptedDateFormats.
// Returns the parsed time and the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("unable to parse date: empty value")
	}

	for _, layout := range AcceptedDateFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, layout, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ParseYearMonth reads a combined year-month cell such as "2024-01", "01/2024" or
// "Jan 2024". Full dates are accepted and coarsened.
func ParseYearMonth(value string) (int, time.Month, bool) {
	value = CleanDateString(value)
	if value == "" {
		return 0, 0, false
	}
	for _, layout := range yearMonthFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Year(), t.Month(), true
		}
	}
	if t, _, err := ParseDate(value); err == nil {
		return t.Year(), t.Month(), true
	}
	return 0, 0, false
}

// ParseYear reads a year cell. Integral decimals such as "2024.0", which spreadsheet
// exports produce, are accepted.
func ParseYear(value string) (int, bool) {
	n, ok := parseIntegral(value)
	if !ok || n < 1 || n > 9999 {
		return 0, false
	}
	return n, true
}

// ParseMonth reads a month cell given as a number (1-12), an abbreviation ("Jan")
// or a full name ("January"), case-insensitively.
func ParseMonth(value string) (time.Month, bool) {
	value = CleanDateString(value)
	if value == "" {
		return 0, false
	}
	if n, ok := parseIntegral(value); ok {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}

	lower := strings.ToLower(value)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if lower == name || lower == name[:3] {
			return m, true
		}
	}
	return 0, false
}

// MonthAbbr returns the three-letter English abbreviation of m.
func MonthAbbr(m time.Month) string {
	return m.String()[:3]
}

// FormatYearMonth renders the canonical zero-padded YYYY-MM key.
func FormatYearMonth(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// CleanDateString trims a cell and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

func parseIntegral(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
