package models

import (
	"strings"
)

// TimeMode selects how rows are grouped in time.
type TimeMode string

const (
	ByDate      TimeMode = "date"
	ByYearMonth TimeMode = "year_month"
	ByYear      TimeMode = "year"
	ByMonth     TimeMode = "month"
)

// TimeModes lists every supported mode.
var TimeModes = []TimeMode{ByDate, ByYearMonth, ByYear, ByMonth}

// UnknownBucket is the sentinel key for rows whose temporal value could not be read.
const UnknownBucket = "Unknown"

// ParseTimeMode maps user input to a TimeMode. The second result is false for
// unrecognised input.
func ParseTimeMode(s string) (TimeMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date", "by_date":
		return ByDate, true
	case "year_month", "by_year_month", "yearmonth", "year-month":
		return ByYearMonth, true
	case "year", "by_year":
		return ByYear, true
	case "month", "by_month":
		return ByMonth, true
	}
	return "", false
}

// Valid reports whether m is one of the supported modes.
func (m TimeMode) Valid() bool {
	switch m {
	case ByDate, ByYearMonth, ByYear, ByMonth:
		return true
	}
	return false
}

func (m TimeMode) String() string {
	return string(m)
}
