package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name        string
		dateStr     string
		expectedOk  bool
		expectedY   int
		expectedM   time.Month
		expectedD   int
		expectedFmt string
	}{
		{"ISO format", "2023-01-15", true, 2023, time.January, 15, DateLayoutISO},
		{"ISO with time", "2023-01-15 10:30:45", true, 2023, time.January, 15, DateLayoutFull},
		{"RFC3339", "2023-01-15T10:30:45+01:00", true, 2023, time.January, 15, time.RFC3339},
		{"US format wins over day-first", "01/02/2023", true, 2023, time.January, 2, DateLayoutUS},
		{"Day-first when month is out of range", "15/01/2023", true, 2023, time.January, 15, "2/1/2006"},
		{"European format", "15.01.2023", true, 2023, time.January, 15, DateLayoutEuropean},
		{"With month name", "15-Jan-2023", true, 2023, time.January, 15, DateLayoutWithMonth},
		{"Padded whitespace", "  2023-01-15 ", true, 2023, time.January, 15, DateLayoutISO},
		{"Empty string", "", false, 0, 0, 0, ""},
		{"Invalid format", "not a date", false, 0, 0, 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, format, err := ParseDate(tc.dateStr)

			if tc.expectedOk {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedY, date.Year())
				assert.Equal(t, tc.expectedM, date.Month())
				assert.Equal(t, tc.expectedD, date.Day())
				assert.Equal(t, tc.expectedFmt, format)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		year  int
		month time.Month
	}{
		{"2024-01", true, 2024, time.January},
		{"2024/11", true, 2024, time.November},
		{"3/2024", true, 2024, time.March},
		{"Feb 2024", true, 2024, time.February},
		{"September 2023", true, 2023, time.September},
		{"2024-01-20", true, 2024, time.January},
		{"2024-13", false, 0, 0},
		{"", false, 0, 0},
		{"soon", false, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			year, month, ok := ParseYearMonth(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.year, year)
			assert.Equal(t, tc.month, month)
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		input string
		year  int
		ok    bool
	}{
		{"2024", 2024, true},
		{" 1999 ", 1999, true},
		{"2024.0", 2024, true},
		{"2024.5", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		year, ok := ParseYear(tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
		assert.Equal(t, tc.year, year, tc.input)
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input string
		month time.Month
		ok    bool
	}{
		{"1", time.January, true},
		{"07", time.July, true},
		{"12.0", time.December, true},
		{"Mar", time.March, true},
		{"march", time.March, true},
		{"SEPTEMBER", time.September, true},
		{"13", 0, false},
		{"0", 0, false},
		{"Sept", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		month, ok := ParseMonth(tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
		assert.Equal(t, tc.month, month, tc.input)
	}
}

func TestMonthAbbrAndYearMonth(t *testing.T) {
	assert.Equal(t, "Jan", MonthAbbr(time.January))
	assert.Equal(t, "Dec", MonthAbbr(time.December))
	assert.Equal(t, "2024-03", FormatYearMonth(2024, time.March))
	assert.Equal(t, "0999-12", FormatYearMonth(999, time.December))
}

func TestCleanDateString(t *testing.T) {
	assert.Equal(t, "Jan 2, 2024", CleanDateString("  Jan   2,\t2024 "))
	assert.Equal(t, "", CleanDateString("   "))
}
