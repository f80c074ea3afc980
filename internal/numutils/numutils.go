// Package numutils provides the numeric cell parsing and formatting shared by the
// mapper and the report renderers.
package numutils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber parses a trimmed decimal literal such as "12", "-3.50" or "+7".
// Empty cells and anything else yield ok=false; no thousands separators or
// currency symbols are accepted.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	if s == "" || strings.HasPrefix(s, "+") {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatAmount renders a money value with two decimals and no thousands separators.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatUnits renders a unit count without trailing zeros ("3", "2.5").
func FormatUnits(units decimal.Decimal) string {
	return units.String()
}

// ToFloat converts a decimal for renderers that only take float64 (chart cells, PDF text).
func ToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
