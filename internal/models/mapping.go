package models

import (
	"strings"
)

// ColumnMapping declares which table columns carry the semantic sales fields.
// An empty string means the field is not mapped.
type ColumnMapping struct {
	Product   string `json:"product" yaml:"product" validate:"required"`
	Revenue   string `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	Quantity  string `json:"quantity,omitempty" yaml:"quantity,omitempty" validate:"required_without=Revenue"`
	Price     string `json:"price,omitempty" yaml:"price,omitempty" validate:"required_without=Revenue"`
	Date      string `json:"date,omitempty" yaml:"date,omitempty"`
	YearMonth string `json:"year_month,omitempty" yaml:"year_month,omitempty"`
	Year      string `json:"year,omitempty" yaml:"year,omitempty"`
	Month     string `json:"month,omitempty" yaml:"month,omitempty"`
}

// MappedField pairs a semantic field name with the column it is mapped to.
type MappedField struct {
	Field  string
	Column string
}

// Fields lists the mapped fields in a fixed order, skipping unmapped ones.
func (m ColumnMapping) Fields() []MappedField {
	all := []MappedField{
		{Field: "product", Column: m.Product},
		{Field: "revenue", Column: m.Revenue},
		{Field: "quantity", Column: m.Quantity},
		{Field: "price", Column: m.Price},
		{Field: "date", Column: m.Date},
		{Field: "year_month", Column: m.YearMonth},
		{Field: "year", Column: m.Year},
		{Field: "month", Column: m.Month},
	}
	out := all[:0]
	for _, f := range all {
		if f.Column != "" {
			out = append(out, f)
		}
	}
	return out
}

// HasTemporalColumn reports whether any date-bearing column is mapped.
func (m ColumnMapping) HasTemporalColumn() bool {
	return m.Date != "" || m.YearMonth != "" || m.Year != "" || m.Month != ""
}

// Normalized returns the mapping with column names trimmed and lower-cased, the
// form the table reader gives header names.
func (m ColumnMapping) Normalized() ColumnMapping {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return ColumnMapping{
		Product:   norm(m.Product),
		Revenue:   norm(m.Revenue),
		Quantity:  norm(m.Quantity),
		Price:     norm(m.Price),
		Date:      norm(m.Date),
		YearMonth: norm(m.YearMonth),
		Year:      norm(m.Year),
		Month:     norm(m.Month),
	}
}
