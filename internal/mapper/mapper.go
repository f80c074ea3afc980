// Package mapper resolves a user-declared column mapping against an uploaded
// table, producing rows with a known product, effective revenue and unit count.
package mapper

import (
	"strings"

	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/numutils"
	"autosales/salesdash/internal/pipelineerror"
	"autosales/salesdash/internal/validation"

	"github.com/shopspring/decimal"
)

// Mapper applies a ColumnMapping to RawTables.
type Mapper struct {
	logger logging.Logger
}

// NewMapper creates a new Mapper.
func NewMapper(logger logging.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// ValidateMapping checks the mapping on its own and then against the table
// header. It returns an InvalidMappingError or an UnknownColumnError naming the
// first mapped column that is not in the header.
func ValidateMapping(header []string, mapping models.ColumnMapping) error {
	if err := validation.Struct(mapping); err != nil {
		return &pipelineerror.InvalidMappingError{Reason: err.Error()}
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, f := range mapping.Fields() {
		if !present[f.Column] {
			return &pipelineerror.UnknownColumnError{Field: f.Field, Column: f.Column}
		}
	}
	return nil
}

// Resolve validates the mapping and computes the effective revenue of every row.
// Rows with a blank product or no resolvable revenue are excluded and their
// indexes recorded. The input table is not modified.
func (m *Mapper) Resolve(table *models.RawTable, mapping models.ColumnMapping) (*models.ResolvedRows, error) {
	mapping = mapping.Normalized()
	if err := ValidateMapping(table.Header, mapping); err != nil {
		return nil, err
	}

	out := &models.ResolvedRows{
		Rows:      make([]models.ResolvedRow, 0, len(table.Rows)),
		TotalRows: len(table.Rows),
	}

	for i, row := range table.Rows {
		product := strings.TrimSpace(row[mapping.Product])
		if product == "" {
			out.MissingProduct = append(out.MissingProduct, i)
			continue
		}

		revenue, err := effectiveRevenue(row, mapping)
		if err != nil {
			m.logger.Debug("Row has no usable revenue",
				logging.F(logging.FieldRow, i),
				logging.F(logging.FieldProduct, product),
				logging.F(logging.FieldError, err.Error()))
			out.Unresolved = append(out.Unresolved, i)
			continue
		}

		cells := make(models.Row, len(row))
		for k, v := range row {
			cells[k] = v
		}

		out.Rows = append(out.Rows, models.ResolvedRow{
			Index:   i,
			Product: product,
			Revenue: revenue,
			Units:   units(row, mapping),
			Cells:   cells,
		})
	}

	if len(out.Unresolved) > 0 || len(out.MissingProduct) > 0 {
		m.logger.Warn("Excluded rows during column resolution",
			logging.F(logging.FieldFile, table.Source),
			logging.F("unresolved_revenue", len(out.Unresolved)),
			logging.F("missing_product", len(out.MissingProduct)))
	}
	m.logger.Debug("Resolved rows",
		logging.F(logging.FieldFile, table.Source),
		logging.F(logging.FieldCount, len(out.Rows)))

	return out, nil
}

// effectiveRevenue uses the revenue cell when it parses, else quantity × price.
func effectiveRevenue(row models.Row, mapping models.ColumnMapping) (decimal.Decimal, error) {
	if mapping.Revenue != "" {
		if v, ok := numutils.ParseNumber(row[mapping.Revenue]); ok {
			return v, nil
		}
	}
	if mapping.Quantity != "" && mapping.Price != "" {
		qty, qtyOK := numutils.ParseNumber(row[mapping.Quantity])
		price, priceOK := numutils.ParseNumber(row[mapping.Price])
		if qtyOK && priceOK {
			return qty.Mul(price), nil
		}
	}
	return decimal.Zero, pipelineerror.ErrUnresolvedRevenue
}

func units(row models.Row, mapping models.ColumnMapping) decimal.Decimal {
	if mapping.Quantity != "" {
		if q, ok := numutils.ParseNumber(row[mapping.Quantity]); ok {
			return q
		}
	}
	return decimal.NewFromInt(1)
}
