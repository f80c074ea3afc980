package common

import (
	"autosales/salesdash/internal/models"
)

// Column synonyms, in order of preference, used to propose a default mapping
// for a freshly uploaded table.
var (
	productColumns   = []string{"product", "item", "product_name"}
	revenueColumns   = []string{"total", "amount", "revenue", "sales"}
	quantityColumns  = []string{"quantity", "qty", "units"}
	priceColumns     = []string{"price", "unit_price", "rate"}
	dateColumns      = []string{"date", "order_date", "invoice_date"}
	yearMonthColumns = []string{"year_month", "period", "month_year"}
	yearColumns      = []string{"year"}
	monthColumns     = []string{"month"}
)

// GuessMapping proposes a ColumnMapping for a normalised header. Fields without a
// matching column are left empty. When nothing looks like a product column the
// first header column is used.
func GuessMapping(header []string) models.ColumnMapping {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	pick := func(candidates []string) string {
		for _, c := range candidates {
			if present[c] {
				return c
			}
		}
		return ""
	}

	mapping := models.ColumnMapping{
		Product:   pick(productColumns),
		Revenue:   pick(revenueColumns),
		Quantity:  pick(quantityColumns),
		Price:     pick(priceColumns),
		Date:      pick(dateColumns),
		YearMonth: pick(yearMonthColumns),
		Year:      pick(yearColumns),
		Month:     pick(monthColumns),
	}
	if mapping.Product == "" && len(header) > 0 {
		mapping.Product = header[0]
	}
	return mapping
}
