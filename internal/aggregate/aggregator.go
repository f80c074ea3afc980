// Package aggregate groups bucketed sales rows by (bucket, product) and computes
// the chart series and KPIs of a run.
package aggregate

import (
	"sort"

	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"

	"github.com/shopspring/decimal"
)

// Aggregator turns bucketed rows into an AggregationResult.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates a new Aggregator instance
func NewAggregator(logger logging.Logger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

type bucketAcc struct {
	bucket   models.Bucket
	revenue  decimal.Decimal
	units    decimal.Decimal
	products productTotals
}

// productTotals accumulates per-product sums in first-appearance order.
type productTotals struct {
	order []models.ProductTotal
	index map[string]int
}

func (p *productTotals) add(product string, revenue, units decimal.Decimal) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	i, ok := p.index[product]
	if !ok {
		i = len(p.order)
		p.index[product] = i
		p.order = append(p.order, models.ProductTotal{Product: product, Revenue: decimal.Zero, Units: decimal.Zero})
	}
	p.order[i].Revenue = p.order[i].Revenue.Add(revenue)
	p.order[i].Units = p.order[i].Units.Add(units)
}

// Aggregate groups rows by bucket and product. Buckets are ordered by rank with
// Unknown last; products keep the order in which they first appear in the input.
// The result depends only on the input, so repeated calls yield equal results.
func (a *Aggregator) Aggregate(rows *models.BucketedRows) *models.AggregationResult {
	var buckets []*bucketAcc
	bucketIndex := make(map[string]int)
	var global productTotals

	for _, row := range rows.Rows {
		i, ok := bucketIndex[row.Bucket.Key]
		if !ok {
			i = len(buckets)
			bucketIndex[row.Bucket.Key] = i
			buckets = append(buckets, &bucketAcc{bucket: row.Bucket, revenue: decimal.Zero, units: decimal.Zero})
		}
		acc := buckets[i]
		acc.revenue = acc.revenue.Add(row.Revenue)
		acc.units = acc.units.Add(row.Units)
		acc.products.add(row.Product, row.Revenue, row.Units)
		global.add(row.Product, row.Revenue, row.Units)
	}

	// Stable sort keeps first-appearance order for equal ranks.
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].bucket.Rank < buckets[j].bucket.Rank
	})

	result := &models.AggregationResult{
		Mode:     rows.Mode,
		Buckets:  make([]models.BucketTotals, 0, len(buckets)),
		Products: global.order,
		Audit:    rows.Audit,
	}
	if result.Products == nil {
		result.Products = []models.ProductTotal{}
	}
	for _, acc := range buckets {
		result.Buckets = append(result.Buckets, models.BucketTotals{
			Key:      acc.bucket.Key,
			Revenue:  acc.revenue,
			Units:    acc.units,
			Products: acc.products.order,
		})
	}
	result.KPIs = ComputeKPIs(result.Products)

	a.logger.Info("Aggregated sales rows",
		logging.F(logging.FieldMode, rows.Mode.String()),
		logging.F(logging.FieldCount, len(rows.Rows)),
		logging.F("buckets", len(result.Buckets)),
		logging.F("products", result.KPIs.DistinctProducts))

	return result
}

// ComputeKPIs derives the global KPIs from per-product totals given in
// first-appearance order. Ties for the top product go to the earliest product.
func ComputeKPIs(products []models.ProductTotal) models.KPIs {
	kpis := models.KPIs{
		TotalRevenue:      decimal.Zero,
		TotalUnits:        decimal.Zero,
		TopProductRevenue: decimal.Zero,
		DistinctProducts:  len(products),
	}

	var topUnits decimal.Decimal
	for i, p := range products {
		kpis.TotalRevenue = kpis.TotalRevenue.Add(p.Revenue)
		kpis.TotalUnits = kpis.TotalUnits.Add(p.Units)

		if i == 0 || p.Revenue.GreaterThan(kpis.TopProductRevenue) {
			kpis.TopProduct = p.Product
			kpis.TopProductRevenue = p.Revenue
		}
		if i == 0 || p.Units.GreaterThan(topUnits) {
			kpis.TopProductByUnits = p.Product
			topUnits = p.Units
		}
	}
	return kpis
}
