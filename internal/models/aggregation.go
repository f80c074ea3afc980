package models

import (
	"github.com/shopspring/decimal"
)

// ProductTotal is the revenue and unit count of one product.
type ProductTotal struct {
	Product string          `json:"product" yaml:"product"`
	Revenue decimal.Decimal `json:"revenue" yaml:"revenue"`
	Units   decimal.Decimal `json:"units" yaml:"units"`
}

// BucketTotals holds one time bucket with its per-product breakdown.
type BucketTotals struct {
	Key      string          `json:"key" yaml:"key"`
	Revenue  decimal.Decimal `json:"revenue" yaml:"revenue"`
	Units    decimal.Decimal `json:"units" yaml:"units"`
	Products []ProductTotal  `json:"products" yaml:"products"`
}

// KPIs summarises an aggregation.
type KPIs struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue" yaml:"total_revenue"`
	TotalUnits        decimal.Decimal `json:"total_units" yaml:"total_units"`
	DistinctProducts  int             `json:"distinct_products" yaml:"distinct_products"`
	TopProduct        string          `json:"top_product" yaml:"top_product"`
	TopProductRevenue decimal.Decimal `json:"top_product_revenue" yaml:"top_product_revenue"`
	TopProductByUnits string          `json:"top_product_by_units" yaml:"top_product_by_units"`
}

// AggregationResult is the chart-ready summary of a pipeline run.
type AggregationResult struct {
	Mode     TimeMode       `json:"mode" yaml:"mode"`
	Buckets  []BucketTotals `json:"buckets" yaml:"buckets"`
	Products []ProductTotal `json:"products" yaml:"products"`
	KPIs     KPIs           `json:"kpis" yaml:"kpis"`
	Audit    Audit          `json:"audit" yaml:"audit"`
}

// Labels returns the bucket keys in chart order.
func (r *AggregationResult) Labels() []string {
	labels := make([]string, len(r.Buckets))
	for i, b := range r.Buckets {
		labels[i] = b.Key
	}
	return labels
}

// Values returns the per-bucket revenue in chart order.
func (r *AggregationResult) Values() []decimal.Decimal {
	values := make([]decimal.Decimal, len(r.Buckets))
	for i, b := range r.Buckets {
		values[i] = b.Revenue
	}
	return values
}

// Bucket returns the totals for key, if present.
func (r *AggregationResult) Bucket(key string) (BucketTotals, bool) {
	for _, b := range r.Buckets {
		if b.Key == key {
			return b, true
		}
	}
	return BucketTotals{}, false
}

// Product returns the product totals within the bucket, if present.
func (b BucketTotals) Product(name string) (ProductTotal, bool) {
	for _, p := range b.Products {
		if p.Product == name {
			return p, true
		}
	}
	return ProductTotal{}, false
}
