package models

import (
	"github.com/shopspring/decimal"
)

// ResolvedRow is a table row whose product and effective revenue are known.
type ResolvedRow struct {
	Index   int
	Product string
	Revenue decimal.Decimal
	Units   decimal.Decimal
	Cells   Row
}

// ResolvedRows is the output of column resolution.
type ResolvedRows struct {
	Rows []ResolvedRow
	// Unresolved holds indexes of rows whose revenue could not be determined.
	Unresolved []int
	// MissingProduct holds indexes of rows with a blank product cell.
	MissingProduct []int
	TotalRows      int
}

// Bucket is a time-grouping key. Rank orders buckets; Unknown ranks last.
type Bucket struct {
	Key  string
	Rank int
}

// IsUnknown reports whether the bucket is the sentinel for unreadable dates.
func (b Bucket) IsUnknown() bool {
	return b.Key == UnknownBucket
}

// BucketedRow is a resolved row assigned to a time bucket.
type BucketedRow struct {
	ResolvedRow
	Bucket Bucket
}

// BucketedRows is the output of the time bucketizer.
type BucketedRows struct {
	Mode  TimeMode
	Rows  []BucketedRow
	Audit Audit
}

// Audit counts the rows excluded or routed to sentinels along the way, so totals
// can be reconciled against the number of rows read.
type Audit struct {
	TotalRows         int `json:"total_rows" yaml:"total_rows"`
	ResolvedRows      int `json:"resolved_rows" yaml:"resolved_rows"`
	UnresolvedRevenue int `json:"unresolved_revenue" yaml:"unresolved_revenue"`
	MissingProduct    int `json:"missing_product" yaml:"missing_product"`
	UnknownBucket     int `json:"unknown_bucket" yaml:"unknown_bucket"`
}
