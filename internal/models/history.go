package models

import "time"

// ChartHistoryEntry is a saved aggregation configuration with its result snapshot.
type ChartHistoryEntry struct {
	Name       string             `json:"name" yaml:"name"`
	CreatedAt  time.Time          `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" yaml:"updated_at"`
	SourceFile string             `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	Mapping    ColumnMapping      `json:"mapping" yaml:"mapping"`
	Mode       TimeMode           `json:"mode" yaml:"mode"`
	Result     *AggregationResult `json:"result,omitempty" yaml:"result,omitempty"`
}

// ChartHistorySummary is the list view of an entry, without the result payload.
type ChartHistorySummary struct {
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	Mode         TimeMode  `json:"mode"`
	SourceFile   string    `json:"source_file,omitempty"`
	TotalRevenue string    `json:"total_revenue"`
	TopProduct   string    `json:"top_product"`
}

// Summary builds the list view of the entry.
func (e ChartHistoryEntry) Summary() ChartHistorySummary {
	s := ChartHistorySummary{
		Name:       e.Name,
		CreatedAt:  e.CreatedAt,
		Mode:       e.Mode,
		SourceFile: e.SourceFile,
	}
	if e.Result != nil {
		s.TotalRevenue = e.Result.KPIs.TotalRevenue.StringFixed(2)
		s.TopProduct = e.Result.KPIs.TopProduct
	}
	return s
}
