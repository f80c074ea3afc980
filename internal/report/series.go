package report

import (
	"io"

	"autosales/salesdash/internal/common"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/numutils"
)

// seriesRecord is one chart point of the CSV export.
type seriesRecord struct {
	Label   string `csv:"label"`
	Revenue string `csv:"revenue"`
	Units   string `csv:"units"`
}

// RenderSeriesCSV writes the chart series, one record per period.
func RenderSeriesCSV(w io.Writer, result *models.AggregationResult) error {
	records := make([]seriesRecord, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		records = append(records, seriesRecord{
			Label:   b.Key,
			Revenue: numutils.FormatAmount(b.Revenue),
			Units:   numutils.FormatUnits(b.Units),
		})
	}
	return common.WriteRecords(w, records, common.DefaultDelimiter)
}
