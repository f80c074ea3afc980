// Package bucket assigns resolved sales rows to time buckets according to a
// TimeMode. Rows whose temporal cell cannot be read go to the "Unknown" bucket.
package bucket

import (
	"fmt"
	"math"
	"time"

	"autosales/salesdash/internal/dateutils"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipelineerror"
)

// unknownRank sorts the Unknown bucket after every real key.
const unknownRank = math.MaxInt

// Unknown is the bucket for rows without a readable temporal value.
var Unknown = models.Bucket{Key: models.UnknownBucket, Rank: unknownRank}

// keyFunc derives the bucket for a single row.
type keyFunc func(models.Row) (models.Bucket, bool)

// Bucketizer groups resolved rows into time buckets.
type Bucketizer struct {
	logger logging.Logger
}

// NewBucketizer creates a new Bucketizer.
func NewBucketizer(logger logging.Logger) *Bucketizer {
	return &Bucketizer{logger: logger}
}

// Bucket assigns every resolved row to a bucket for mode. It fails with a
// BucketError for an unsupported mode and with MissingTemporalColumnError when the
// mapping has no column the mode can use. Individual unreadable cells are routed
// to Unknown and counted.
func (b *Bucketizer) Bucket(rows *models.ResolvedRows, mode models.TimeMode, mapping models.ColumnMapping) (*models.BucketedRows, error) {
	keyOf, err := keyFuncFor(mode, mapping.Normalized())
	if err != nil {
		return nil, err
	}

	out := &models.BucketedRows{
		Mode: mode,
		Rows: make([]models.BucketedRow, 0, len(rows.Rows)),
		Audit: models.Audit{
			TotalRows:         rows.TotalRows,
			ResolvedRows:      len(rows.Rows),
			UnresolvedRevenue: len(rows.Unresolved),
			MissingProduct:    len(rows.MissingProduct),
		},
	}

	for _, row := range rows.Rows {
		bucket, ok := keyOf(row.Cells)
		if !ok {
			bucket = Unknown
			out.Audit.UnknownBucket++
		}
		out.Rows = append(out.Rows, models.BucketedRow{ResolvedRow: row, Bucket: bucket})
	}

	if out.Audit.UnknownBucket > 0 {
		b.logger.Warn("Rows without a readable period were bucketed as Unknown",
			logging.F(logging.FieldMode, mode.String()),
			logging.F(logging.FieldBucket, Unknown.Key),
			logging.F(logging.FieldCount, out.Audit.UnknownBucket))
	}
	return out, nil
}

// keyFuncFor picks the source columns for mode, first configured wins:
//
//	date:       date
//	year_month: year + month, year_month, date
//	year:       year, year_month, date
//	month:      month, year_month, date
func keyFuncFor(mode models.TimeMode, mapping models.ColumnMapping) (keyFunc, error) {
	if !mode.Valid() {
		return nil, &pipelineerror.BucketError{Mode: mode.String(), Reason: "unsupported time mode"}
	}

	switch mode {
	case models.ByDate:
		if mapping.Date != "" {
			return dateKey(mapping.Date, byDate), nil
		}
	case models.ByYearMonth:
		switch {
		case mapping.Year != "" && mapping.Month != "":
			return splitYearMonthKey(mapping.Year, mapping.Month), nil
		case mapping.YearMonth != "":
			return yearMonthKey(mapping.YearMonth, byYearMonth), nil
		case mapping.Date != "":
			return dateKey(mapping.Date, byYearMonth), nil
		}
	case models.ByYear:
		switch {
		case mapping.Year != "":
			return yearKey(mapping.Year), nil
		case mapping.YearMonth != "":
			return yearMonthKey(mapping.YearMonth, byYear), nil
		case mapping.Date != "":
			return dateKey(mapping.Date, byYear), nil
		}
	case models.ByMonth:
		switch {
		case mapping.Month != "":
			return monthKey(mapping.Month), nil
		case mapping.YearMonth != "":
			return yearMonthKey(mapping.YearMonth, byMonth), nil
		case mapping.Date != "":
			return dateKey(mapping.Date, byMonth), nil
		}
	}
	return nil, &pipelineerror.MissingTemporalColumnError{Mode: mode.String()}
}

// coarsen turns a (year, month, day) triple into a bucket. Zero fields are unused.
type coarsen func(year int, month time.Month, day int) models.Bucket

func byDate(year int, month time.Month, day int) models.Bucket {
	return models.Bucket{
		Key:  fmt.Sprintf("%04d-%02d-%02d", year, int(month), day),
		Rank: year*10000 + int(month)*100 + day,
	}
}

func byYearMonth(year int, month time.Month, _ int) models.Bucket {
	return models.Bucket{Key: dateutils.FormatYearMonth(year, month), Rank: year*100 + int(month)}
}

func byYear(year int, _ time.Month, _ int) models.Bucket {
	return YearBucket(year)
}

func byMonth(_ int, month time.Month, _ int) models.Bucket {
	return MonthBucket(month)
}

// YearBucket returns the bucket for a calendar year.
func YearBucket(year int) models.Bucket {
	return models.Bucket{Key: fmt.Sprintf("%04d", year), Rank: year}
}

// MonthBucket returns the bucket for a calendar month, keyed "Jan".."Dec".
func MonthBucket(month time.Month) models.Bucket {
	return models.Bucket{Key: dateutils.MonthAbbr(month), Rank: int(month)}
}

func dateKey(column string, c coarsen) keyFunc {
	return func(row models.Row) (models.Bucket, bool) {
		t, _, err := dateutils.ParseDate(row[column])
		if err != nil {
			return models.Bucket{}, false
		}
		return c(t.Year(), t.Month(), t.Day()), true
	}
}

func yearMonthKey(column string, c coarsen) keyFunc {
	return func(row models.Row) (models.Bucket, bool) {
		year, month, ok := dateutils.ParseYearMonth(row[column])
		if !ok {
			return models.Bucket{}, false
		}
		return c(year, month, 0), true
	}
}

func splitYearMonthKey(yearColumn, monthColumn string) keyFunc {
	return func(row models.Row) (models.Bucket, bool) {
		year, okYear := dateutils.ParseYear(row[yearColumn])
		month, okMonth := dateutils.ParseMonth(row[monthColumn])
		if !okYear || !okMonth {
			return models.Bucket{}, false
		}
		return byYearMonth(year, month, 0), true
	}
}

func yearKey(column string) keyFunc {
	return func(row models.Row) (models.Bucket, bool) {
		year, ok := dateutils.ParseYear(row[column])
		if !ok {
			return models.Bucket{}, false
		}
		return YearBucket(year), true
	}
}

func monthKey(column string) keyFunc {
	return func(row models.Row) (models.Bucket, bool) {
		month, ok := dateutils.ParseMonth(row[column])
		if !ok {
			return models.Bucket{}, false
		}
		return MonthBucket(month), true
	}
}
