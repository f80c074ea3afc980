package report

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipelineerror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fixedDir is an OutputDirResolver that never creates anything.
type fixedDir struct {
	path string
	err  error
}

func (d fixedDir) ResolveOutputDir() (string, error) { return d.path, d.err }

var fixedTime = time.Date(2024, 1, 31, 18, 30, 5, 0, time.UTC)

func newTestGenerator(t *testing.T, keepLatest bool) (*Generator, string) {
	t.Helper()
	dir := t.TempDir()
	g := NewGenerator(fixedDir{path: dir}, keepLatest, logging.NewMockLogger())
	g.SetClock(func() time.Time { return fixedTime })
	return g, dir
}

func sampleResult() *models.AggregationResult {
	d := decimal.NewFromInt
	return &models.AggregationResult{
		Mode: models.ByYearMonth,
		Buckets: []models.BucketTotals{
			{Key: "2024-01", Revenue: d(40), Units: d(3), Products: []models.ProductTotal{
				{Product: "A", Revenue: d(10), Units: d(2)},
				{Product: "Café", Revenue: d(30), Units: d(1)},
			}},
			{Key: "Unknown", Revenue: d(-5), Units: d(1), Products: []models.ProductTotal{
				{Product: "A", Revenue: d(-5), Units: d(1)},
			}},
		},
		Products: []models.ProductTotal{
			{Product: "A", Revenue: d(5), Units: d(3)},
			{Product: "Café", Revenue: d(30), Units: d(1)},
		},
		KPIs: models.KPIs{
			TotalRevenue: d(35), TotalUnits: d(4), DistinctProducts: 2,
			TopProduct: "Café", TopProductRevenue: d(30), TopProductByUnits: "A",
		},
		Audit: models.Audit{TotalRows: 5, ResolvedRows: 4, UnresolvedRevenue: 1, UnknownBucket: 1},
	}
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestGenerate_Spreadsheet(t *testing.T) {
	g, dir := newTestGenerator(t, false)

	artifact, err := g.Generate(sampleResult(), models.FormatSpreadsheet)
	require.NoError(t, err)
	assert.Equal(t, "sales_report_20240131_183005.xlsx", artifact.Name)
	assert.Equal(t, filepath.Join(dir, artifact.Name), artifact.Path)
	assert.Equal(t, "Café", artifact.Summary.TopProduct)
	assert.True(t, artifact.CreatedAt.Equal(fixedTime))

	f, err := excelize.OpenFile(artifact.Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SalesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Year-Month", "Product", "Revenue", "Units"}, rows[0])
	assert.Equal(t, "Café", rows[2][1])
	assert.Equal(t, "Unknown", rows[3][0])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, "Top product (revenue)", summary[4][0])
	assert.Equal(t, "Café", summary[4][1])
	assert.Equal(t, "Rows without revenue", summary[10][0])
	assert.Equal(t, "1", summary[10][1])
}

func TestGenerate_DocumentAndCSV(t *testing.T) {
	g, _ := newTestGenerator(t, false)

	pdf, err := g.Generate(sampleResult(), models.FormatDocument)
	require.NoError(t, err)
	assert.Equal(t, "summary_20240131_183005.pdf", pdf.Name)
	data, err := os.ReadFile(pdf.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	csvArtifact, err := g.Generate(sampleResult(), models.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "chart_series_20240131_183005.csv", csvArtifact.Name)
	data, err = os.ReadFile(csvArtifact.Path)
	require.NoError(t, err)
	assert.Equal(t, "label,revenue,units\n2024-01,40.00,3\nUnknown,-5.00,1\n", string(data))
}

func TestGenerate_CollidingNamesGetSuffix(t *testing.T) {
	g, _ := newTestGenerator(t, false)

	var got []string
	for i := 0; i < 3; i++ {
		a, err := g.Generate(sampleResult(), models.FormatCSV)
		require.NoError(t, err)
		got = append(got, a.Name)
	}
	assert.Equal(t, []string{
		"chart_series_20240131_183005.csv",
		"chart_series_20240131_183005_2.csv",
		"chart_series_20240131_183005_3.csv",
	}, got)
}

func TestGenerate_RenderFailureLeavesNoArtifact(t *testing.T) {
	g, dir := newTestGenerator(t, false)
	g.SetRenderer(models.FormatSpreadsheet, func(w io.Writer, _ *models.AggregationResult) error {
		_, _ = w.Write([]byte("PK\x03\x04 half a workbook"))
		return errors.New("disk full")
	})

	artifact, err := g.Generate(sampleResult(), models.FormatSpreadsheet)
	assert.Nil(t, artifact)

	var genErr *pipelineerror.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "spreadsheet", genErr.Format)
	assert.Empty(t, dirEntries(t, dir))

	reports, err := g.ListReports()
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestGenerate_UnwritableOutput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	g := NewGenerator(fixedDir{path: missing}, false, logging.NewMockLogger())

	_, err := g.Generate(sampleResult(), models.FormatDocument)
	var writeErr *pipelineerror.WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.NoDirExists(t, missing)
}

func TestGenerate_StorageUnavailable(t *testing.T) {
	storageErr := &pipelineerror.StorageUnavailableError{Path: "/nope", Err: errors.New("permission denied")}
	g := NewGenerator(fixedDir{err: storageErr}, false, logging.NewMockLogger())

	_, err := g.Generate(sampleResult(), models.FormatCSV)
	assert.ErrorIs(t, err, storageErr)
}

func TestPublishLatest(t *testing.T) {
	g, dir := newTestGenerator(t, true)

	artifacts, err := g.GenerateAll(sampleResult(), []models.ReportFormat{models.FormatSpreadsheet, models.FormatDocument})
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.ElementsMatch(t, []string{
		"sales_report_20240131_183005.xlsx",
		"summary_20240131_183005.pdf",
	}, dirEntries(t, dir))

	g.PublishLatest(artifacts)
	assert.ElementsMatch(t, []string{
		"sales_report_20240131_183005.xlsx",
		"summary_20240131_183005.pdf",
		"sales_report.xlsx",
		"summary.pdf",
	}, dirEntries(t, dir))
}

func TestPublishLatest_DisabledKeepsOnlyTimestampedFiles(t *testing.T) {
	g, dir := newTestGenerator(t, false)

	artifacts, err := g.GenerateAll(sampleResult(), []models.ReportFormat{models.FormatCSV})
	require.NoError(t, err)
	g.PublishLatest(artifacts)
	assert.Equal(t, []string{"chart_series_20240131_183005.csv"}, dirEntries(t, dir))
}

func TestGenerateAll_FailureRemovesEarlierArtifacts(t *testing.T) {
	g, dir := newTestGenerator(t, true)
	g.SetRenderer(models.FormatDocument, func(io.Writer, *models.AggregationResult) error {
		return errors.New("font missing")
	})

	artifacts, err := g.GenerateAll(sampleResult(), []models.ReportFormat{models.FormatSpreadsheet, models.FormatDocument})
	assert.Nil(t, artifacts)
	assert.Error(t, err)
	assert.Empty(t, dirEntries(t, dir))
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	g, _ := newTestGenerator(t, false)
	_, err := g.Generate(sampleResult(), models.ReportFormat("docx"))
	var genErr *pipelineerror.GenerationError
	assert.True(t, errors.As(err, &genErr))
}

func TestListReportsAndAnalytics(t *testing.T) {
	g, dir := newTestGenerator(t, false)

	_, err := g.GenerateAll(sampleResult(), []models.ReportFormat{models.FormatSpreadsheet, models.FormatDocument, models.FormatCSV})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600))

	older := filepath.Join(dir, "summary_20230101_000000.pdf")
	require.NoError(t, os.WriteFile(older, bytes.Repeat([]byte("x"), 2048), 0600))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	reports, err := g.ListReports()
	require.NoError(t, err)
	require.Len(t, reports, 4)
	assert.Equal(t, "summary_20230101_000000.pdf", reports[3].Name)
	assert.Equal(t, 2.0, reports[3].SizeKB)
	assert.Equal(t, "PDF", reports[3].Type)

	summary, err := g.Analytics()
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalReports)
	assert.Equal(t, 1, summary.SpreadsheetReports)
	assert.Equal(t, 2, summary.DocumentReports)
	assert.Equal(t, 1, summary.CSVReports)
	require.NotNil(t, summary.LatestReport)
	assert.Equal(t, reports[0].Name, summary.LatestReport.Name)
	assert.Greater(t, summary.TotalSizeKB, 2.0)
}

func TestAnalyze_Empty(t *testing.T) {
	summary := Analyze(nil)
	assert.Zero(t, summary.TotalReports)
	assert.Nil(t, summary.LatestReport)
}

func TestAnalytics_LatestSpreadsheetKPIs(t *testing.T) {
	dir := t.TempDir()
	logger := logging.NewMockLogger()
	g := NewGenerator(fixedDir{path: dir}, false, logger)
	g.SetClock(func() time.Time { return fixedTime })

	_, err := g.GenerateAll(sampleResult(), []models.ReportFormat{models.FormatSpreadsheet, models.FormatCSV})
	require.NoError(t, err)

	summary, err := g.Analytics()
	require.NoError(t, err)
	kpis := summary.LatestSpreadsheet
	require.NotNil(t, kpis)
	assert.Equal(t, "sales_report_20240131_183005.xlsx", kpis.Report)
	assert.Equal(t, 3, kpis.Rows)
	assert.True(t, kpis.TotalRevenue.Equal(decimal.NewFromInt(35)), kpis.TotalRevenue.String())
	assert.Equal(t, "Café", kpis.TopProduct)

	// A newer spreadsheet that cannot be opened hides the KPIs without failing.
	broken := filepath.Join(dir, "sales_report_20991231_000000.xlsx")
	require.NoError(t, os.WriteFile(broken, []byte("not a workbook"), 0600))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(broken, future, future))

	summary, err = g.Analytics()
	require.NoError(t, err)
	assert.Nil(t, summary.LatestSpreadsheet)
	assert.Equal(t, 3, summary.TotalReports)
	assert.True(t, logger.HasEntry("WARN", "Failed to read latest spreadsheet"))
}

func TestLatestSpreadsheetKPIs(t *testing.T) {
	tests := []struct {
		name    string
		result  func() *models.AggregationResult
		wantNil bool
		rows    int
		revenue string
		top     string
	}{
		{name: "fractional revenue", result: func() *models.AggregationResult {
			r := sampleResult()
			r.Buckets[0].Products[0].Revenue = decimal.RequireFromString("1234.56")
			r.Buckets[1].Products[0].Revenue = decimal.RequireFromString("0.10")
			return r
		}, rows: 3, revenue: "1264.66", top: "A"},
		{name: "revenue tie goes to first product", result: func() *models.AggregationResult {
			r := sampleResult()
			r.Buckets[0].Products[0].Revenue = decimal.NewFromInt(35)
			return r
		}, rows: 3, revenue: "60", top: "A"},
		{name: "no rows", result: func() *models.AggregationResult {
			return &models.AggregationResult{Mode: models.ByYear}
		}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, dir := newTestGenerator(t, false)
			_, err := g.Generate(tt.result(), models.FormatSpreadsheet)
			require.NoError(t, err)
			reports, err := ListReports(dir)
			require.NoError(t, err)

			kpis, err := LatestSpreadsheetKPIs(dir, reports)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, kpis)
				return
			}
			require.NotNil(t, kpis)
			assert.Equal(t, tt.rows, kpis.Rows)
			assert.True(t, kpis.TotalRevenue.Equal(decimal.RequireFromString(tt.revenue)), kpis.TotalRevenue.String())
			assert.Equal(t, tt.top, kpis.TopProduct)
		})
	}
}

func TestLatestSpreadsheetKPIs_NoSpreadsheet(t *testing.T) {
	kpis, err := LatestSpreadsheetKPIs(t.TempDir(), []models.ReportInfo{{Name: "summary.pdf", Format: models.FormatDocument}})
	assert.NoError(t, err)
	assert.Nil(t, kpis)
}
