package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"autosales/salesdash/internal/fileutils"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/numutils"
	"autosales/salesdash/internal/pipelineerror"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ListReports returns the report files in the output directory, most recently
// modified first.
func (g *Generator) ListReports() ([]models.ReportInfo, error) {
	dir, err := g.dirs.ResolveOutputDir()
	if err != nil {
		return nil, err
	}
	return ListReports(dir)
}

// ListReports returns the report files in dir, most recently modified first.
func ListReports(dir string) ([]models.ReportInfo, error) {
	files, err := fileutils.ListFilesWithExtension(dir, ".xlsx", ".pdf", ".csv")
	if err != nil {
		return nil, &pipelineerror.StorageUnavailableError{Path: dir, Err: err}
	}

	reports := make([]models.ReportInfo, 0, len(files))
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		format, _ := models.FormatForExtension(filepath.Ext(path))
		reports = append(reports, models.ReportInfo{
			Name:      info.Name(),
			Format:    format,
			Type:      format.Label(),
			SizeKB:    roundKB(info.Size()),
			UpdatedAt: info.ModTime(),
		})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].UpdatedAt.Equal(reports[j].UpdatedAt) {
			return reports[i].UpdatedAt.After(reports[j].UpdatedAt)
		}
		return reports[i].Name > reports[j].Name
	})
	return reports, nil
}

// Analytics summarises the report listing and reads the KPIs of the newest
// spreadsheet. An unreadable spreadsheet is logged and leaves its KPIs nil.
func (g *Generator) Analytics() (*models.AnalyticsSummary, error) {
	dir, err := g.dirs.ResolveOutputDir()
	if err != nil {
		return nil, err
	}
	reports, err := ListReports(dir)
	if err != nil {
		return nil, err
	}

	summary := Analyze(reports)
	kpis, err := LatestSpreadsheetKPIs(dir, reports)
	if err != nil {
		g.logger.WithError(err).Warn("Failed to read latest spreadsheet",
			logging.F(logging.FieldDirectory, dir))
	}
	summary.LatestSpreadsheet = kpis
	return summary, nil
}

// Analyze computes counts per type, the total size and the latest report of a
// listing sorted newest first.
func Analyze(reports []models.ReportInfo) *models.AnalyticsSummary {
	summary := &models.AnalyticsSummary{
		Reports:      reports,
		TotalReports: len(reports),
	}
	var totalKB float64
	for _, r := range reports {
		switch r.Format {
		case models.FormatSpreadsheet:
			summary.SpreadsheetReports++
		case models.FormatDocument:
			summary.DocumentReports++
		case models.FormatCSV:
			summary.CSVReports++
		}
		totalKB += r.SizeKB
	}
	summary.TotalSizeKB = math.Round(totalKB*100) / 100
	if len(reports) > 0 {
		latest := reports[0]
		summary.LatestReport = &latest
	}
	return summary
}

// LatestSpreadsheetKPIs reads the Sales sheet of the first spreadsheet in a
// listing sorted newest first. It returns nil without error when there is no
// spreadsheet or no row with both a product and a readable revenue.
func LatestSpreadsheetKPIs(dir string, reports []models.ReportInfo) (*models.SpreadsheetKPIs, error) {
	for _, r := range reports {
		if r.Format == models.FormatSpreadsheet {
			return readSpreadsheetKPIs(filepath.Join(dir, r.Name))
		}
	}
	return nil, nil
}

func readSpreadsheetKPIs(path string) (*models.SpreadsheetKPIs, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Raw values, since the revenue column carries a thousands-separator format.
	rows, err := f.GetRows(SalesSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", SalesSheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	productCol, revenueCol := -1, -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "product":
			productCol = i
		case "revenue", "total":
			revenueCol = i
		}
	}
	if productCol < 0 || revenueCol < 0 {
		return nil, nil
	}

	kpis := &models.SpreadsheetKPIs{Report: filepath.Base(path), TotalRevenue: decimal.Zero}
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, row := range rows[1:] {
		if productCol >= len(row) || revenueCol >= len(row) {
			continue
		}
		product := strings.TrimSpace(row[productCol])
		revenue, ok := numutils.ParseNumber(row[revenueCol])
		if product == "" || !ok {
			continue
		}
		if _, seen := totals[product]; !seen {
			order = append(order, product)
		}
		totals[product] = totals[product].Add(revenue)
		kpis.TotalRevenue = kpis.TotalRevenue.Add(revenue)
		kpis.Rows++
	}
	if kpis.Rows == 0 {
		return nil, nil
	}

	// Ties go to the product seen first.
	for _, product := range order {
		if kpis.TopProduct == "" || totals[product].GreaterThan(totals[kpis.TopProduct]) {
			kpis.TopProduct = product
		}
	}
	return kpis, nil
}

func roundKB(size int64) float64 {
	return math.Round(float64(size)/1024*100) / 100
}
