package report

import (
	"fmt"
	"io"

	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/numutils"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the spreadsheet artifact.
const (
	SalesSheet   = "Sales"
	SummarySheet = "Summary"
)

// RenderSpreadsheet writes an xlsx workbook: the Sales sheet has one row per
// (period, product) and the Summary sheet holds the KPIs, audit counts and
// per-period subtotals.
func RenderSpreadsheet(w io.Writer, result *models.AggregationResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SalesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeSalesSheet(f, result, bold, money); err != nil {
		return err
	}
	if err := writeSummarySheet(f, result, bold, money); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSalesSheet(f *excelize.File, result *models.AggregationResult, bold, money int) error {
	if err := f.SetSheetRow(SalesSheet, "A1", &[]interface{}{periodHeader(result.Mode), "Product", "Revenue", "Units"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SalesSheet, "A1", "D1", bold); err != nil {
		return err
	}

	row := 2
	for _, b := range result.Buckets {
		for _, p := range b.Products {
			values := []interface{}{b.Key, p.Product, numutils.ToFloat(p.Revenue), numutils.ToFloat(p.Units)}
			if err := f.SetSheetRow(SalesSheet, cell(1, row), &values); err != nil {
				return err
			}
			row++
		}
	}
	if row > 2 {
		if err := f.SetCellStyle(SalesSheet, "C2", cell(3, row-1), money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SalesSheet, "A", "B", 24); err != nil {
		return err
	}
	return f.SetColWidth(SalesSheet, "C", "D", 14)
}

func writeSummarySheet(f *excelize.File, result *models.AggregationResult, bold, money int) error {
	kpis := result.KPIs
	audit := result.Audit
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total revenue", numutils.ToFloat(kpis.TotalRevenue)},
		{"Total units", numutils.ToFloat(kpis.TotalUnits)},
		{"Distinct products", kpis.DistinctProducts},
		{"Top product (revenue)", kpis.TopProduct},
		{"Top product revenue", numutils.ToFloat(kpis.TopProductRevenue)},
		{"Top product (units)", kpis.TopProductByUnits},
		{"Time mode", result.Mode.String()},
		{"Rows read", audit.TotalRows},
		{"Rows aggregated", audit.ResolvedRows},
		{"Rows without revenue", audit.UnresolvedRevenue},
		{"Rows without product", audit.MissingProduct},
		{"Rows with unknown period", audit.UnknownBucket},
	}
	for i := range rows {
		if err := f.SetSheetRow(SummarySheet, cell(1, i+1), &rows[i]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", bold); err != nil {
		return err
	}
	for _, r := range []int{2, 6} {
		if err := f.SetCellStyle(SummarySheet, cell(2, r), cell(2, r), money); err != nil {
			return err
		}
	}

	start := len(rows) + 2
	if err := f.SetSheetRow(SummarySheet, cell(1, start), &[]interface{}{periodHeader(result.Mode), "Revenue", "Units"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, cell(1, start), cell(3, start), bold); err != nil {
		return err
	}
	for i, b := range result.Buckets {
		values := []interface{}{b.Key, numutils.ToFloat(b.Revenue), numutils.ToFloat(b.Units)}
		if err := f.SetSheetRow(SummarySheet, cell(1, start+1+i), &values); err != nil {
			return err
		}
	}
	if len(result.Buckets) > 0 {
		if err := f.SetCellStyle(SummarySheet, cell(2, start+1), cell(2, start+len(result.Buckets)), money); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 28)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func periodHeader(mode models.TimeMode) string {
	switch mode {
	case models.ByDate:
		return "Date"
	case models.ByYearMonth:
		return "Year-Month"
	case models.ByYear:
		return "Year"
	case models.ByMonth:
		return "Month"
	}
	return "Period"
}
