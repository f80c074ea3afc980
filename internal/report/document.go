package report

import (
	"fmt"
	"io"

	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/numutils"

	"github.com/go-pdf/fpdf"
)

// RenderDocument writes a one-page A4 PDF summary: the KPI block followed by a
// table of per-period subtotals. Individual rows are not reproduced.
func RenderDocument(w io.Writer, result *models.AggregationResult) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sales Summary", true)
	pdf.SetCreator("salesdash", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Sales Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Grouped by %s", periodHeader(result.Mode))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	kpis := result.KPIs
	kpiRows := [][2]string{
		{"Total revenue", numutils.FormatAmount(kpis.TotalRevenue)},
		{"Total units", numutils.FormatUnits(kpis.TotalUnits)},
		{"Distinct products", fmt.Sprintf("%d", kpis.DistinctProducts)},
		{"Top product", fmt.Sprintf("%s (%s)", kpis.TopProduct, numutils.FormatAmount(kpis.TopProductRevenue))},
		{"Best seller by units", kpis.TopProductByUnits},
	}
	for _, r := range kpiRows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 7, r[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(r[1]), "", 1, "L", false, 0, "")
	}

	if excluded := result.Audit.UnresolvedRevenue + result.Audit.MissingProduct; excluded > 0 || result.Audit.UnknownBucket > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("%d of %d rows excluded (no revenue or product); %d rows with an unreadable period.",
			excluded, result.Audit.TotalRows, result.Audit.UnknownBucket), "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(70, 8, periodHeader(result.Mode), "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "Revenue", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Units", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, b := range result.Buckets {
		pdf.CellFormat(70, 7, tr(b.Key), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, numutils.FormatAmount(b.Revenue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, numutils.FormatUnits(b.Units), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, numutils.FormatAmount(kpis.TotalRevenue), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, numutils.FormatUnits(kpis.TotalUnits), "1", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build document: %w", err)
	}
	return pdf.Output(w)
}
