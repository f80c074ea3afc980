package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReportFormat identifies a report artifact type.
type ReportFormat string

const (
	FormatSpreadsheet ReportFormat = "spreadsheet"
	FormatDocument    ReportFormat = "document"
	FormatCSV         ReportFormat = "csv"
)

// DefaultReportFormats are generated when the caller does not choose.
var DefaultReportFormats = []ReportFormat{FormatSpreadsheet, FormatDocument}

// ParseReportFormat accepts format names and their file extensions.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spreadsheet", "excel", "xlsx":
		return FormatSpreadsheet, nil
	case "document", "pdf":
		return FormatDocument, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported report format: %s", s)
}

// ParseReportFormats parses a list, dropping duplicates while keeping order.
func ParseReportFormats(values []string) ([]ReportFormat, error) {
	var out []ReportFormat
	seen := make(map[ReportFormat]bool)
	for _, v := range values {
		f, err := ParseReportFormat(v)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Extension returns the file extension (with dot) for the format.
func (f ReportFormat) Extension() string {
	switch f {
	case FormatSpreadsheet:
		return ".xlsx"
	case FormatDocument:
		return ".pdf"
	case FormatCSV:
		return ".csv"
	}
	return ""
}

// Label is the human-readable type shown in report listings.
func (f ReportFormat) Label() string {
	switch f {
	case FormatSpreadsheet:
		return "Excel"
	case FormatDocument:
		return "PDF"
	case FormatCSV:
		return "CSV"
	}
	return string(f)
}

// FormatForExtension maps a file extension back to its format.
func FormatForExtension(ext string) (ReportFormat, bool) {
	switch strings.ToLower(ext) {
	case ".xlsx":
		return FormatSpreadsheet, true
	case ".pdf":
		return FormatDocument, true
	case ".csv":
		return FormatCSV, true
	}
	return "", false
}

// ReportArtifact describes a published report file.
type ReportArtifact struct {
	Format    ReportFormat `json:"format"`
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	CreatedAt time.Time    `json:"created_at"`
	Summary   KPIs         `json:"summary"`
}

// ReportInfo is a report file found in the output directory.
type ReportInfo struct {
	Name      string       `json:"name"`
	Format    ReportFormat `json:"format"`
	Type      string       `json:"type"`
	SizeKB    float64      `json:"size_kb"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// AnalyticsSummary aggregates the report listing for the analytics view.
type AnalyticsSummary struct {
	Reports            []ReportInfo `json:"reports"`
	TotalReports       int          `json:"total_reports"`
	SpreadsheetReports int          `json:"excel_reports"`
	DocumentReports    int          `json:"pdf_reports"`
	CSVReports         int          `json:"csv_reports"`
	TotalSizeKB        float64      `json:"total_size_kb"`
	LatestReport       *ReportInfo  `json:"latest_report,omitempty"`

	// LatestSpreadsheet is read back from the newest spreadsheet; nil when
	// there is none or it cannot be read.
	LatestSpreadsheet *SpreadsheetKPIs `json:"latest_excel_kpis"`
}

// SpreadsheetKPIs summarise the Sales sheet of a published spreadsheet.
type SpreadsheetKPIs struct {
	Report       string          `json:"report"`
	Rows         int             `json:"rows"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TopProduct   string          `json:"top_product"`
}
