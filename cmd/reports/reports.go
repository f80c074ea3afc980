// Package reports implements the reports commands
package reports

import (
	"fmt"
	"io"
	"text/tabwriter"

	"autosales/salesdash/cmd/common"
	"autosales/salesdash/cmd/root"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/numutils"

	"github.com/spf13/cobra"
)

// Lister is the part of the report generator the commands use.
type Lister interface {
	ListReports() ([]models.ReportInfo, error)
	Analytics() (*models.AnalyticsSummary, error)
}

// Cmd represents the reports command
var Cmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect the published reports",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports in the output directory, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return list(c.GetReports(), root.SharedFlags.JSON, cmd.OutOrStdout())
	},
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Summarise the published reports by type and size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return analytics(c.GetReports(), root.SharedFlags.JSON, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.AddCommand(listCmd, analyticsCmd)
}

func list(l Lister, asJSON bool, out io.Writer) error {
	reports, err := l.ListReports()
	if err != nil {
		return err
	}
	if asJSON {
		return common.PrintJSON(out, reports)
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSIZE (KB)\tUPDATED")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", r.Name, r.Type, r.SizeKB, r.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func analytics(l Lister, asJSON bool, out io.Writer) error {
	summary, err := l.Analytics()
	if err != nil {
		return err
	}
	if asJSON {
		return common.PrintJSON(out, summary)
	}
	fmt.Fprintf(out, "Total reports: %d\n", summary.TotalReports)
	fmt.Fprintf(out, "Excel:         %d\n", summary.SpreadsheetReports)
	fmt.Fprintf(out, "PDF:           %d\n", summary.DocumentReports)
	fmt.Fprintf(out, "CSV:           %d\n", summary.CSVReports)
	fmt.Fprintf(out, "Total size:    %.2f KB\n", summary.TotalSizeKB)
	if summary.LatestReport != nil {
		fmt.Fprintf(out, "Latest:        %s (%s)\n", summary.LatestReport.Name, summary.LatestReport.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	if kpis := summary.LatestSpreadsheet; kpis != nil {
		fmt.Fprintf(out, "Latest Excel:  %s: %d rows, revenue %s, top product %s\n",
			kpis.Report, kpis.Rows, numutils.FormatAmount(kpis.TotalRevenue), kpis.TopProduct)
	}
	return nil
}
