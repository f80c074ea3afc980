// Package common contains shared functionality for command handlers
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/numutils"
	"autosales/salesdash/internal/pipeline"

	"github.com/spf13/cobra"
)

// MappingFlags holds the column mapping given on the command line.
type MappingFlags struct {
	Product   string
	Revenue   string
	Quantity  string
	Price     string
	Date      string
	YearMonth string
	Year      string
	Month     string
}

// AddMappingFlags registers one flag per semantic field on cmd.
func AddMappingFlags(cmd *cobra.Command, f *MappingFlags) {
	cmd.Flags().StringVar(&f.Product, "product", "", "Column holding the product name")
	cmd.Flags().StringVar(&f.Revenue, "revenue", "", "Column holding the line revenue")
	cmd.Flags().StringVar(&f.Quantity, "quantity", "", "Column holding the quantity sold")
	cmd.Flags().StringVar(&f.Price, "price", "", "Column holding the unit price")
	cmd.Flags().StringVar(&f.Date, "date", "", "Column holding the sale date")
	cmd.Flags().StringVar(&f.YearMonth, "year-month", "", "Column holding the year and month (YYYY-MM)")
	cmd.Flags().StringVar(&f.Year, "year", "", "Column holding the year")
	cmd.Flags().StringVar(&f.Month, "month", "", "Column holding the month")
}

// Mapping converts the flags into a column mapping.
func (f MappingFlags) Mapping() models.ColumnMapping {
	return models.ColumnMapping{
		Product:   f.Product,
		Revenue:   f.Revenue,
		Quantity:  f.Quantity,
		Price:     f.Price,
		Date:      f.Date,
		YearMonth: f.YearMonth,
		Year:      f.Year,
		Month:     f.Month,
	}.Normalized()
}

// IsEmpty reports whether no mapping flag was given.
func (f MappingFlags) IsEmpty() bool {
	return f == MappingFlags{}
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintMapping writes a mapping one field per line, skipping unmapped fields.
func PrintMapping(w io.Writer, m models.ColumnMapping) {
	for _, f := range m.Fields() {
		fmt.Fprintf(w, "  %-10s %s\n", f.Field, f.Column)
	}
}

// PrintResult writes the chart series, KPIs and audit counts of a run.
func PrintResult(w io.Writer, res *pipeline.Result) error {
	agg := res.Aggregation
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PERIOD\tREVENUE\tUNITS\tPRODUCTS\n")
	for _, b := range agg.Buckets {
		names := make([]string, len(b.Products))
		for i, p := range b.Products {
			names[i] = p.Product
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Key, numutils.FormatAmount(b.Revenue), numutils.FormatUnits(b.Units), strings.Join(names, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	k := agg.KPIs
	fmt.Fprintf(w, "\nTotal revenue:     %s\n", numutils.FormatAmount(k.TotalRevenue))
	fmt.Fprintf(w, "Total units:       %s\n", numutils.FormatUnits(k.TotalUnits))
	fmt.Fprintf(w, "Distinct products: %d\n", k.DistinctProducts)
	if k.TopProduct != "" {
		fmt.Fprintf(w, "Top product:       %s (%s)\n", k.TopProduct, numutils.FormatAmount(k.TopProductRevenue))
		fmt.Fprintf(w, "Top by units:      %s\n", k.TopProductByUnits)
	}

	a := agg.Audit
	fmt.Fprintf(w, "Rows read: %d, used: %d, without revenue: %d, without product: %d, unknown period: %d\n",
		a.TotalRows, a.ResolvedRows, a.UnresolvedRevenue, a.MissingProduct, a.UnknownBucket)

	for _, art := range res.Artifacts {
		fmt.Fprintf(w, "Report (%s): %s\n", art.Format.Label(), art.Path)
	}
	if res.ChartName != "" {
		fmt.Fprintf(w, "Saved chart: %s\n", res.ChartName)
	}
	return nil
}
