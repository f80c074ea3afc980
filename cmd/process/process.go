// Package process implements the process command
package process

import (
	"io"

	"autosales/salesdash/cmd/common"
	"autosales/salesdash/cmd/root"
	internalcommon "autosales/salesdash/internal/common"
	"autosales/salesdash/internal/container"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipeline"
	"autosales/salesdash/internal/pipelineerror"

	"github.com/spf13/cobra"
)

// Options holds the process command flags
type Options struct {
	Mapping   common.MappingFlags
	Mode      string
	Formats   []string
	Name      string
	NoReports bool
	NoHistory bool
	Reinsert  bool
	JSON      bool
}

var opts Options

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process <file.csv>",
	Short: "Aggregate a sales export and publish reports",
	Long: `Aggregates a sales export by the chosen time mode, publishes the requested
reports in the output directory and saves the chart in the history.

Without mapping flags the columns are guessed from the header.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		o := opts
		o.JSON = root.SharedFlags.JSON
		return Run(c, args[0], o, cmd.OutOrStdout())
	},
}

func init() {
	common.AddMappingFlags(Cmd, &opts.Mapping)
	Cmd.Flags().StringVarP(&opts.Mode, "mode", "m", string(models.ByYearMonth), "Time mode: date, year_month, year or month")
	Cmd.Flags().StringSliceVarP(&opts.Formats, "format", "f", nil, "Report formats: spreadsheet, document, csv (default from config)")
	Cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Name of the saved chart (generated when empty)")
	Cmd.Flags().BoolVar(&opts.NoReports, "no-reports", false, "Do not publish reports")
	Cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Do not save the chart in the history")
	Cmd.Flags().BoolVar(&opts.Reinsert, "reinsert", false, "Move a replaced chart to the top of the history")
}

// Run processes the file at path with the given options.
func Run(c *container.Container, path string, o Options, out io.Writer) error {
	mode, ok := models.ParseTimeMode(o.Mode)
	if !ok {
		return &pipelineerror.BucketError{Mode: o.Mode, Reason: "unsupported time mode"}
	}

	var formats []models.ReportFormat
	if len(o.Formats) > 0 {
		parsed, err := models.ParseReportFormats(o.Formats)
		if err != nil {
			return err
		}
		formats = parsed
	}

	mapping := o.Mapping.Mapping()
	if o.Mapping.IsEmpty() {
		table, err := c.GetReader().ReadFile(path)
		if err != nil {
			return err
		}
		mapping = internalcommon.GuessMapping(table.Header)
		c.GetLogger().Info("Using guessed column mapping", logging.F(logging.FieldColumn, mapping.Fields()))
	}

	res, err := c.GetPipeline().Run(pipeline.Request{
		Path:        path,
		Mapping:     mapping,
		Mode:        mode,
		Formats:     formats,
		SkipReports: o.NoReports,
		Name:        o.Name,
		SkipHistory: o.NoHistory,
		Reinsert:    o.Reinsert,
	})
	if err != nil {
		return err
	}

	if o.JSON {
		return common.PrintJSON(out, res)
	}
	return common.PrintResult(out, res)
}
