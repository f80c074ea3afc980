// Package columns implements the columns command
package columns

import (
	"fmt"
	"io"

	"autosales/salesdash/cmd/common"
	"autosales/salesdash/cmd/root"
	internalcommon "autosales/salesdash/internal/common"
	"autosales/salesdash/internal/container"
	"autosales/salesdash/internal/models"

	"github.com/spf13/cobra"
)

// Cmd represents the columns command
var Cmd = &cobra.Command{
	Use:   "columns <file.csv>",
	Short: "Show the columns of a sales export and the guessed mapping",
	Long: `Reads the header of a sales export and prints its normalised column names
together with the column mapping salesdash would pick by itself.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return run(c, args[0], root.SharedFlags.JSON, cmd.OutOrStdout())
	},
}

// columnsOutput is the JSON form of the command output.
type columnsOutput struct {
	File    string               `json:"file"`
	Columns []string             `json:"columns"`
	Rows    int                  `json:"rows"`
	Mapping models.ColumnMapping `json:"mapping"`
}

func run(c *container.Container, path string, asJSON bool, out io.Writer) error {
	table, err := c.GetReader().ReadFile(path)
	if err != nil {
		return err
	}
	result := columnsOutput{
		File:    path,
		Columns: table.Header,
		Rows:    len(table.Rows),
		Mapping: internalcommon.GuessMapping(table.Header),
	}
	if asJSON {
		return common.PrintJSON(out, result)
	}

	fmt.Fprintf(out, "%s: %d rows\n\nColumns:\n", path, result.Rows)
	for _, col := range result.Columns {
		fmt.Fprintf(out, "  %s\n", col)
	}
	fmt.Fprintln(out, "\nGuessed mapping:")
	common.PrintMapping(out, result.Mapping)
	return nil
}
