// Package history implements the history commands
package history

import (
	"fmt"
	"io"
	"text/tabwriter"

	"autosales/salesdash/cmd/common"
	"autosales/salesdash/cmd/root"
	"autosales/salesdash/internal/pipeline"
	"autosales/salesdash/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "List, show and delete saved charts",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved charts, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return list(c.GetHistory(), root.SharedFlags.JSON, cmd.OutOrStdout())
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return show(c.GetHistory(), args[0], root.SharedFlags.JSON, cmd.OutOrStdout())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return remove(c.GetHistory(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	Cmd.AddCommand(listCmd, showCmd, deleteCmd)
}

func list(h store.ChartHistory, asJSON bool, out io.Writer) error {
	summaries, err := h.Summaries()
	if err != nil {
		return err
	}
	if asJSON {
		return common.PrintJSON(out, summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No saved charts.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCREATED\tMODE\tSOURCE\tREVENUE\tTOP PRODUCT")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Name, s.CreatedAt.Format("2006-01-02 15:04"), s.Mode, s.SourceFile, s.TotalRevenue, s.TopProduct)
	}
	return tw.Flush()
}

func show(h store.ChartHistory, name string, asJSON bool, out io.Writer) error {
	entry, err := h.Load(name)
	if err != nil {
		return err
	}
	if asJSON {
		return common.PrintJSON(out, entry)
	}

	fmt.Fprintf(out, "Chart:   %s\nSource:  %s\nMode:    %s\nCreated: %s\n\nMapping:\n",
		entry.Name, entry.SourceFile, entry.Mode, entry.CreatedAt.Format("2006-01-02 15:04:05"))
	common.PrintMapping(out, entry.Mapping)
	if entry.Result == nil {
		return nil
	}
	fmt.Fprintln(out)
	return common.PrintResult(out, &pipeline.Result{Source: entry.SourceFile, Aggregation: entry.Result})
}

func remove(h store.ChartHistory, name string, out io.Writer) error {
	if err := h.Delete(name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted chart %s\n", name)
	return nil
}
