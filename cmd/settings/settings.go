// Package settings implements the settings commands
package settings

import (
	"fmt"
	"io"

	"autosales/salesdash/cmd/common"
	"autosales/salesdash/cmd/root"
	"autosales/salesdash/internal/storage"

	"github.com/spf13/cobra"
)

// Cmd represents the settings command
var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the upload and output directories",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the storage settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return show(c.GetStorage(), root.SharedFlags.JSON, cmd.OutOrStdout())
	},
}

var (
	uploadDir string
	outputDir string
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change and persist the storage directories",
	Long: `Creates the given directories and persists them in the storage settings file.
An omitted flag keeps the current directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return set(c.GetStorage(), uploadDir, outputDir, cmd.OutOrStdout())
	},
}

func init() {
	setCmd.Flags().StringVar(&uploadDir, "upload-dir", "", "Directory for uploaded files")
	setCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for generated reports")
	Cmd.AddCommand(showCmd, setCmd)
}

func show(m *storage.Manager, asJSON bool, out io.Writer) error {
	summary, err := m.Summary()
	if err != nil {
		return err
	}
	if asJSON {
		return common.PrintJSON(out, summary)
	}
	fmt.Fprintf(out, "Base directory:   %s\n", m.BaseDir())
	fmt.Fprintf(out, "Upload directory: %s (%d files)\n", summary.UploadDir, summary.UploadFiles)
	fmt.Fprintf(out, "Output directory: %s\n", summary.OutputDir)
	fmt.Fprintf(out, "Reports:          %d (Excel %d, PDF %d, CSV %d)\n",
		summary.TotalReports, summary.SpreadsheetReports, summary.DocumentReports, summary.CSVReports)
	if summary.LatestReport != nil {
		fmt.Fprintf(out, "Latest report:    %s\n", summary.LatestReport.Name)
	}
	return nil
}

func set(m *storage.Manager, upload, output string, out io.Writer) error {
	current := m.Paths()
	if upload == "" {
		upload = current.UploadDir
	}
	if output == "" {
		output = current.OutputDir
	}
	paths, err := m.UpdatePaths(upload, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Upload directory: %s\nOutput directory: %s\n", paths.UploadDir, paths.OutputDir)
	return nil
}
