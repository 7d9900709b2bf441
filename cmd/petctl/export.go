package main

import (
	"encoding/csv"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quociou/pibao/internal/service/export"
	"github.com/quociou/pibao/internal/stats"
)

var (
	exportFrom    string
	exportTo      string
	exportPending bool
	exportDryRun  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Push daily rows to the configured spreadsheet sinks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(e env) error {
			if exportDryRun {
				rows, err := e.app.Export.Rows(cmd.Context(), exportFrom, exportTo)
				if err != nil {
					return err
				}
				return writeCSV(cmd, rows)
			}

			var (
				res export.Result
				err error
			)
			if exportPending {
				res, err = e.app.Export.RunPending(cmd.Context())
			} else {
				res, err = e.app.Export.Run(cmd.Context(), exportFrom, exportTo)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %v\n", res.Rows, res.Sinks)
			return nil
		})
	},
}

func writeCSV(cmd *cobra.Command, rows []stats.ExportRow) error {
	w := csv.NewWriter(cmd.OutOrStdout())
	header := make([]string, len(stats.ExportHeader))
	for i, h := range stats.ExportHeader {
		header[i] = fmt.Sprint(h)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		values := r.Values()
		line := make([]string, len(values))
		for i, v := range values {
			line[i] = fmt.Sprint(v)
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First date YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last date YYYY-MM-DD")
	exportCmd.Flags().BoolVar(&exportPending, "pending", false, "Only records changed since their last backup")
	exportCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "Print the rows as CSV instead of pushing them")
}
