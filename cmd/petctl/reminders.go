package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders [date]",
	Short: "Show maintenance cycles as of a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(e env) error {
			date, err := dateArg(args, e.loc)
			if err != nil {
				return err
			}
			statuses, err := e.app.Reporting.Reminders(cmd.Context(), date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range statuses {
				due := ""
				if s.Due {
					due = "  DUE"
				}
				if s.LastDate == "" {
					fmt.Fprintf(out, "%-10s every %2dd  never%s\n", s.Kind, s.IntervalDays, due)
					continue
				}
				fmt.Fprintf(out, "%-10s every %2dd  last %s (%d days ago)%s\n", s.Kind, s.IntervalDays, s.LastDate, s.DaysSince, due)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(remindersCmd)
}
