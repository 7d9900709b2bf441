package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [date]",
	Short: "Show calories and hydration for a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(e env) error {
			date, err := dateArg(args, e.loc)
			if err != nil {
				return err
			}
			st, rec, err := e.app.Journal.DailyStats(cmd.Context(), date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", date)
			if rec.Weight > 0 {
				fmt.Fprintf(out, "Weight: %s kg\n", num(rec.Weight))
			}
			fmt.Fprintf(out, "Calories: %.1f kcal (sides %.1f, ratio %.0f%%)\n", st.TotalCalories, st.SideCalories, st.SideRatio()*100)
			fmt.Fprintf(out, "Water: %.1f ml (food %.1f, drink %.1f)\n", st.TotalWater, st.FoodWater, st.DrinkWater)
			if n := len(st.PendingWater); n > 0 {
				fmt.Fprintf(out, "Pending bowls: %d\n", n)
			}
			if rec.UrineSize != "" || rec.UrineCount > 0 {
				fmt.Fprintf(out, "Urine: %s x%d\n", rec.UrineSize, rec.UrineCount)
			}
			if rec.Stool != "" {
				fmt.Fprintf(out, "Stool: %s\n", rec.Stool)
			}
			if notes := rec.NoteList(); len(notes) > 0 {
				fmt.Fprintf(out, "Notes: %s\n", strings.Join(notes, ", "))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
