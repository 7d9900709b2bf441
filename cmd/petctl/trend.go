package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quociou/pibao/internal/domain/models"
)

var (
	trendFrom string
	trendTo   string
	trendDays int
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Print weight, calories and water per day",
	RunE: func(cmd *cobra.Command, args []string) error {
		if trendDays < 1 {
			return fmt.Errorf("--days must be >= 1, got %d", trendDays)
		}
		return withApp(cmd.Context(), func(e env) error {
			to := trendTo
			if to == "" {
				to = models.DateKey(time.Now().In(e.loc))
			}
			from := trendFrom
			if from == "" {
				end, err := models.ParseDate(to)
				if err != nil {
					return fmt.Errorf("invalid --to %q (expected YYYY-MM-DD)", to)
				}
				from = models.DateKey(end.AddDate(0, 0, -(trendDays - 1)))
			}

			report, err := e.app.Reporting.Trend(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s .. %s  target %s kg, %.0f kcal\n", report.From, report.To, num(report.TargetWeight), report.CalorieTarget)
			for _, p := range report.Points {
				mark := " "
				if !p.WeightRecorded {
					mark = "~"
				}
				fmt.Fprintf(out, "%s  %5.2f%s kg  %6.1f kcal  %6.1f ml  urine x%d\n", p.Date, p.Weight, mark, p.Stats.TotalCalories, p.Stats.TotalWater, p.UrineCount)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)
	trendCmd.Flags().StringVar(&trendFrom, "from", "", "First date YYYY-MM-DD")
	trendCmd.Flags().StringVar(&trendTo, "to", "", "Last date YYYY-MM-DD (default today)")
	trendCmd.Flags().IntVar(&trendDays, "days", 30, "Window size when --from is omitted")
}
