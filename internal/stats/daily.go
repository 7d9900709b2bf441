// Package stats derives nutrition and hydration figures from daily records.
// Every function here is pure: no I/O, no shared state, and malformed input
// degrades to zero contribution instead of failing.
package stats

import (
	"math"

	"github.com/quociou/pibao/internal/domain/models"
)

// DailyStats is the per-day nutrition and hydration summary.
type DailyStats struct {
	TotalCalories float64 `json:"total_calories"`
	SideCalories  float64 `json:"side_calories"`
	FoodWater     float64 `json:"food_water"`
	DrinkWater    float64 `json:"drink_water"`
	TotalWater    float64 `json:"total_water"`
	// PendingWater holds ids of bowl entries whose leftover was not measured yet.
	PendingWater []string `json:"pending_water,omitempty"`
}

// ComputeDailyStats aggregates the food and water intakes of record.
// Food ids missing from catalog contribute nothing. DrinkWater and TotalWater
// are not clamped, so evaporation deductions larger than bowl intake yield
// negative totals.
func ComputeDailyStats(record models.DailyRecord, catalog models.Catalog) DailyStats {
	var out DailyStats

	for _, intake := range record.FoodIntakes {
		food, ok := catalog[intake.FoodID]
		if !ok {
			continue
		}
		kcal := intake.Amount * food.CaloriesPerGram
		out.TotalCalories += kcal
		if food.Category.IsSnack() {
			out.SideCalories += kcal
		}
		out.FoodWater += intake.Amount * food.WaterPercent / 100
	}

	for _, w := range record.WaterIntakes {
		switch w.Kind {
		case models.WaterBowl:
			if w.Leftover == nil {
				out.PendingWater = append(out.PendingWater, w.ID)
				continue
			}
			out.DrinkWater += BowlConsumed(w)
		case models.WaterDirect:
			out.DrinkWater += w.Amount
		case models.WaterEvaporation:
			out.DrinkWater -= w.Amount
		}
	}

	out.TotalWater = out.FoodWater + out.DrinkWater
	return out
}

// BowlConsumed returns the net amount drunk from a measured bowl entry.
// Unmeasured entries count as zero.
func BowlConsumed(w models.WaterIntakeEntry) float64 {
	if w.Leftover == nil {
		return 0
	}
	return math.Max(0, w.Original-*w.Leftover-w.EvaporationOffset)
}

// SideRatio is the share of calories that came from snacks, in [0,1].
func (s DailyStats) SideRatio() float64 {
	if s.TotalCalories <= 0 {
		return 0
	}
	return s.SideCalories / s.TotalCalories
}
