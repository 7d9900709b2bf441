package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/quociou/pibao/internal/domain/models"
)

// ExportRow is the flattened, rounded view of one day used by backups.
type ExportRow struct {
	Date             string  `json:"date"`
	Weight           float64 `json:"weight"`
	TotalCalories    float64 `json:"total_calories"`
	SideCalories     float64 `json:"side_calories"`
	SnackComposition string  `json:"snack_composition"`
	FoodWater        float64 `json:"food_water"`
	DrinkWater       float64 `json:"drink_water"`
	TotalWater       float64 `json:"total_water"`
	PendingWater     int     `json:"pending_water"`
	UrineSize        string  `json:"urine_size"`
	UrineCount       int     `json:"urine_count"`
	Stool            string  `json:"stool"`
	Notes            string  `json:"notes"`
}

// Values returns the row as spreadsheet cells in column order.
func (r ExportRow) Values() []interface{} {
	return []interface{}{
		r.Date, r.Weight, r.TotalCalories, r.SideCalories, r.SnackComposition,
		r.FoodWater, r.DrinkWater, r.TotalWater, r.PendingWater,
		r.UrineSize, r.UrineCount, r.Stool, r.Notes,
	}
}

// ExportHeader names the columns produced by ExportRow.Values.
var ExportHeader = []interface{}{
	"date", "weight", "total_kcal", "side_kcal", "snacks",
	"food_water", "drink_water", "total_water", "pending_bowls",
	"urine_size", "urine_count", "stool", "notes",
}

// BuildExportRow computes the stats of record and rounds them for export.
func BuildExportRow(record models.DailyRecord, catalog models.Catalog) ExportRow {
	s := ComputeDailyStats(record, catalog)
	return ExportRow{
		Date:             record.Date,
		Weight:           Round1(record.Weight),
		TotalCalories:    Round1(s.TotalCalories),
		SideCalories:     Round1(s.SideCalories),
		SnackComposition: SnackComposition(record, catalog),
		FoodWater:        Round1(s.FoodWater),
		DrinkWater:       Round1(s.DrinkWater),
		TotalWater:       Round1(s.TotalWater),
		PendingWater:     len(s.PendingWater),
		UrineSize:        record.UrineSize,
		UrineCount:       record.UrineCount,
		Stool:            string(record.Stool),
		Notes:            record.Notes,
	}
}

// SnackComposition describes each snack's share of the day's calories, e.g.
// "12.5% Tuna flakes, 3% Chicken jerky". Largest share first.
func SnackComposition(record models.DailyRecord, catalog models.Catalog) string {
	var total float64
	perSnack := map[string]float64{}
	for _, intake := range record.FoodIntakes {
		food, ok := catalog[intake.FoodID]
		if !ok {
			continue
		}
		kcal := intake.Amount * food.CaloriesPerGram
		total += kcal
		if food.Category.IsSnack() {
			perSnack[food.Name] += kcal
		}
	}
	if total <= 0 || len(perSnack) == 0 {
		return ""
	}

	names := make([]string, 0, len(perSnack))
	for name := range perSnack {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if perSnack[names[i]] != perSnack[names[j]] {
			return perSnack[names[i]] > perSnack[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, 0, len(names))
	for _, name := range names {
		pct := Round1(perSnack[name] / total * 100)
		parts = append(parts, fmt.Sprintf("%s%% %s", formatNumber(pct), name))
	}
	return strings.Join(parts, ", ")
}

// CalorieTarget estimates the daily energy requirement from body weight (kg)
// and an activity factor: 70 * weight^0.75 * factor.
func CalorieTarget(weight, factor float64) float64 {
	if weight <= 0 || factor <= 0 {
		return 0
	}
	return 70 * math.Pow(weight, 0.75) * factor
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
