package stats

import (
	"math"
	"sort"
	"time"

	"github.com/quociou/pibao/internal/domain/models"
)

// NeverMarked is reported for dates preceding the first marked event.
const NeverMarked = -1

// DefaultWeight is carried forward before any weight was recorded.
const DefaultWeight = 5.0

// DaysSinceMarked reports, for every record date, the number of days since
// the latest record on or before that date whose notes contain marker. A
// marked date reports 0 for itself.
func DaysSinceMarked(records []models.DailyRecord, marker string) map[string]int {
	out := make(map[string]int, len(records))
	var last time.Time
	seen := false

	for _, rec := range chronological(records) {
		day, err := rec.Day()
		if err != nil {
			continue
		}
		if rec.HasMarker(marker) {
			last = day
			seen = true
		}
		if !seen {
			out[rec.Date] = NeverMarked
			continue
		}
		out[rec.Date] = DaysBetween(last, day)
	}

	return out
}

// LastMarked returns the date of the latest record on or before asOf whose
// notes contain marker.
func LastMarked(records []models.DailyRecord, marker string, asOf time.Time) (time.Time, bool) {
	var last time.Time
	found := false
	for _, rec := range chronological(records) {
		day, err := rec.Day()
		if err != nil || day.After(asOf) {
			continue
		}
		if rec.HasMarker(marker) {
			last = day
			found = true
		}
	}
	return last, found
}

// CarryForwardWeight reports, for every record date, the most recent positive
// weight recorded on or before that date, or fallback when none exists yet.
func CarryForwardWeight(records []models.DailyRecord, fallback float64) map[string]float64 {
	out := make(map[string]float64, len(records))
	current := fallback
	for _, rec := range chronological(records) {
		if rec.Weight > 0 {
			current = rec.Weight
		}
		out[rec.Date] = current
	}
	return out
}

// DaysBetween counts calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// chronological returns records sorted by date without touching the input.
func chronological(records []models.DailyRecord) []models.DailyRecord {
	sorted := make([]models.DailyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	return sorted
}
