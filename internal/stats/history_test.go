package stats

import (
	"testing"
	"time"

	"github.com/quociou/pibao/internal/domain/models"
)

func TestUrineOrdinal(t *testing.T) {
	tests := []struct {
		label string
		want  float64
	}{
		{"1元", 0},
		{"50元", 1},
		{"拳頭", 4},
		{"1元 ~ 50元", 0.5},
		{"100元 ~ 500元", 2.5},
		{" 500元 ", 3},
		{"unknown", 2},
		{"", 2},
		{"huge ~ 50元", 2},
	}
	for _, tc := range tests {
		if got := UrineOrdinal(tc.label); got != tc.want {
			t.Errorf("UrineOrdinal(%q) = %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestUrineRange(t *testing.T) {
	if got := UrineRange(0); got != "1元 ~ 50元" {
		t.Errorf("UrineRange(0) = %q", got)
	}
	if got := UrineRange(4); got != "" {
		t.Errorf("UrineRange(4) = %q, want empty", got)
	}
	if got := UrineOrdinal(UrineRange(2)); got != 2.5 {
		t.Errorf("round trip = %v, want 2.5", got)
	}
}

func TestDaysSinceMarked(t *testing.T) {
	records := []models.DailyRecord{
		{Date: "2024-01-10", Notes: "vomit; litter change"},
		{Date: "2024-01-01", Notes: "litter change"},
		{Date: "2024-01-05", Notes: "hairball"},
	}

	got := DaysSinceMarked(records, "litter change")

	want := map[string]int{"2024-01-01": 0, "2024-01-05": 4, "2024-01-10": 0}
	for date, days := range want {
		if got[date] != days {
			t.Errorf("days[%s] = %d, want %d", date, got[date], days)
		}
	}
	if records[0].Date != "2024-01-10" {
		t.Errorf("input slice was reordered")
	}
}

func TestDaysSinceMarked_NeverMarked(t *testing.T) {
	records := []models.DailyRecord{
		{Date: "2024-02-01"},
		{Date: "2024-02-03", Notes: "medication"},
		{Date: "2024-02-04"},
	}

	got := DaysSinceMarked(records, "medication")

	if got["2024-02-01"] != NeverMarked {
		t.Errorf("before first event = %d, want %d", got["2024-02-01"], NeverMarked)
	}
	if got["2024-02-04"] != 1 {
		t.Errorf("day after event = %d, want 1", got["2024-02-04"])
	}
}

func TestLastMarked(t *testing.T) {
	records := []models.DailyRecord{
		{Date: "2024-03-01", Notes: "feeder cleaning"},
		{Date: "2024-03-09", Notes: "feeder cleaning"},
	}
	asOf := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	last, ok := LastMarked(records, "feeder cleaning", asOf)
	if !ok {
		t.Fatal("expected a marked date")
	}
	if !last.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last = %v, want 2024-03-01", last)
	}

	if _, ok := LastMarked(records, "medication", asOf); ok {
		t.Errorf("unexpected marked date for unused marker")
	}
}

func TestCarryForwardWeight(t *testing.T) {
	records := []models.DailyRecord{
		{Date: "2024-01-03", Weight: 4.2},
		{Date: "2024-01-01"},
		{Date: "2024-01-05"},
		{Date: "2024-01-04", Weight: 0},
		{Date: "2024-01-06", Weight: 4.4},
	}

	got := CarryForwardWeight(records, DefaultWeight)

	want := map[string]float64{
		"2024-01-01": 5.0,
		"2024-01-03": 4.2,
		"2024-01-04": 4.2,
		"2024-01-05": 4.2,
		"2024-01-06": 4.4,
	}
	for date, w := range want {
		if got[date] != w {
			t.Errorf("weight[%s] = %v, want %v", date, got[date], w)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 3, 30, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 4, 2, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 3 {
		t.Errorf("DaysBetween = %d, want 3", got)
	}
}
