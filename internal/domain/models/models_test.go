package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]FoodCategory{
		"kibble":    CategoryKibble,
		" Dry ":     CategoryKibble,
		"WET":       CategoryCanned,
		"snack":     CategorySnack,
		"side dish": CategorySnack,
		"Side_Dish": CategorySnack,
		"treat":     CategorySnack,
		"mystery":   FoodCategory("mystery"),
		"":          FoodCategory(""),
	}
	for in, want := range tests {
		if got := NormalizeCategory(in); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoodCategory_JSONNormalizesLegacy(t *testing.T) {
	var f FoodDefinition
	if err := json.Unmarshal([]byte(`{"id":"x","name":"Jerky","category":"side dish","calories_per_gram":3}`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Category != CategorySnack {
		t.Fatalf("category = %q, want snack", f.Category)
	}
	if !f.Category.IsSnack() {
		t.Fatalf("IsSnack() = false")
	}
}

func TestFoodDefinition_Validate(t *testing.T) {
	zero := 0.0
	tests := []struct {
		name    string
		food    FoodDefinition
		wantErr bool
	}{
		{"ok", FoodDefinition{Name: "Dry", Category: CategoryKibble, CaloriesPerGram: 3.9, WaterPercent: 8}, false},
		{"empty name", FoodDefinition{Category: CategoryKibble}, true},
		{"bad category", FoodDefinition{Name: "x", Category: "soup"}, true},
		{"negative kcal", FoodDefinition{Name: "x", Category: CategorySnack, CaloriesPerGram: -1}, true},
		{"water over 100", FoodDefinition{Name: "x", Category: CategoryCanned, WaterPercent: 101}, true},
		{"zero default amount", FoodDefinition{Name: "x", Category: CategoryCanned, DefaultAmount: &zero}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.food.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCatalogLookup(t *testing.T) {
	c := NewCatalog([]FoodDefinition{{ID: "a1", Name: "Chicken Can"}})
	if _, ok := c.Lookup("a1"); !ok {
		t.Errorf("lookup by id failed")
	}
	if f, ok := c.Lookup("chicken can"); !ok || f.ID != "a1" {
		t.Errorf("lookup by name failed: %+v %v", f, ok)
	}
	if _, ok := c.Lookup("beef"); ok {
		t.Errorf("unexpected match")
	}
}

func TestDailyRecordNotes(t *testing.T) {
	var r DailyRecord
	r.AddNote("litter change")
	r.AddNote("  ")
	r.AddNote("vomit")
	r.AddNote("litter change")

	if r.Notes != "litter change; vomit" {
		t.Fatalf("Notes = %q", r.Notes)
	}
	if got := r.NoteList(); !reflect.DeepEqual(got, []string{"litter change", "vomit"}) {
		t.Fatalf("NoteList = %v", got)
	}
	if !r.HasMarker("vomit") || r.HasMarker("") || r.HasMarker("medication") {
		t.Fatalf("HasMarker mismatch for %q", r.Notes)
	}
}

func TestWaterIntakeEntry_Validate(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name    string
		entry   WaterIntakeEntry
		wantErr bool
	}{
		{"pending bowl", WaterIntakeEntry{Kind: WaterBowl, Original: 200}, false},
		{"negative leftover", WaterIntakeEntry{Kind: WaterBowl, Original: 200, Leftover: &neg}, true},
		{"direct", WaterIntakeEntry{Kind: WaterDirect, Amount: 10}, false},
		{"negative evaporation", WaterIntakeEntry{Kind: WaterEvaporation, Amount: -3}, true},
		{"unknown kind", WaterIntakeEntry{Kind: "rain"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.entry.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
	if !(WaterIntakeEntry{Kind: WaterBowl}).Pending() {
		t.Errorf("bowl without leftover should be pending")
	}
	if (WaterIntakeEntry{Kind: WaterDirect}).Pending() {
		t.Errorf("direct entry should never be pending")
	}
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	s.ActivityFactor = 1.3
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for activity factor 1.3")
	}

	s = DefaultSettings()
	s.Reminders[ReminderLitter] = Reminder{Marker: "litter change", IntervalDays: 0}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestSettingsReminderFallback(t *testing.T) {
	s := AppSettings{}
	if got := s.Reminder(ReminderFeeder); got.Marker != "feeder cleaning" || got.IntervalDays != 7 {
		t.Fatalf("Reminder fallback = %+v", got)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantType CommandType
		wantArgs []string
	}{
		{"/weight 4.2", CommandWeight, []string{"4.2"}},
		{"W 4.2", CommandWeight, []string{"4.2"}},
		{"/food Chicken Can 40", CommandFood, []string{"Chicken", "Can", "40"}},
		{"/note Litter change", CommandNote, []string{"Litter", "change"}},
		{"/stats", CommandStats, nil},
		{"   ", CommandUnknown, nil},
		{"hello there", CommandUnknown, []string{"there"}},
	}
	for _, tc := range tests {
		got := ParseCommand(tc.in)
		if got.Type != tc.wantType {
			t.Errorf("ParseCommand(%q).Type = %q, want %q", tc.in, got.Type, tc.wantType)
		}
		if !reflect.DeepEqual(got.Args, tc.wantArgs) {
			t.Errorf("ParseCommand(%q).Args = %v, want %v", tc.in, got.Args, tc.wantArgs)
		}
	}
}

func TestInboundMessageBody(t *testing.T) {
	text := InboundMessage{Text: &MessageText{Body: "/stats"}}
	button := InboundMessage{Interactive: &Interactive{ButtonReply: &ButtonReply{ID: "/reminders", Title: "Reminders"}}}
	image := InboundMessage{Type: "image"}

	if text.Body() != "/stats" || button.Body() != "/reminders" || image.Body() != "" {
		t.Fatalf("bodies = %q %q %q", text.Body(), button.Body(), image.Body())
	}
}
