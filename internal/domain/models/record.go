package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the key format of a DailyRecord.
const DateLayout = "2006-01-02"

// NoteSeparator joins multiple notes stored on one record.
const NoteSeparator = "; "

// WaterKind discriminates the water intake variants.
type WaterKind string

const (
	WaterBowl        WaterKind = "bowl"
	WaterDirect      WaterKind = "direct"
	WaterEvaporation WaterKind = "evaporation"
)

// StoolStatus is the qualitative stool observation of a day.
type StoolStatus string

const (
	StoolNormal   StoolStatus = "normal"
	StoolNone     StoolStatus = "none"
	StoolGranular StoolStatus = "granular"
	StoolLoose    StoolStatus = "loose"
)

// Valid reports whether s is a known status. The empty value means not recorded.
func (s StoolStatus) Valid() bool {
	switch s {
	case "", StoolNormal, StoolNone, StoolGranular, StoolLoose:
		return true
	}
	return false
}

// FoodIntakeEntry is one feeding event.
type FoodIntakeEntry struct {
	ID     string  `bson:"id" json:"id"`
	FoodID string  `bson:"food_id" json:"food_id"`
	Amount float64 `bson:"amount" json:"amount"`
}

// WaterIntakeEntry is one hydration event. Which fields are meaningful depends on Kind:
// bowl uses Original, Leftover and EvaporationOffset; direct and evaporation use Amount.
type WaterIntakeEntry struct {
	ID                string    `bson:"id" json:"id"`
	Kind              WaterKind `bson:"kind" json:"kind"`
	Amount            float64   `bson:"amount,omitempty" json:"amount,omitempty"`
	Original          float64   `bson:"original,omitempty" json:"original,omitempty"`
	Leftover          *float64  `bson:"leftover" json:"leftover"`
	EvaporationOffset float64   `bson:"evaporation_offset,omitempty" json:"evaporation_offset,omitempty"`
}

// Pending reports whether a bowl entry still waits for its leftover measurement.
func (w WaterIntakeEntry) Pending() bool {
	return w.Kind == WaterBowl && w.Leftover == nil
}

// Validate checks the variant-specific fields.
func (w WaterIntakeEntry) Validate() error {
	switch w.Kind {
	case WaterBowl:
		if w.Original < 0 {
			return fmt.Errorf("bowl original must be >= 0")
		}
		if w.Leftover != nil && *w.Leftover < 0 {
			return fmt.Errorf("bowl leftover must be >= 0")
		}
		if w.EvaporationOffset < 0 {
			return fmt.Errorf("bowl evaporation_offset must be >= 0")
		}
	case WaterDirect, WaterEvaporation:
		if w.Amount < 0 {
			return fmt.Errorf("%s amount must be >= 0", w.Kind)
		}
	default:
		return fmt.Errorf("unknown water kind %q", w.Kind)
	}
	return nil
}

// DailyRecord aggregates everything observed on one calendar date.
type DailyRecord struct {
	ID           string             `bson:"_id" json:"id"`
	Date         string             `bson:"date" json:"date"`
	Weight       float64            `bson:"weight" json:"weight"`
	FoodIntakes  []FoodIntakeEntry  `bson:"food_intakes" json:"food_intakes"`
	WaterIntakes []WaterIntakeEntry `bson:"water_intakes" json:"water_intakes"`
	UrineSize    string             `bson:"urine_size,omitempty" json:"urine_size,omitempty"`
	UrineCount   int                `bson:"urine_count" json:"urine_count"`
	Stool        StoolStatus        `bson:"stool,omitempty" json:"stool,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
	BackedUpAt   *time.Time         `bson:"backed_up_at,omitempty" json:"backed_up_at,omitempty"`
}

// Day parses the record date.
func (r DailyRecord) Day() (time.Time, error) {
	return ParseDate(r.Date)
}

// NoteList splits the stored notes.
func (r DailyRecord) NoteList() []string {
	if strings.TrimSpace(r.Notes) == "" {
		return nil
	}
	parts := strings.Split(r.Notes, NoteSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// AddNote appends a note unless the same note is already present.
func (r *DailyRecord) AddNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	notes := r.NoteList()
	for _, n := range notes {
		if n == note {
			return
		}
	}
	r.Notes = strings.Join(append(notes, note), NoteSeparator)
}

// HasMarker reports whether any note contains marker.
func (r DailyRecord) HasMarker(marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(r.Notes, marker)
}

// ParseDate parses a YYYY-MM-DD key into a UTC midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// DateKey formats t as a record key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
