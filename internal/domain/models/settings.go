package models

import (
	"fmt"
	"time"
)

// SettingsID is the fixed identifier of the settings singleton.
const SettingsID = "app"

// ActivityFactors is the allowed set of energy multipliers.
var ActivityFactors = []float64{0.8, 1.0, 1.2, 1.4, 1.6}

// ReminderKind names one maintenance cycle.
type ReminderKind string

const (
	ReminderLitter     ReminderKind = "litter"
	ReminderMedication ReminderKind = "medication"
	ReminderFeeder     ReminderKind = "feeder"
)

// ReminderKinds lists every kind in display order.
var ReminderKinds = []ReminderKind{ReminderLitter, ReminderMedication, ReminderFeeder}

// Reminder configures one maintenance cycle: the note marker that flags the
// event and the expected interval between events.
type Reminder struct {
	Marker       string `bson:"marker" json:"marker"`
	IntervalDays int    `bson:"interval_days" json:"interval_days"`
}

// AppSettings is the process-wide configuration record.
type AppSettings struct {
	ID                 string                    `bson:"_id" json:"-"`
	TargetWeight       float64                   `bson:"target_weight" json:"target_weight"`
	ActivityFactor     float64                   `bson:"activity_factor" json:"activity_factor"`
	DefaultEvaporation float64                   `bson:"default_evaporation" json:"default_evaporation"`
	NotePresets        []string                  `bson:"note_presets" json:"note_presets"`
	Reminders          map[ReminderKind]Reminder `bson:"reminders" json:"reminders"`
	UpdatedAt          time.Time                 `bson:"updated_at" json:"updated_at"`
}

// DefaultSettings returns the values used when no settings were saved yet.
func DefaultSettings() AppSettings {
	return AppSettings{
		ID:                 SettingsID,
		TargetWeight:       4.5,
		ActivityFactor:     1.2,
		DefaultEvaporation: 10,
		NotePresets:        []string{"litter change", "medication", "feeder cleaning", "vomit", "hairball"},
		Reminders: map[ReminderKind]Reminder{
			ReminderLitter:     {Marker: "litter change", IntervalDays: 14},
			ReminderMedication: {Marker: "medication", IntervalDays: 30},
			ReminderFeeder:     {Marker: "feeder cleaning", IntervalDays: 7},
		},
	}
}

// Reminder returns the configuration for kind, falling back to the default.
func (s AppSettings) Reminder(kind ReminderKind) Reminder {
	if r, ok := s.Reminders[kind]; ok && r.Marker != "" {
		return r
	}
	return DefaultSettings().Reminders[kind]
}

// Validate checks the settings before they are persisted.
func (s AppSettings) Validate() error {
	if s.TargetWeight <= 0 {
		return fmt.Errorf("target_weight must be > 0")
	}
	if !validActivityFactor(s.ActivityFactor) {
		return fmt.Errorf("activity_factor must be one of %v", ActivityFactors)
	}
	if s.DefaultEvaporation < 0 {
		return fmt.Errorf("default_evaporation must be >= 0")
	}
	for kind, r := range s.Reminders {
		if r.IntervalDays <= 0 {
			return fmt.Errorf("reminder %s interval_days must be > 0", kind)
		}
	}
	return nil
}

func validActivityFactor(f float64) bool {
	for _, allowed := range ActivityFactors {
		if f == allowed {
			return true
		}
	}
	return false
}
