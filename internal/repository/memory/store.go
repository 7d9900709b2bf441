// Package memory implements repository.Store in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/repository"
)

// Store keeps every document in maps guarded by a mutex. Values are copied
// on the way in and out so callers never share slices with the store.
type Store struct {
	mu       sync.RWMutex
	foods    map[string]models.FoodDefinition
	records  map[string]models.DailyRecord
	settings *models.AppSettings
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		foods:   make(map[string]models.FoodDefinition),
		records: make(map[string]models.DailyRecord),
	}
}

func (s *Store) ListFoods(_ context.Context) ([]models.FoodDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FoodDefinition, 0, len(s.foods))
	for _, f := range s.foods {
		out = append(out, copyFood(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetFood(_ context.Context, id string) (models.FoodDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.foods[id]
	if !ok {
		return models.FoodDefinition{}, repository.ErrNotFound
	}
	return copyFood(f), nil
}

func (s *Store) PutFood(_ context.Context, food models.FoodDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.foods[food.ID] = copyFood(food)
	return nil
}

func (s *Store) DeleteFood(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.foods[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.foods, id)
	return nil
}

func (s *Store) GetRecord(_ context.Context, date string) (models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[date]
	if !ok {
		return models.DailyRecord{}, repository.ErrNotFound
	}
	return copyRecord(r), nil
}

func (s *Store) ListRecords(_ context.Context, from, to string) ([]models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DailyRecord, 0, len(s.records))
	for date, r := range s.records {
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		out = append(out, copyRecord(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Store) PutRecord(_ context.Context, record models.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Date] = copyRecord(record)
	return nil
}

func (s *Store) DeleteRecord(_ context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[date]; !ok {
		return repository.ErrNotFound
	}
	delete(s.records, date)
	return nil
}

func (s *Store) GetSettings(_ context.Context) (models.AppSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return models.AppSettings{}, repository.ErrNotFound
	}
	return copySettings(*s.settings), nil
}

func (s *Store) PutSettings(_ context.Context, settings models.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := copySettings(settings)
	s.settings = &c
	return nil
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

func copyFood(f models.FoodDefinition) models.FoodDefinition {
	if f.Order != nil {
		v := *f.Order
		f.Order = &v
	}
	if f.DefaultAmount != nil {
		v := *f.DefaultAmount
		f.DefaultAmount = &v
	}
	return f
}

func copyRecord(r models.DailyRecord) models.DailyRecord {
	if r.FoodIntakes != nil {
		r.FoodIntakes = append([]models.FoodIntakeEntry(nil), r.FoodIntakes...)
	}
	if r.WaterIntakes != nil {
		water := make([]models.WaterIntakeEntry, len(r.WaterIntakes))
		for i, w := range r.WaterIntakes {
			if w.Leftover != nil {
				v := *w.Leftover
				w.Leftover = &v
			}
			water[i] = w
		}
		r.WaterIntakes = water
	}
	if r.BackedUpAt != nil {
		v := *r.BackedUpAt
		r.BackedUpAt = &v
	}
	return r
}

func copySettings(s models.AppSettings) models.AppSettings {
	s.NotePresets = append([]string(nil), s.NotePresets...)
	if s.Reminders != nil {
		reminders := make(map[models.ReminderKind]models.Reminder, len(s.Reminders))
		for k, v := range s.Reminders {
			reminders[k] = v
		}
		s.Reminders = reminders
	}
	return s
}
