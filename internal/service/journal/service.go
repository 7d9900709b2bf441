// Package journal holds the catalog, daily record and settings use-cases.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/repository"
	"github.com/quociou/pibao/internal/stats"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidFood     = errors.New("invalid food")
	ErrInvalidRecord   = errors.New("invalid record")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrRecordNotFound  = errors.New("record not found")
	ErrFoodNotFound    = errors.New("food not found")
)

// Service implements the journal use-cases on top of a repository.Store.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	// serializes read-modify-write cycles on records and settings
	mu sync.Mutex
}

// NewService wires a journal service.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Catalog lists foods ordered by their explicit order (unordered last), then name.
func (s *Service) Catalog(ctx context.Context) ([]models.FoodDefinition, error) {
	foods, err := s.store.ListFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	sort.SliceStable(foods, func(i, j int) bool {
		a, b := foods[i], foods[j]
		switch {
		case a.Order != nil && b.Order != nil && *a.Order != *b.Order:
			return *a.Order < *b.Order
		case a.Order != nil && b.Order == nil:
			return true
		case a.Order == nil && b.Order != nil:
			return false
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return foods, nil
}

// FoodCatalog returns the catalog indexed by id.
func (s *Service) FoodCatalog(ctx context.Context) (models.Catalog, error) {
	foods, err := s.store.ListFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return models.NewCatalog(foods), nil
}

// SaveFood validates and stores a food, assigning an id to new entries.
func (s *Service) SaveFood(ctx context.Context, food models.FoodDefinition) (models.FoodDefinition, error) {
	food.Normalize()
	if err := food.Validate(); err != nil {
		return models.FoodDefinition{}, fmt.Errorf("%w: %v", ErrInvalidFood, err)
	}
	if food.ID == "" {
		food.ID = s.newID()
	}
	if err := s.store.PutFood(ctx, food); err != nil {
		return models.FoodDefinition{}, fmt.Errorf("save food: %w", err)
	}
	s.logger.Info("food saved", zap.String("id", food.ID), zap.String("name", food.Name), zap.String("category", string(food.Category)))
	return food, nil
}

// UpdateFood replaces an existing food.
func (s *Service) UpdateFood(ctx context.Context, id string, food models.FoodDefinition) (models.FoodDefinition, error) {
	if _, err := s.store.GetFood(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.FoodDefinition{}, ErrFoodNotFound
		}
		return models.FoodDefinition{}, fmt.Errorf("get food: %w", err)
	}
	food.ID = id
	return s.SaveFood(ctx, food)
}

// DeleteFood removes a food. Records referencing it keep their entries and
// simply stop contributing to aggregates.
func (s *Service) DeleteFood(ctx context.Context, id string) error {
	if err := s.store.DeleteFood(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFoodNotFound
		}
		return fmt.Errorf("delete food: %w", err)
	}
	s.logger.Info("food deleted", zap.String("id", id))
	return nil
}

// Record loads the record of date.
func (s *Service) Record(ctx context.Context, date string) (models.DailyRecord, error) {
	key, err := normalizeDate(date)
	if err != nil {
		return models.DailyRecord{}, err
	}
	record, err := s.store.GetRecord(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.DailyRecord{}, ErrRecordNotFound
		}
		return models.DailyRecord{}, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// Records lists records within [from, to]. Empty bounds are open.
func (s *Service) Records(ctx context.Context, from, to string) ([]models.DailyRecord, error) {
	var err error
	if from != "" {
		if from, err = normalizeDate(from); err != nil {
			return nil, err
		}
	}
	if to != "" {
		if to, err = normalizeDate(to); err != nil {
			return nil, err
		}
	}
	if from != "" && to != "" && from > to {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidDate, from, to)
	}
	records, err := s.store.ListRecords(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// DraftRecord returns an unsaved record for date prefilled with the default foods.
func (s *Service) DraftRecord(ctx context.Context, date string) (models.DailyRecord, error) {
	key, err := normalizeDate(date)
	if err != nil {
		return models.DailyRecord{}, err
	}
	foods, err := s.Catalog(ctx)
	if err != nil {
		return models.DailyRecord{}, err
	}

	draft := models.DailyRecord{
		Date:         key,
		FoodIntakes:  []models.FoodIntakeEntry{},
		WaterIntakes: []models.WaterIntakeEntry{},
	}
	for _, f := range foods {
		if !f.IsDefault || f.DefaultAmount == nil || *f.DefaultAmount <= 0 {
			continue
		}
		draft.FoodIntakes = append(draft.FoodIntakes, models.FoodIntakeEntry{
			ID:     s.newID(),
			FoodID: f.ID,
			Amount: *f.DefaultAmount,
		})
	}
	return draft, nil
}

// SaveRecord validates and upserts record. Entry ids are assigned where
// missing and the stored id of an existing date is kept.
func (s *Service) SaveRecord(ctx context.Context, record models.DailyRecord) (models.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRecordLocked(ctx, record)
}

// UpdateRecord loads the record of date (or starts an empty one), applies fn and saves the result.
func (s *Service) UpdateRecord(ctx context.Context, date string, fn func(*models.DailyRecord) error) (models.DailyRecord, error) {
	key, err := normalizeDate(date)
	if err != nil {
		return models.DailyRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.store.GetRecord(ctx, key)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		record = models.DailyRecord{Date: key}
	case err != nil:
		return models.DailyRecord{}, fmt.Errorf("get record: %w", err)
	}

	if err := fn(&record); err != nil {
		return models.DailyRecord{}, err
	}
	record.Date = key
	return s.saveRecordLocked(ctx, record)
}

func (s *Service) saveRecordLocked(ctx context.Context, record models.DailyRecord) (models.DailyRecord, error) {
	key, err := normalizeDate(record.Date)
	if err != nil {
		return models.DailyRecord{}, err
	}
	record.Date = key
	if err := validateRecord(record); err != nil {
		return models.DailyRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	existing, err := s.store.GetRecord(ctx, key)
	switch {
	case err == nil:
		record.ID = existing.ID
		if record.BackedUpAt == nil {
			record.BackedUpAt = existing.BackedUpAt
		}
	case errors.Is(err, repository.ErrNotFound):
		if record.ID == "" {
			record.ID = s.newID()
		}
	default:
		return models.DailyRecord{}, fmt.Errorf("get record: %w", err)
	}

	for i := range record.FoodIntakes {
		if record.FoodIntakes[i].ID == "" {
			record.FoodIntakes[i].ID = s.newID()
		}
	}
	for i := range record.WaterIntakes {
		if record.WaterIntakes[i].ID == "" {
			record.WaterIntakes[i].ID = s.newID()
		}
	}
	if record.FoodIntakes == nil {
		record.FoodIntakes = []models.FoodIntakeEntry{}
	}
	if record.WaterIntakes == nil {
		record.WaterIntakes = []models.WaterIntakeEntry{}
	}
	record.UpdatedAt = s.now().UTC()

	if err := s.store.PutRecord(ctx, record); err != nil {
		return models.DailyRecord{}, fmt.Errorf("save record: %w", err)
	}
	s.logger.Info("record saved",
		zap.String("date", record.Date),
		zap.Int("food_entries", len(record.FoodIntakes)),
		zap.Int("water_entries", len(record.WaterIntakes)))
	return record, nil
}

// DeleteRecord removes the record of date.
func (s *Service) DeleteRecord(ctx context.Context, date string) error {
	key, err := normalizeDate(date)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRecord(ctx, key); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("delete record: %w", err)
	}
	s.logger.Info("record deleted", zap.String("date", key))
	return nil
}

// Settings returns the settings singleton, creating it with defaults on first access.
func (s *Service) Settings(ctx context.Context) (models.AppSettings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err == nil {
		return withReminderDefaults(settings), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.AppSettings{}, fmt.Errorf("get settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// another caller may have created it meanwhile
	if settings, err := s.store.GetSettings(ctx); err == nil {
		return withReminderDefaults(settings), nil
	}

	settings = models.DefaultSettings()
	settings.UpdatedAt = s.now().UTC()
	if err := s.store.PutSettings(ctx, settings); err != nil {
		return models.AppSettings{}, fmt.Errorf("create default settings: %w", err)
	}
	s.logger.Info("default settings created")
	return settings, nil
}

// SaveSettings validates and replaces the settings singleton.
func (s *Service) SaveSettings(ctx context.Context, settings models.AppSettings) (models.AppSettings, error) {
	settings = withReminderDefaults(settings)
	settings.ID = models.SettingsID
	if err := settings.Validate(); err != nil {
		return models.AppSettings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if settings.NotePresets == nil {
		settings.NotePresets = []string{}
	}
	settings.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.PutSettings(ctx, settings); err != nil {
		return models.AppSettings{}, fmt.Errorf("save settings: %w", err)
	}
	s.logger.Info("settings saved", zap.Float64("target_weight", settings.TargetWeight), zap.Float64("activity_factor", settings.ActivityFactor))
	return settings, nil
}

// DailyStats loads the record of date and aggregates it against the current catalog.
func (s *Service) DailyStats(ctx context.Context, date string) (stats.DailyStats, models.DailyRecord, error) {
	record, err := s.Record(ctx, date)
	if err != nil {
		return stats.DailyStats{}, models.DailyRecord{}, err
	}
	catalog, err := s.FoodCatalog(ctx)
	if err != nil {
		return stats.DailyStats{}, models.DailyRecord{}, err
	}
	return stats.ComputeDailyStats(record, catalog), record, nil
}

// MarkBackedUp stamps BackedUpAt on the records of dates. Missing dates are skipped.
func (s *Service) MarkBackedUp(ctx context.Context, dates []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := at.UTC()
	for _, date := range dates {
		record, err := s.store.GetRecord(ctx, date)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("get record %s: %w", date, err)
		}
		record.BackedUpAt = &stamp
		if err := s.store.PutRecord(ctx, record); err != nil {
			return fmt.Errorf("mark record %s backed up: %w", date, err)
		}
	}
	return nil
}

// Today returns today's date key in loc.
func (s *Service) Today(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return models.DateKey(s.now().In(loc))
}

func normalizeDate(date string) (string, error) {
	t, err := models.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return models.DateKey(t), nil
}

func validateRecord(r models.DailyRecord) error {
	if r.Weight < 0 {
		return fmt.Errorf("weight must be >= 0")
	}
	if r.UrineCount < 0 {
		return fmt.Errorf("urine_count must be >= 0")
	}
	if !r.Stool.Valid() {
		return fmt.Errorf("unknown stool status %q", r.Stool)
	}
	for i, f := range r.FoodIntakes {
		if strings.TrimSpace(f.FoodID) == "" {
			return fmt.Errorf("food_intakes[%d]: food_id is required", i)
		}
		if f.Amount <= 0 {
			return fmt.Errorf("food_intakes[%d]: amount must be > 0", i)
		}
	}
	for i, w := range r.WaterIntakes {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("water_intakes[%d]: %v", i, err)
		}
	}
	return nil
}

func withReminderDefaults(s models.AppSettings) models.AppSettings {
	defaults := models.DefaultSettings()
	reminders := make(map[models.ReminderKind]models.Reminder, len(models.ReminderKinds))
	for k, v := range s.Reminders {
		reminders[k] = v
	}
	for _, kind := range models.ReminderKinds {
		if r, ok := reminders[kind]; !ok || r.Marker == "" {
			reminders[kind] = defaults.Reminders[kind]
		}
	}
	s.Reminders = reminders
	return s
}
