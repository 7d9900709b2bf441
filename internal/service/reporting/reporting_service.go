package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/stats"
)

// ErrInvalidDate is returned for malformed date bounds or an inverted range.
var ErrInvalidDate = errors.New("invalid date")

// Journal is the read side of the journal service used for analytics.
type Journal interface {
	Records(ctx context.Context, from, to string) ([]models.DailyRecord, error)
	FoodCatalog(ctx context.Context) (models.Catalog, error)
	Settings(ctx context.Context) (models.AppSettings, error)
}

// TrendPoint is the aggregated view of one recorded day.
type TrendPoint struct {
	Date           string                      `json:"date"`
	Weight         float64                     `json:"weight"`
	WeightRecorded bool                        `json:"weight_recorded"`
	Stats          stats.DailyStats            `json:"stats"`
	UrineOrdinal   *float64                    `json:"urine_ordinal,omitempty"`
	UrineCount     int                         `json:"urine_count"`
	Stool          models.StoolStatus          `json:"stool,omitempty"`
	DaysSince      map[models.ReminderKind]int `json:"days_since"`
}

// TrendReport wraps the points of a date range with the daily targets.
type TrendReport struct {
	From          string       `json:"from"`
	To            string       `json:"to"`
	TargetWeight  float64      `json:"target_weight"`
	CalorieTarget float64      `json:"calorie_target"`
	Points        []TrendPoint `json:"points"`
}

// ReminderStatus describes one maintenance cycle as of a given day.
type ReminderStatus struct {
	Kind         models.ReminderKind `json:"kind"`
	Marker       string              `json:"marker"`
	IntervalDays int                 `json:"interval_days"`
	LastDate     string              `json:"last_date,omitempty"`
	DaysSince    int                 `json:"days_since"`
	Due          bool                `json:"due"`
}

// Service exposes trends, reminders and text summaries.
type Service struct {
	journal Journal
	logger  *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(journal Journal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{journal: journal, logger: logger}
}

// Trend aggregates every recorded day in [from, to]. Reminder counters and the
// carried weight take the whole history before from into account. An empty
// bound leaves that side of the range open.
func (s *Service) Trend(ctx context.Context, from, to string) (TrendReport, error) {
	from, err := dateBound(from)
	if err != nil {
		return TrendReport{}, err
	}
	if to, err = dateBound(to); err != nil {
		return TrendReport{}, err
	}
	if from != "" && to != "" && from > to {
		return TrendReport{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalidDate, from, to)
	}

	history, err := s.journal.Records(ctx, "", to)
	if err != nil {
		return TrendReport{}, fmt.Errorf("load records: %w", err)
	}
	catalog, err := s.journal.FoodCatalog(ctx)
	if err != nil {
		return TrendReport{}, fmt.Errorf("load catalog: %w", err)
	}
	settings, err := s.journal.Settings(ctx)
	if err != nil {
		return TrendReport{}, fmt.Errorf("load settings: %w", err)
	}

	weights := stats.CarryForwardWeight(history, stats.DefaultWeight)
	days := make(map[models.ReminderKind]map[string]int, len(models.ReminderKinds))
	for _, kind := range models.ReminderKinds {
		days[kind] = stats.DaysSinceMarked(history, settings.Reminder(kind).Marker)
	}

	report := TrendReport{
		From:          from,
		To:            to,
		TargetWeight:  settings.TargetWeight,
		CalorieTarget: stats.Round1(stats.CalorieTarget(settings.TargetWeight, settings.ActivityFactor)),
		Points:        []TrendPoint{},
	}

	for _, rec := range history {
		if from != "" && rec.Date < from {
			continue
		}
		point := TrendPoint{
			Date:           rec.Date,
			Weight:         weights[rec.Date],
			WeightRecorded: rec.Weight > 0,
			Stats:          stats.ComputeDailyStats(rec, catalog),
			UrineCount:     rec.UrineCount,
			Stool:          rec.Stool,
			DaysSince:      make(map[models.ReminderKind]int, len(models.ReminderKinds)),
		}
		if strings.TrimSpace(rec.UrineSize) != "" {
			ordinal := stats.UrineOrdinal(rec.UrineSize)
			point.UrineOrdinal = &ordinal
		}
		for _, kind := range models.ReminderKinds {
			point.DaysSince[kind] = days[kind][rec.Date]
		}
		report.Points = append(report.Points, point)
	}

	s.logger.Debug("trend computed", zap.String("from", from), zap.String("to", to), zap.Int("points", len(report.Points)))
	return report, nil
}

// Reminders reports every maintenance cycle as of today (YYYY-MM-DD).
func (s *Service) Reminders(ctx context.Context, today string) ([]ReminderStatus, error) {
	asOf, err := models.ParseDate(today)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	records, err := s.journal.Records(ctx, "", models.DateKey(asOf))
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	settings, err := s.journal.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	out := make([]ReminderStatus, 0, len(models.ReminderKinds))
	for _, kind := range models.ReminderKinds {
		cfg := settings.Reminder(kind)
		status := ReminderStatus{
			Kind:         kind,
			Marker:       cfg.Marker,
			IntervalDays: cfg.IntervalDays,
			DaysSince:    stats.NeverMarked,
			Due:          true,
		}
		if last, ok := stats.LastMarked(records, cfg.Marker, asOf); ok {
			status.LastDate = models.DateKey(last)
			status.DaysSince = stats.DaysBetween(last, asOf)
			status.Due = status.DaysSince >= cfg.IntervalDays
		}
		out = append(out, status)
	}
	return out, nil
}

// ReminderDigest renders the due reminders as a chat message. It returns an
// empty string when nothing is due.
func (s *Service) ReminderDigest(ctx context.Context, today string) (string, error) {
	statuses, err := s.Reminders(ctx, today)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, st := range statuses {
		if !st.Due {
			continue
		}
		if st.DaysSince == stats.NeverMarked {
			lines = append(lines, fmt.Sprintf("- %s: never recorded (every %d days)", st.Kind, st.IntervalDays))
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %d days since %s (every %d days)", st.Kind, st.DaysSince, st.LastDate, st.IntervalDays))
	}
	if len(lines) == 0 {
		return "", nil
	}
	return fmt.Sprintf("Reminders for %s\n%s", today, strings.Join(lines, "\n")), nil
}

// WeeklyReport summarizes the seven days ending on now's date.
func (s *Service) WeeklyReport(ctx context.Context, now time.Time) (string, error) {
	to := models.DateKey(now)
	from := models.DateKey(now.AddDate(0, 0, -6))

	report, err := s.Trend(ctx, from, to)
	if err != nil {
		return "", err
	}
	if len(report.Points) == 0 {
		return fmt.Sprintf("Weekly report (%s to %s): no records yet.", from, to), nil
	}

	var kcal, side, water float64
	var pending int
	first, last := report.Points[0], report.Points[len(report.Points)-1]
	for _, p := range report.Points {
		kcal += p.Stats.TotalCalories
		side += p.Stats.SideCalories
		water += p.Stats.TotalWater
		pending += len(p.Stats.PendingWater)
	}
	n := float64(len(report.Points))

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly report (%s to %s), %d days logged\n", from, to, len(report.Points))
	fmt.Fprintf(&b, "Weight: %.2f kg (start %.2f, target %.2f)\n", last.Weight, first.Weight, report.TargetWeight)
	fmt.Fprintf(&b, "Calories: avg %.1f kcal/day (target %.1f)", kcal/n, report.CalorieTarget)
	if kcal > 0 {
		fmt.Fprintf(&b, ", snacks %.1f%%", side/kcal*100)
	}
	fmt.Fprintf(&b, "\nWater: avg %.1f ml/day", water/n)
	if pending > 0 {
		fmt.Fprintf(&b, " (%d bowls without leftover)", pending)
	}
	return b.String(), nil
}

// dateBound re-keys a YYYY-MM-DD bound so it compares correctly against stored dates.
func dateBound(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	t, err := models.ParseDate(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return models.DateKey(t), nil
}
