package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/service/journal"
	"github.com/quociou/pibao/internal/stats"
)

var (
	// ErrInvalidArguments indicates the command payload could not be parsed.
	ErrInvalidArguments = errors.New("invalid command arguments")
	// ErrUnsupportedCommand indicates the text is not a known command.
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrUnknownFood        = errors.New("unknown food")
	ErrNoPendingBowl      = errors.New("no bowl is waiting for a leftover")
)

// HelpText lists the accepted commands.
const HelpText = `Commands:
/weight 4.3
/water 30 (ml drunk directly)
/bowl 200 (ml poured)
/leftover 150 (ml left in the latest bowl)
/evap [ml]
/food <name> 25 (grams)
/note litter change
/stats
/reminders`

// JournalAdapter is the subset of the journal service used by chat commands.
type JournalAdapter interface {
	UpdateRecord(ctx context.Context, date string, fn func(*models.DailyRecord) error) (models.DailyRecord, error)
	DailyStats(ctx context.Context, date string) (stats.DailyStats, models.DailyRecord, error)
	FoodCatalog(ctx context.Context) (models.Catalog, error)
	Settings(ctx context.Context) (models.AppSettings, error)
}

// ReportingAdapter renders the reminder digest.
type ReportingAdapter interface {
	ReminderDigest(ctx context.Context, today string) (string, error)
}

// Dispatcher executes parsed commands against today's record.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements Dispatcher.
type Service struct {
	journal   JournalAdapter
	reporting ReportingAdapter
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher. Dates are resolved in loc.
func NewService(j JournalAdapter, reporting ReportingAdapter, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		journal:   j,
		reporting: reporting,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand applies cmd to today's record and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	today := models.DateKey(s.now().In(s.loc))

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandWeight:
		kg, err := amountArg(cmd.Args, 0)
		if err != nil {
			return "", err
		}
		if _, err := s.journal.UpdateRecord(ctx, today, func(r *models.DailyRecord) error {
			r.Weight = kg
			return nil
		}); err != nil {
			return "", err
		}
		return fmt.Sprintf("Weight %.2f kg saved for %s.", kg, today), nil

	case models.CommandWater:
		ml, err := amountArg(cmd.Args, 0)
		if err != nil {
			return "", err
		}
		if _, err := s.journal.UpdateRecord(ctx, today, appendWater(models.WaterIntakeEntry{Kind: models.WaterDirect, Amount: ml})); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ml of water logged for %s.", trim(ml), today), nil

	case models.CommandBowl:
		ml, err := amountArg(cmd.Args, 0)
		if err != nil {
			return "", err
		}
		if _, err := s.journal.UpdateRecord(ctx, today, appendWater(models.WaterIntakeEntry{Kind: models.WaterBowl, Original: ml})); err != nil {
			return "", err
		}
		return fmt.Sprintf("Bowl of %s ml logged. Send /leftover when you measure it.", trim(ml)), nil

	case models.CommandLeftover:
		ml, err := amountArg(cmd.Args, -1)
		if err != nil {
			return "", err
		}
		var consumed float64
		if _, err := s.journal.UpdateRecord(ctx, today, func(r *models.DailyRecord) error {
			for i := len(r.WaterIntakes) - 1; i >= 0; i-- {
				if r.WaterIntakes[i].Pending() {
					left := ml
					r.WaterIntakes[i].Leftover = &left
					consumed = stats.BowlConsumed(r.WaterIntakes[i])
					return nil
				}
			}
			return ErrNoPendingBowl
		}); err != nil {
			return "", err
		}
		return fmt.Sprintf("Leftover saved: %s ml drunk from the bowl.", trim(consumed)), nil

	case models.CommandEvap:
		ml, err := s.evaporationArg(ctx, cmd.Args)
		if err != nil {
			return "", err
		}
		if _, err := s.journal.UpdateRecord(ctx, today, appendWater(models.WaterIntakeEntry{Kind: models.WaterEvaporation, Amount: ml})); err != nil {
			return "", err
		}
		return fmt.Sprintf("Evaporation of %s ml deducted for %s.", trim(ml), today), nil

	case models.CommandFood:
		if len(cmd.Args) < 2 {
			return "", ErrInvalidArguments
		}
		grams, err := amountArg(cmd.Args[len(cmd.Args)-1:], 0)
		if err != nil {
			return "", err
		}
		ref := strings.Join(cmd.Args[:len(cmd.Args)-1], " ")
		catalog, err := s.journal.FoodCatalog(ctx)
		if err != nil {
			return "", err
		}
		food, ok := catalog.Lookup(ref)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownFood, ref)
		}
		if _, err := s.journal.UpdateRecord(ctx, today, func(r *models.DailyRecord) error {
			r.FoodIntakes = append(r.FoodIntakes, models.FoodIntakeEntry{FoodID: food.ID, Amount: grams})
			return nil
		}); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s g of %s logged (%.1f kcal).", trim(grams), food.Name, grams*food.CaloriesPerGram), nil

	case models.CommandNote:
		text := strings.TrimSpace(strings.Join(cmd.Args, " "))
		if text == "" {
			return "", ErrInvalidArguments
		}
		if _, err := s.journal.UpdateRecord(ctx, today, func(r *models.DailyRecord) error {
			r.AddNote(text)
			return nil
		}); err != nil {
			return "", err
		}
		return fmt.Sprintf("Note added for %s: %s", today, text), nil

	case models.CommandStats:
		st, rec, err := s.journal.DailyStats(ctx, today)
		if errors.Is(err, journal.ErrRecordNotFound) {
			return fmt.Sprintf("Nothing logged for %s yet.", today), nil
		}
		if err != nil {
			return "", err
		}
		return formatStats(today, st, rec), nil

	case models.CommandReminders:
		if s.reporting == nil {
			return "", ErrUnsupportedCommand
		}
		digest, err := s.reporting.ReminderDigest(ctx, today)
		if err != nil {
			return "", err
		}
		if digest == "" {
			return "No reminders due today.", nil
		}
		return digest, nil

	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) evaporationArg(ctx context.Context, args []string) (float64, error) {
	if len(args) > 0 {
		return amountArg(args, -1)
	}
	settings, err := s.journal.Settings(ctx)
	if err != nil {
		return 0, err
	}
	return settings.DefaultEvaporation, nil
}

func appendWater(entry models.WaterIntakeEntry) func(*models.DailyRecord) error {
	return func(r *models.DailyRecord) error {
		r.WaterIntakes = append(r.WaterIntakes, entry)
		return nil
	}
}

func formatStats(date string, st stats.DailyStats, rec models.DailyRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", date)
	if rec.Weight > 0 {
		fmt.Fprintf(&b, "Weight: %.2f kg\n", rec.Weight)
	}
	fmt.Fprintf(&b, "Calories: %.1f kcal (snacks %.1f)\n", st.TotalCalories, st.SideCalories)
	fmt.Fprintf(&b, "Water: %.1f ml (food %.1f, drink %.1f)", st.TotalWater, st.FoodWater, st.DrinkWater)
	if n := len(st.PendingWater); n > 0 {
		fmt.Fprintf(&b, "\n%d bowl(s) waiting for /leftover", n)
	}
	if rec.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", rec.Notes)
	}
	return b.String()
}

// amountArg parses args[0] as a number, accepting unit suffixes such as
// "kg", "g" or "ml". Values must be greater than floor.
func amountArg(args []string, floor float64) (float64, error) {
	if len(args) == 0 {
		return 0, ErrInvalidArguments
	}
	raw := strings.ToLower(strings.TrimSpace(args[0]))
	raw = strings.TrimRightFunc(raw, func(r rune) bool { return r >= 'a' && r <= 'z' })
	raw = strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= floor {
		return 0, ErrInvalidArguments
	}
	return v, nil
}

func trim(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
