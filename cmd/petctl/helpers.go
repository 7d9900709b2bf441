package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/app"
	"github.com/quociou/pibao/internal/config"
	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/pkg/logger"
)

// env carries what every subcommand needs once the store is open.
type env struct {
	app *app.App
	cfg *config.Config
	loc *time.Location
}

func withApp(ctx context.Context, run func(env) error) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, log.Named("petctl"))
	if err != nil {
		return err
	}
	defer closeStore(a, log)

	return run(env{app: a, cfg: cfg, loc: loc})
}

type closer interface {
	Close(ctx context.Context) error
}

func closeStore(c closer, log *zap.Logger) {
	if err := c.Close(context.Background()); err != nil {
		log.Warn("failed to close store", zap.Error(err))
	}
}

// dateArg returns args[0] as a date key, or today in loc.
func dateArg(args []string, loc *time.Location) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return models.DateKey(time.Now().In(loc)), nil
	}
	if _, err := models.ParseDate(args[0]); err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", args[0])
	}
	return args[0], nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
