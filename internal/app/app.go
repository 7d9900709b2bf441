// Package app builds the shared dependency graph used by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/config"
	"github.com/quociou/pibao/internal/repository"
	"github.com/quociou/pibao/internal/repository/memory"
	"github.com/quociou/pibao/internal/repository/mongodb"
	"github.com/quociou/pibao/internal/repository/sheets"
	"github.com/quociou/pibao/internal/service/export"
	"github.com/quociou/pibao/internal/service/journal"
	"github.com/quociou/pibao/internal/service/reporting"
	"github.com/quociou/pibao/pkg/clients/webhook"
)

// App holds the services shared by every entry point.
type App struct {
	Store     repository.Store
	Journal   *journal.Service
	Reporting *reporting.Service
	Export    *export.Service
}

// OpenStore connects the configured persistence adapter.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.New(), nil
	case config.DriverMongo:
		return mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named("repo.mongodb"))
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// ExportSinks builds one sink per configured export target.
func ExportSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]export.Sink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var sinks []export.Sink
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named("repo.sheets"))
		if err != nil {
			return nil, fmt.Errorf("init sheets repository: %w", err)
		}
		sinks = append(sinks, export.NewSheetsSink(repo, cfg.Sheets.SheetName, logger.Named("export.sheets")))
	}
	if cfg.Export.WebhookURL != "" {
		sinks = append(sinks, export.NewWebhookSink(webhook.NewClient(cfg.Export), logger.Named("export.webhook")))
	}
	return sinks, nil
}

// New opens the store and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sinks, err := ExportSinks(ctx, cfg, logger)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	j := journal.NewService(store, logger.Named("svc.journal"))
	return &App{
		Store:     store,
		Journal:   j,
		Reporting: reporting.NewService(j, logger.Named("svc.reporting")),
		Export:    export.NewService(j, sinks, logger.Named("svc.export")),
	}, nil
}

// Close releases the store connection.
func (a *App) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}
