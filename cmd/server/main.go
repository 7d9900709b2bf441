package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/app"
	"github.com/quociou/pibao/internal/config"
	"github.com/quociou/pibao/internal/scheduler"
	"github.com/quociou/pibao/internal/server/handlers"
	"github.com/quociou/pibao/internal/server/router"
	commandsvc "github.com/quociou/pibao/internal/service/commands"
	whatsappsvc "github.com/quociou/pibao/internal/service/whatsapp"
	whatsappclient "github.com/quociou/pibao/pkg/clients/whatsapp"
	"github.com/quociou/pibao/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Schedule.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(startCtx, cfg, baseLogger)
	cancelStart()
	if err != nil {
		baseLogger.Fatal("failed to init application", zap.Error(err))
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	h := router.Handlers{
		Journal: handlers.NewJournalHandler(a.Journal, baseLogger.Named("handlers.journal")),
		Report:  handlers.NewReportHandler(a.Reporting, a.Export, loc, baseLogger.Named("handlers.report")),
	}

	// a typed nil would defeat the scheduler's nil check
	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		dispatcher := commandsvc.NewService(a.Journal, a.Reporting, loc, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, baseLogger.Named("svc.whatsapp"))
		h.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		notifier = messagingSvc
		baseLogger.Info("whatsapp messaging enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, chat logging and notifications disabled")
	}

	engine := router.New(cfg.Server, h, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(*cfg, a.Reporting, a.Export, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
