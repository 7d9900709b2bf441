package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/config"
	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/service/export"
)

const jobTimeout = 2 * time.Minute

var jobRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pibao_scheduler_runs_total",
		Help: "Scheduled job executions by job and outcome.",
	},
	[]string{"job", "status"},
)

func init() {
	prometheus.MustRegister(jobRuns)
}

// Reporter renders the scheduled chat messages.
type Reporter interface {
	ReminderDigest(ctx context.Context, today string) (string, error)
	WeeklyReport(ctx context.Context, now time.Time) (string, error)
}

// Exporter backs up records changed since the last run.
type Exporter interface {
	RunPending(ctx context.Context) (export.Result, error)
}

// Notifier delivers a message to the owner.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.Config
	loc      *time.Location
	reporter Reporter
	exporter Exporter
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler evaluating cron expressions in the configured timezone.
// exporter and notifier may be nil; the jobs depending on them are then skipped.
func NewScheduler(cfg config.Config, reporter Reporter, exporter Exporter, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		loc:      loc,
		reporter: reporter,
		exporter: exporter,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the configured jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func()
		ok   bool
	}{
		{"reminders", s.cfg.Schedule.ReminderCron, s.sendReminders, s.notifier != nil && s.cfg.WhatsApp.OwnerID != ""},
		{"weekly_report", s.cfg.Schedule.WeeklyReportCron, s.sendWeeklyReport, s.notifier != nil && s.cfg.WhatsApp.OwnerID != ""},
		{"export", s.cfg.Schedule.ExportCron, s.runExport, s.exporter != nil},
	}

	for _, job := range jobs {
		spec := strings.TrimSpace(job.spec)
		if spec == "" || strings.EqualFold(spec, "off") || !job.ok {
			s.logger.Info("scheduled job disabled", zap.String("job", job.name))
			continue
		}
		if _, err := s.cron.AddFunc(spec, job.run); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.name, spec, err)
		}
		s.logger.Info("scheduled job registered", zap.String("job", job.name), zap.String("spec", spec))
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendReminders() {
	s.track("reminders", func(ctx context.Context) error {
		today := models.DateKey(s.now().In(s.loc))
		digest, err := s.reporter.ReminderDigest(ctx, today)
		if err != nil {
			return fmt.Errorf("build reminder digest: %w", err)
		}
		if digest == "" {
			s.logger.Debug("no reminders due", zap.String("date", today))
			return nil
		}
		return s.notify(ctx, digest)
	})
}

func (s *Scheduler) sendWeeklyReport() {
	s.track("weekly_report", func(ctx context.Context) error {
		report, err := s.reporter.WeeklyReport(ctx, s.now().In(s.loc))
		if err != nil {
			return fmt.Errorf("generate weekly report: %w", err)
		}
		return s.notify(ctx, report)
	})
}

func (s *Scheduler) runExport() {
	s.track("export", func(ctx context.Context) error {
		res, err := s.exporter.RunPending(ctx)
		if errors.Is(err, export.ErrNoSinks) {
			return nil
		}
		if err != nil {
			return err
		}
		s.logger.Info("nightly export done", zap.Int("rows", res.Rows))
		return nil
	})
}

func (s *Scheduler) notify(ctx context.Context, message string) error {
	return s.notifier.SendOutbound(ctx, models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.OwnerID,
		Message: message,
	})
}

// track runs fn with a timeout and records the outcome. Failures are logged, never retried.
func (s *Scheduler) track(job string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.logger.Info("running scheduled job", zap.String("job", job))
	if err := fn(ctx); err != nil {
		jobRuns.WithLabelValues(job, "error").Inc()
		s.logger.Error("scheduled job failed", zap.String("job", job), zap.Error(err))
		return
	}
	jobRuns.WithLabelValues(job, "ok").Inc()
}
