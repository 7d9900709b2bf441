// Package export pushes flattened daily rows to external spreadsheets and
// stamps the exported records.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/stats"
)

var (
	// ErrNoSinks is returned by Run when no export target is configured.
	ErrNoSinks = errors.New("no export sink configured")
	// ErrSinkFailed wraps the error of the sink that aborted a run.
	ErrSinkFailed = errors.New("export sink failed")
)

// Journal is the part of the journal service the exporter needs.
type Journal interface {
	Records(ctx context.Context, from, to string) ([]models.DailyRecord, error)
	FoodCatalog(ctx context.Context) (models.Catalog, error)
	MarkBackedUp(ctx context.Context, dates []string, at time.Time) error
}

// Result summarizes an export run.
type Result struct {
	Rows  int      `json:"rows"`
	Sinks []string `json:"sinks"`
	Dates []string `json:"dates"`
}

// Service builds export rows and fans them out to every sink.
type Service struct {
	journal Journal
	sinks   []Sink
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires an exporter. Sinks may be empty; Run then fails with ErrNoSinks.
func NewService(journal Journal, sinks []Sink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{journal: journal, sinks: sinks, logger: logger, now: time.Now}
}

// Rows returns the export rows of [from, to].
func (s *Service) Rows(ctx context.Context, from, to string) ([]stats.ExportRow, error) {
	records, err := s.journal.Records(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return s.buildRows(ctx, records)
}

// Run pushes the rows of [from, to] to every sink, then marks the records as backed up.
// The first failing sink aborts the run and nothing is marked.
func (s *Service) Run(ctx context.Context, from, to string) (Result, error) {
	records, err := s.journal.Records(ctx, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("load records: %w", err)
	}
	return s.push(ctx, records)
}

// RunPending exports only the records changed since their last backup.
func (s *Service) RunPending(ctx context.Context) (Result, error) {
	records, err := s.journal.Records(ctx, "", "")
	if err != nil {
		return Result{}, fmt.Errorf("load records: %w", err)
	}
	pending := records[:0:0]
	for _, r := range records {
		if r.BackedUpAt == nil || r.UpdatedAt.After(*r.BackedUpAt) {
			pending = append(pending, r)
		}
	}
	return s.push(ctx, pending)
}

func (s *Service) push(ctx context.Context, records []models.DailyRecord) (Result, error) {
	if len(s.sinks) == 0 {
		return Result{}, ErrNoSinks
	}
	result := Result{Sinks: make([]string, 0, len(s.sinks)), Dates: make([]string, 0, len(records))}
	for _, sink := range s.sinks {
		result.Sinks = append(result.Sinks, sink.Name())
	}
	if len(records) == 0 {
		return result, nil
	}

	rows, err := s.buildRows(ctx, records)
	if err != nil {
		return Result{}, err
	}

	for _, sink := range s.sinks {
		if err := sink.Push(ctx, rows); err != nil {
			exportFailures.WithLabelValues(sink.Name()).Inc()
			s.logger.Error("export sink failed", zap.String("sink", sink.Name()), zap.Error(err))
			return Result{}, fmt.Errorf("%w: %s: %w", ErrSinkFailed, sink.Name(), err)
		}
		exportedRows.WithLabelValues(sink.Name()).Add(float64(len(rows)))
	}

	for _, r := range rows {
		result.Dates = append(result.Dates, r.Date)
	}
	result.Rows = len(rows)

	if err := s.journal.MarkBackedUp(ctx, result.Dates, s.now()); err != nil {
		return Result{}, fmt.Errorf("mark backed up: %w", err)
	}

	s.logger.Info("export finished", zap.Int("rows", result.Rows), zap.Strings("sinks", result.Sinks))
	return result, nil
}

func (s *Service) buildRows(ctx context.Context, records []models.DailyRecord) ([]stats.ExportRow, error) {
	catalog, err := s.journal.FoodCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	rows := make([]stats.ExportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, stats.BuildExportRow(r, catalog))
	}
	return rows, nil
}
