package export

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/repository/sheets"
	"github.com/quociou/pibao/internal/stats"
	"github.com/quociou/pibao/pkg/clients/webhook"
)

// Sink receives export rows. Pushing the same date twice must update, not duplicate.
type Sink interface {
	Name() string
	Push(ctx context.Context, rows []stats.ExportRow) error
}

// SheetsSink upserts rows into one sheet tab keyed by the date column.
type SheetsSink struct {
	repo   sheets.Repository
	sheet  string
	logger *zap.Logger
}

// NewSheetsSink writes into the tab named sheet.
func NewSheetsSink(repo sheets.Repository, sheet string, logger *zap.Logger) *SheetsSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetsSink{repo: repo, sheet: sheet, logger: logger}
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Push(ctx context.Context, rows []stats.ExportRow) error {
	existing, err := s.repo.ReadRange(ctx, fmt.Sprintf("%s!A:A", s.sheet))
	if err != nil {
		return fmt.Errorf("read date column: %w", err)
	}

	if len(existing) == 0 {
		if err := s.repo.UpdateRange(ctx, s.rowRange(1), [][]interface{}{stats.ExportHeader}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		existing = [][]interface{}{{stats.ExportHeader[0]}}
	}

	// 1-based sheet row of every date already present
	rowOf := make(map[string]int, len(existing))
	for i, cells := range existing {
		if len(cells) == 0 {
			continue
		}
		rowOf[strings.TrimSpace(fmt.Sprint(cells[0]))] = i + 1
	}

	var appends [][]interface{}
	updated := 0
	for _, row := range rows {
		if n, ok := rowOf[row.Date]; ok {
			if err := s.repo.UpdateRange(ctx, s.rowRange(n), [][]interface{}{row.Values()}); err != nil {
				return fmt.Errorf("update row %s: %w", row.Date, err)
			}
			updated++
			continue
		}
		appends = append(appends, row.Values())
	}

	if len(appends) > 0 {
		if err := s.repo.AppendRows(ctx, fmt.Sprintf("%s!A:%s", s.sheet, lastColumn()), appends); err != nil {
			return fmt.Errorf("append rows: %w", err)
		}
	}

	s.logger.Info("sheet export done", zap.String("sheet", s.sheet), zap.Int("updated", updated), zap.Int("appended", len(appends)))
	return nil
}

func (s *SheetsSink) rowRange(n int) string {
	return fmt.Sprintf("%s!A%d:%s%d", s.sheet, n, lastColumn(), n)
}

func lastColumn() string {
	return string(rune('A' + len(stats.ExportHeader) - 1))
}

// WebhookSink posts rows to a spreadsheet web app.
type WebhookSink struct {
	client webhook.Client
	logger *zap.Logger
}

// NewWebhookSink wraps a webhook client.
func NewWebhookSink(client webhook.Client, logger *zap.Logger) *WebhookSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookSink{client: client, logger: logger}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Push(ctx context.Context, rows []stats.ExportRow) error {
	header := make([]string, len(stats.ExportHeader))
	for i, h := range stats.ExportHeader {
		header[i] = fmt.Sprint(h)
	}
	req := webhook.PushRowsRequest{Header: header, Rows: make([][]interface{}, 0, len(rows))}
	for _, row := range rows {
		req.Rows = append(req.Rows, row.Values())
	}

	resp, err := s.client.PushRows(ctx, req)
	if err != nil {
		return err
	}
	s.logger.Info("webhook export done", zap.Int("inserted", resp.Inserted), zap.Int("updated", resp.Updated))
	return nil
}
