package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/stats"
	"github.com/quociou/pibao/pkg/clients/webhook"
)

type stubJournal struct {
	records []models.DailyRecord
	marked  []string
	markErr error
}

func (s *stubJournal) Records(_ context.Context, from, to string) ([]models.DailyRecord, error) {
	var out []models.DailyRecord
	for _, r := range s.records {
		if (from == "" || r.Date >= from) && (to == "" || r.Date <= to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubJournal) FoodCatalog(context.Context) (models.Catalog, error) {
	return models.NewCatalog([]models.FoodDefinition{{ID: "k", Name: "Kibble", Category: models.CategoryKibble, CaloriesPerGram: 4}}), nil
}

func (s *stubJournal) MarkBackedUp(_ context.Context, dates []string, _ time.Time) error {
	s.marked = append(s.marked, dates...)
	return s.markErr
}

type recordingSink struct {
	name string
	rows []stats.ExportRow
	err  error
}

func (s *recordingSink) Name() string { return s.name }
func (s *recordingSink) Push(_ context.Context, rows []stats.ExportRow) error {
	s.rows = append(s.rows, rows...)
	return s.err
}

type fakeSheets struct {
	column  [][]interface{}
	updates map[string][][]interface{}
	appends [][]interface{}
	readErr error
}

func (f *fakeSheets) AppendRows(_ context.Context, _ string, rows [][]interface{}) error {
	f.appends = append(f.appends, rows...)
	return nil
}

func (f *fakeSheets) UpdateRange(_ context.Context, r string, rows [][]interface{}) error {
	if f.updates == nil {
		f.updates = map[string][][]interface{}{}
	}
	f.updates[r] = rows
	return nil
}

func (f *fakeSheets) ReadRange(context.Context, string) ([][]interface{}, error) {
	return f.column, f.readErr
}

type stubWebhook struct {
	fn func(req webhook.PushRowsRequest) (*webhook.PushRowsResponse, error)
}

func (s stubWebhook) PushRows(_ context.Context, req webhook.PushRowsRequest) (*webhook.PushRowsResponse, error) {
	return s.fn(req)
}

func journalWith(dates ...string) *stubJournal {
	j := &stubJournal{}
	for _, d := range dates {
		j.records = append(j.records, models.DailyRecord{Date: d, FoodIntakes: []models.FoodIntakeEntry{{FoodID: "k", Amount: 10}}})
	}
	return j
}

func TestRun_PushesAndMarks(t *testing.T) {
	j := journalWith("2024-01-01", "2024-01-02", "2024-01-03")
	sink := &recordingSink{name: "rec-ok"}
	svc := NewService(j, []Sink{sink}, nil)

	res, err := svc.Run(context.Background(), "2024-01-02", "2024-01-03")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Rows != 2 || len(sink.rows) != 2 || sink.rows[0].TotalCalories != 40 {
		t.Fatalf("result = %+v rows = %+v", res, sink.rows)
	}
	if strings.Join(j.marked, ",") != "2024-01-02,2024-01-03" {
		t.Fatalf("marked = %v", j.marked)
	}
	if got := testutil.ToFloat64(exportedRows.WithLabelValues("rec-ok")); got != 2 {
		t.Fatalf("exported rows counter = %v", got)
	}
}

func TestRun_SinkFailureAborts(t *testing.T) {
	j := journalWith("2024-01-01")
	bad := &recordingSink{name: "rec-bad", err: errors.New("quota")}
	after := &recordingSink{name: "rec-after"}
	svc := NewService(j, []Sink{bad, after}, nil)

	if _, err := svc.Run(context.Background(), "", ""); !errors.Is(err, ErrSinkFailed) {
		t.Fatalf("err = %v, want ErrSinkFailed", err)
	}
	if len(j.marked) != 0 || len(after.rows) != 0 {
		t.Fatalf("failed run must not continue: marked=%v after=%d", j.marked, len(after.rows))
	}
	if got := testutil.ToFloat64(exportFailures.WithLabelValues("rec-bad")); got != 1 {
		t.Fatalf("failure counter = %v", got)
	}
}

func TestRun_NoSinks(t *testing.T) {
	if _, err := NewService(journalWith(), nil, nil).Run(context.Background(), "", ""); !errors.Is(err, ErrNoSinks) {
		t.Fatalf("err = %v, want ErrNoSinks", err)
	}
}

func TestRunPending(t *testing.T) {
	backed := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	j := &stubJournal{records: []models.DailyRecord{
		{Date: "2024-01-01", UpdatedAt: backed.Add(-time.Hour), BackedUpAt: &backed},
		{Date: "2024-01-02", UpdatedAt: backed.Add(time.Hour), BackedUpAt: &backed},
		{Date: "2024-01-03"},
	}}
	sink := &recordingSink{name: "rec-pending"}

	res, err := NewService(j, []Sink{sink}, nil).RunPending(context.Background())
	if err != nil {
		t.Fatalf("RunPending: %v", err)
	}
	if strings.Join(res.Dates, ",") != "2024-01-02,2024-01-03" {
		t.Fatalf("dates = %v", res.Dates)
	}
}

func TestSheetsSink_Upsert(t *testing.T) {
	fs := &fakeSheets{column: [][]interface{}{{"date"}, {"2024-01-01"}, {"2024-01-02"}}}
	sink := NewSheetsSink(fs, "DailyLog", nil)

	err := sink.Push(context.Background(), []stats.ExportRow{{Date: "2024-01-02"}, {Date: "2024-01-05"}})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, ok := fs.updates["DailyLog!A3:M3"]; !ok || len(fs.updates) != 1 {
		t.Fatalf("updates = %v", fs.updates)
	}
	if len(fs.appends) != 1 || fs.appends[0][0] != "2024-01-05" {
		t.Fatalf("appends = %v", fs.appends)
	}
}

func TestSheetsSink_WritesHeaderOnEmptySheet(t *testing.T) {
	fs := &fakeSheets{}
	sink := NewSheetsSink(fs, "DailyLog", nil)

	if err := sink.Push(context.Background(), []stats.ExportRow{{Date: "2024-01-01"}}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if hdr, ok := fs.updates["DailyLog!A1:M1"]; !ok || hdr[0][0] != "date" {
		t.Fatalf("header not written: %v", fs.updates)
	}
	if len(fs.appends) != 1 {
		t.Fatalf("appends = %v", fs.appends)
	}

	fs = &fakeSheets{readErr: errors.New("403")}
	if err := NewSheetsSink(fs, "DailyLog", nil).Push(context.Background(), nil); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestWebhookSink(t *testing.T) {
	var got webhook.PushRowsRequest
	sink := NewWebhookSink(stubWebhook{fn: func(req webhook.PushRowsRequest) (*webhook.PushRowsResponse, error) {
		got = req
		return &webhook.PushRowsResponse{OK: true, Inserted: 1}, nil
	}}, nil)

	if err := sink.Push(context.Background(), []stats.ExportRow{{Date: "2024-01-01", Weight: 4.2}}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(got.Header) != len(stats.ExportHeader) || got.Rows[0][1] != 4.2 {
		t.Fatalf("request = %+v", got)
	}

	failing := NewWebhookSink(stubWebhook{fn: func(webhook.PushRowsRequest) (*webhook.PushRowsResponse, error) {
		return nil, errors.New("timeout")
	}}, nil)
	if err := failing.Push(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}
