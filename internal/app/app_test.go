package app

import (
	"context"
	"testing"
	"time"

	"github.com/quociou/pibao/internal/config"
	"github.com/quociou/pibao/internal/domain/models"
)

func TestNew_MemoryDriver(t *testing.T) {
	cfg := &config.Config{
		Store:  config.StoreConfig{Driver: config.DriverMemory},
		Export: config.ExportConfig{WebhookURL: "http://127.0.0.1:1/exec", Timeout: time.Second},
	}
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	if _, err := a.Journal.SaveRecord(context.Background(), models.DailyRecord{Date: "2024-01-01"}); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	rows, err := a.Export.Rows(context.Background(), "", "")
	if err != nil || len(rows) != 1 {
		t.Fatalf("Rows = %v, %v", rows, err)
	}
}

func TestExportSinks(t *testing.T) {
	sinks, err := ExportSinks(context.Background(), &config.Config{}, nil)
	if err != nil || len(sinks) != 0 {
		t.Fatalf("no targets: %v %v", sinks, err)
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	if _, err := OpenStore(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "csv"}}, nil); err == nil {
		t.Fatalf("expected error")
	}
}
