package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/quociou/pibao/internal/service/export"
	"github.com/quociou/pibao/internal/service/reporting"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("EXPORT_WEBHOOK_URL", "")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	for _, name := range []string{"stats", "reminders", "trend", "export"} {
		if !strings.Contains(out, name) {
			t.Fatalf("help output missing %q:\n%s", name, out)
		}
	}
}

func TestRemindersOnEmptyJournal(t *testing.T) {
	out, err := run(t, "reminders", "2024-01-10")
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	if !strings.Contains(out, "never") {
		t.Fatalf("expected never-done cycles, got:\n%s", out)
	}
}

func TestStatsRejectsBadDate(t *testing.T) {
	if _, err := run(t, "stats", "10/01/2024"); err == nil {
		t.Fatalf("expected invalid date error")
	}
}

func TestExportWithoutSinks(t *testing.T) {
	_, err := run(t, "export", "--dry-run=false", "--pending=false")
	if !errors.Is(err, export.ErrNoSinks) {
		t.Fatalf("export err = %v, want ErrNoSinks", err)
	}
}

func TestExportDryRunPrintsHeader(t *testing.T) {
	out, err := run(t, "export", "--dry-run", "--pending=false")
	if err != nil {
		t.Fatalf("export --dry-run: %v", err)
	}
	if !strings.HasPrefix(out, "date,weight,total_kcal") {
		t.Fatalf("unexpected csv output:\n%s", out)
	}
}

func TestTrendValidatesRange(t *testing.T) {
	if _, err := run(t, "trend", "--days", "0", "--from", "", "--to", "2024-01-31"); err == nil || !strings.Contains(err.Error(), "--days") {
		t.Fatalf("trend --days 0 err = %v", err)
	}
	_, err := run(t, "trend", "--days", "30", "--from", "2024-1-5", "--to", "2024-01-31")
	if !errors.Is(err, reporting.ErrInvalidDate) {
		t.Fatalf("trend unpadded --from err = %v, want ErrInvalidDate", err)
	}
	if _, err := run(t, "trend", "--days", "7", "--from", "", "--to", "2024-01-31"); err != nil {
		t.Fatalf("trend: %v", err)
	}
}
