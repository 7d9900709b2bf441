package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quociou/pibao/internal/config"
	"github.com/quociou/pibao/internal/repository/memory"
	"github.com/quociou/pibao/internal/server/handlers"
	"github.com/quociou/pibao/internal/service/export"
	"github.com/quociou/pibao/internal/service/journal"
	"github.com/quociou/pibao/internal/service/reporting"
)

func newTestRouter(t *testing.T, origins []string) http.Handler {
	t.Helper()
	j := journal.NewService(memory.New(), nil)
	rep := reporting.NewService(j, nil)
	ex := export.NewService(j, nil, nil)
	return New(config.ServerConfig{GinMode: "test", CORSOrigins: origins}, Handlers{
		Journal: handlers.NewJournalHandler(j, nil),
		Report:  handlers.NewReportHandler(rep, ex, time.UTC, nil),
	}, nil)
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_EndToEnd(t *testing.T) {
	r := newTestRouter(t, nil)

	if w := serve(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}

	w := serve(r, http.MethodPost, "/api/v1/foods", `{"name":"Kibble","category":"dry","calories_per_gram":4}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create food = %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodPut, "/api/v1/records/2024-01-01", `{"weight":4.1,"notes":"litter change"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("put record = %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/api/v1/reminders?date=2024-01-03", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"days_since":2`) {
		t.Fatalf("reminders = %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/api/v1/records/2024-01-09/stats", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing stats = %d", w.Code)
	}

	w = serve(r, http.MethodPost, "/api/v1/export", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("export without sinks = %d", w.Code)
	}
}

func TestRouter_FallbacksAndMetrics(t *testing.T) {
	r := newTestRouter(t, nil)

	w := serve(r, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), handlers.ErrCodeNotFound) {
		t.Fatalf("no route = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}

	w = serve(r, http.MethodPatch, "/api/v1/settings", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("no method = %d", w.Code)
	}

	// webhook routes are not mounted without a handler
	if w := serve(r, http.MethodGet, "/webhook", ""); w.Code != http.StatusNotFound {
		t.Fatalf("webhook without handler = %d", w.Code)
	}

	w = serve(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("metrics = %d", w.Code)
	}
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(t, []string{"https://app.example"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/foods", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin = %d", w.Code)
	}
}
