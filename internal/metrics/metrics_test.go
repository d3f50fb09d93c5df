package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Ensure NoOpMetrics methods do not panic and global functions delegate without error
func TestNoOpMetricsAndDelegates(t *testing.T) {
	m := &NoOpMetrics{}
	m.RecordHTTPRequest("GET", "/x", 200, time.Millisecond)
	m.RecordFetch("github", "json", "ok", time.Millisecond)
	m.RecordSyncRun("success", time.Millisecond)
	m.RecordStatusChange("github", "operational", "incident")
	m.RecordNotification("email", "sent")
	m.RecordCacheLookup(true)
	m.SetDBConnectionsActive(1)
	m.RecordDBQuery("exec", "ok")

	Set(m)
	RecordHTTPRequest("GET", "/x", 200, time.Millisecond)
	RecordFetch("github", "json", "ok", time.Millisecond)
	RecordSyncRun("success", time.Millisecond)
	SetDBConnectionsActive(2)
	RecordDBQuery("query", "ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 from no-op handler, got %d", rec.Code)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())

	m.RecordFetch("openai", "rss", "ok", 20*time.Millisecond)
	m.RecordFetch("openai", "rss", "ok", 30*time.Millisecond)
	m.RecordFetch("openai", "rss", "error", time.Second)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.RecordStatusChange("openai", "operational", "incident")
	m.RecordNotification("email", "sent")

	if got := testutil.ToFloat64(m.fetches.WithLabelValues("openai", "rss", "ok")); got != 2 {
		t.Errorf("ok fetches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.changes.WithLabelValues("openai", "operational", "incident")); got != 1 {
		t.Errorf("status changes = %v, want 1", got)
	}
}

func TestPrometheusHandler(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())
	m.RecordHTTPRequest("GET", "/v1/services", 200, 5*time.Millisecond)
	m.RecordSyncRun("success", 2*time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`statusaggregator_http_requests_total{method="GET",route="/v1/services",status="200"} 1`,
		`statusaggregator_sync_runs_total{status="success"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestInitInstallsPrometheus(t *testing.T) {
	Init()
	defer Set(&NoOpMetrics{})

	if _, ok := current().(*PrometheusMetrics); !ok {
		t.Fatalf("expected prometheus metrics after Init, got %T", current())
	}
	RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
