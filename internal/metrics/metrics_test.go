package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveExport(t *testing.T) {
	m := New()
	m.ObserveExport("monthly_summary", 20*time.Millisecond, 8000, nil)
	m.ObserveExport("monthly_summary", 5*time.Millisecond, 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.exports.WithLabelValues("monthly_summary", OutcomeOK)); got != 1 {
		t.Fatalf("ok exports = %v", got)
	}
	if got := testutil.ToFloat64(m.exports.WithLabelValues("monthly_summary", OutcomeError)); got != 1 {
		t.Fatalf("error exports = %v", got)
	}
	if n := testutil.CollectAndCount(m.exportBytes); n != 1 {
		t.Fatalf("export bytes series = %d", n)
	}
}

func TestSetDuplicates(t *testing.T) {
	m := New()
	m.SetDuplicates("cabinets_codes", 3)
	m.SetDuplicates("cabinets_codes", 1)
	if got := testutil.ToFloat64(m.duplicates.WithLabelValues("cabinets_codes")); got != 1 {
		t.Fatalf("gauge = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAggregation("cabinet", time.Second, nil)
	m.ObserveExport("x", time.Second, 1, nil)
	m.SetDuplicates("g", 1)
	m.ObserveAudit(nil)
	m.ObserveHTTP("GET", "/healthz", 200)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("nil handler status = %d", rec.Code)
	}
}

func TestHandlerExposition(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "GET /api/cabinets", 200)
	m.ObserveAggregation("asset", 10*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`rehab_http_requests_total{code="200",method="GET",route="GET /api/cabinets"} 1`,
		`rehab_aggregations_total{kind="asset",outcome="ok"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("exposition missing %q", want)
		}
	}
}
