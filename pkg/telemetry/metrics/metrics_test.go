package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestEngineMetricsCounters tests counter increments through the collector.
func TestEngineMetricsCounters(t *testing.T) {
	c := NewCollector(&Config{Enabled: true, Namespace: "triton", IncludeGoMetrics: false})

	c.Engine.RecordEvaluation("reaction")
	c.Engine.RecordEvaluation("reaction")
	c.Engine.RecordSkip(SkipPermission)
	c.Engine.RecordDispatch("create_task", "success", 10*time.Millisecond)
	c.Engine.RecordDispatch("create_task", "failure", 5*time.Millisecond)
	c.Engine.RecordEnrichment("ok", 20*time.Millisecond)

	if got := testutil.ToFloat64(c.Engine.evaluationsTotal.WithLabelValues("reaction")); got != 2 {
		t.Errorf("expected 2 evaluations, got %v", got)
	}
	if got := testutil.ToFloat64(c.Engine.skipsTotal.WithLabelValues(SkipPermission)); got != 1 {
		t.Errorf("expected 1 skip, got %v", got)
	}
	if got := testutil.ToFloat64(c.Engine.dispatchesTotal.WithLabelValues("create_task", "success")); got != 1 {
		t.Errorf("expected 1 success dispatch, got %v", got)
	}
	if got := testutil.ToFloat64(c.Engine.dispatchesTotal.WithLabelValues("create_task", "failure")); got != 1 {
		t.Errorf("expected 1 failure dispatch, got %v", got)
	}
}

// TestHandlerServesMetrics tests the exposition endpoint.
func TestHandlerServesMetrics(t *testing.T) {
	c := NewCollector(&Config{Enabled: true, Namespace: "triton", IncludeGoMetrics: false})
	c.Engine.RecordDispatch("create_bill", "success", time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "triton_dispatches_total") {
		t.Errorf("expected triton_dispatches_total in exposition, got:\n%s", body)
	}
}
