package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.PairScanned()
	m.Verdict("passed")
	m.Trade("buy", "ok")
	m.SetOpenPositions(3)
	m.Notification("sent")
	m.ObserveCycle(1.5)
	if m.Registry() != nil {
		t.Fatalf("expected nil registry")
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.Verdict("passed")
	m.Verdict("passed")
	m.Verdict("low_liquidity")
	m.Category("normal_trading")

	if got := testutil.ToFloat64(m.Verdicts.WithLabelValues("passed")); got != 2 {
		t.Fatalf("expected 2 passed verdicts, got %v", got)
	}
	if got := testutil.ToFloat64(m.Categories.WithLabelValues("normal_trading")); got != 1 {
		t.Fatalf("expected 1 category, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.PairScanned()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "riskscope_scanner_pairs_scanned_total 1") {
		t.Fatalf("metric missing from output:\n%s", body)
	}
}
