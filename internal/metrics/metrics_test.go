package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sweeney/breath-pacer/internal/metrics"
)

func TestRecordTransitionMovesGauge(t *testing.T) {
	metrics.RecordTransition("", "Idle")
	metrics.RecordTransition("Idle", "DeepBreathing")

	if got := testutil.ToFloat64(metrics.CurrentState.WithLabelValues("Idle")); got != 0 {
		t.Errorf("Idle gauge = %v, want 0", got)
	}
	if got := testutil.ToFloat64(metrics.CurrentState.WithLabelValues("DeepBreathing")); got != 1 {
		t.Errorf("DeepBreathing gauge = %v, want 1", got)
	}
}

func TestRecordSessionUnknownPattern(t *testing.T) {
	before := testutil.ToFloat64(metrics.SessionsTotal.WithLabelValues("unknown", "aborted"))
	metrics.RecordSession("", "aborted")
	after := testutil.ToFloat64(metrics.SessionsTotal.WithLabelValues("unknown", "aborted"))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}

func TestExposure(t *testing.T) {
	metrics.RecordPress("Short")

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `breath_pacer_button_presses_total{kind="Short"}`) {
		t.Error("press counter not exposed")
	}
}
