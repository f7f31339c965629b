package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_ImplementsMetricsRecorder(t *testing.T) {
	var _ risk.MetricsRecorder = NewRecorder()
}

func TestRecorder_RunSucceeded(t *testing.T) {
	r := NewRecorder()
	r.RunSucceeded(150*time.Millisecond, risk.Estimates{
		Historical: risk.VaREstimate{Value: 7.08},
		Parametric: risk.VaREstimate{Value: 47.91},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("success")))
	assert.Equal(t, 7.08, testutil.ToFloat64(r.lastVaR.WithLabelValues("historical")))
	assert.Equal(t, 47.91, testutil.ToFloat64(r.lastVaR.WithLabelValues("parametric")))
}

func TestRecorder_RunFailed(t *testing.T) {
	r := NewRecorder()
	r.RunFailed(risk.KindDataUnavailable, time.Second)
	r.RunFailed(risk.KindDataUnavailable, time.Second)
	r.RunFailed(risk.KindInvalidInput, time.Second)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.runs.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.errors.WithLabelValues(risk.KindDataUnavailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues(risk.KindInvalidInput)))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.RunFailed(risk.KindNotReady, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `varcalc_errors_total{kind="not_ready"} 1`)
	assert.Contains(t, rec.Body.String(), "varcalc_run_duration_seconds_count 1")
}
