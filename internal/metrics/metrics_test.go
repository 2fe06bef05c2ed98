package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsExposed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Evaluations.WithLabelValues("overdue").Inc()
	m.Evaluations.WithLabelValues("overdue").Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `handybob_followup_evaluations_total{status="overdue"} 2`))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveEvaluation("overdue")
		m.ObserveOutcomeRecord("saved")
		m.ObserveQueued("sms")
		m.ObserveDelivery("sms", "sent")
	})
}
