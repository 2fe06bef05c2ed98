package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors reported by the API and worker.
type Metrics struct {
	Evaluations    *prometheus.CounterVec
	OutcomeRecords *prometheus.CounterVec
	MessagesQueued *prometheus.CounterVec
	MessagesSent   *prometheus.CounterVec
}

// New registers the collectors with reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handybob",
			Subsystem: "followup",
			Name:      "evaluations_total",
			Help:      "Follow-up evaluations by resulting due status.",
		}, []string{"status"}),
		OutcomeRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handybob",
			Subsystem: "calls",
			Name:      "outcome_records_total",
			Help:      "Call outcome saves by result kind.",
		}, []string{"result"}),
		MessagesQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handybob",
			Subsystem: "followup",
			Name:      "messages_queued_total",
			Help:      "Follow-up messages queued for delivery.",
		}, []string{"channel"}),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handybob",
			Subsystem: "followup",
			Name:      "messages_delivered_total",
			Help:      "Follow-up delivery attempts by final status.",
		}, []string{"channel", "status"}),
	}
	reg.MustRegister(m.Evaluations, m.OutcomeRecords, m.MessagesQueued, m.MessagesSent)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// The helpers below accept a nil receiver so callers can run without metrics.

func (m *Metrics) ObserveEvaluation(status string) {
	if m != nil {
		m.Evaluations.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveOutcomeRecord(result string) {
	if m != nil {
		m.OutcomeRecords.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveQueued(channel string) {
	if m != nil {
		m.MessagesQueued.WithLabelValues(channel).Inc()
	}
}

func (m *Metrics) ObserveDelivery(channel, status string) {
	if m != nil {
		m.MessagesSent.WithLabelValues(channel, status).Inc()
	}
}
