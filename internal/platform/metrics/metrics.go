// Package metrics exposes Prometheus counters for the scheduling flows.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// SchedulingMetrics counts booking, cancellation and precheck outcomes and
// the rule violations behind rejections. A nil *SchedulingMetrics is a no-op.
type SchedulingMetrics struct {
	operations *prometheus.CounterVec
	violations *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medbook",
			Subsystem: "scheduling",
			Name:      "operations_total",
			Help:      "Scheduling operations by outcome",
		}, []string{"operation", "outcome"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medbook",
			Subsystem: "scheduling",
			Name:      "violations_total",
			Help:      "Rule violations reported by the scheduling engine",
		}, []string{"operation", "kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operations, m.violations)
	return m
}

func (m *SchedulingMetrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveViolation(operation, kind string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(operation, kind).Inc()
}

// Handler serves the Prometheus exposition format for g.
func Handler(g prometheus.Gatherer) echo.HandlerFunc {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
