package observability

import (
	"context"
	"errors"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sticky"

// Outcome labels of a finished transition.
const (
	OutcomeSuccess    = "success"
	OutcomeSuperseded = "superseded"
	OutcomeError      = "error"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	Transitions     *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	Classifications *prometheus.CounterVec
	StateEvents     *prometheus.CounterVec
	Inactive        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of settled transitions by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transition_duration_seconds",
				Help:      "Duration of transitions from acceptance to settle",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Planner verdicts of committed transitions",
			},
			[]string{"classification"},
		),
		StateEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_events_total",
				Help:      "Lifecycle events per state",
			},
			[]string{"type", "state"},
		),
		Inactive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "inactive_states",
				Help:      "Number of inactive states after the last committed transition",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.Duration, m.Classifications, m.StateEvents, m.Inactive)
	}
	return m
}

// Hooks returns observer hooks recording into m.
func (m *Metrics) Hooks() domain.ObserverHooks {
	return domain.ObserverHooks{
		OnStateEvent: func(_ context.Context, e *domain.StateEvent) {
			m.StateEvents.WithLabelValues(string(e.Type), e.State).Inc()
		},
		OnTransitionEnd: func(_ context.Context, e *domain.TransitionEvent) {
			outcome := Outcome(e.Err)
			m.Transitions.WithLabelValues(outcome).Inc()
			m.Duration.WithLabelValues(outcome).Observe(e.Duration.Seconds())
			if outcome != OutcomeSuccess {
				return
			}
			for _, c := range e.Classifications {
				m.Classifications.WithLabelValues(string(c)).Inc()
			}
			m.Inactive.Set(float64(len(e.Inactive)))
		},
	}
}

// Outcome maps a settle error to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrTransitionSuperseded):
		return OutcomeSuperseded
	default:
		return OutcomeError
	}
}
