package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_TransitionOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnTransitionEnd(ctx, &domain.TransitionEvent{
		From:     "A",
		To:       "B",
		Duration: 10 * time.Millisecond,
		Classifications: map[string]domain.Classification{
			"A": domain.ClassInactivate,
			"B": domain.ClassEnter,
		},
		Inactive: []string{"A"},
	})
	hooks.OnTransitionEnd(ctx, &domain.TransitionEvent{Err: domain.ErrTransitionSuperseded})
	hooks.OnTransitionEnd(ctx, &domain.TransitionEvent{Err: errors.New("boom")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues(observability.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues(observability.OutcomeSuperseded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues(observability.OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Classifications.WithLabelValues(string(domain.ClassInactivate))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Inactive))

	count, err := testutil.GatherAndCount(reg, "sticky_transition_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMetrics_FailedTransitionKeepsGauge(t *testing.T) {
	m := observability.NewMetrics(nil)
	hooks := m.Hooks()

	hooks.OnTransitionEnd(context.Background(), &domain.TransitionEvent{Inactive: []string{"A", "B"}})
	hooks.OnTransitionEnd(context.Background(), &domain.TransitionEvent{Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Inactive))
}

func TestMetrics_StateEvents(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()

	hooks.EmitState(context.Background(), &domain.StateEvent{
		EventBase: domain.EventBase{Type: domain.EventStateInactivate},
		State:     "app.inbox",
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateEvents.WithLabelValues(string(domain.EventStateInactivate), "app.inbox")))
}

func TestOutcome_WrappedSupersession(t *testing.T) {
	err := errors.Join(errors.New("context"), domain.ErrTransitionSuperseded)
	assert.Equal(t, observability.OutcomeSuperseded, observability.Outcome(err))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LogHooks(logger)
	ctx := context.Background()

	hooks.OnTransitionStart(ctx, &domain.TransitionEvent{From: "A", To: "B"})
	hooks.OnTransitionEnd(ctx, &domain.TransitionEvent{From: "A", To: "B", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "transition_start")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "outcome=error")
}
