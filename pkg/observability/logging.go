package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/sticky/pkg/domain"
)

// LogHooks returns observer hooks writing structured records to logger.
// State events are logged at Debug; failed transitions at Warn.
func LogHooks(logger *slog.Logger) domain.ObserverHooks {
	return domain.ObserverHooks{
		OnStateEvent: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"state", e.State,
				"transition_id", e.TransitionID,
			)
		},
		OnTransitionStart: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition_start",
				"transition_id", e.TransitionID,
				"from", e.From,
				"to", e.To,
			)
		},
		OnTransitionEnd: func(ctx context.Context, e *domain.TransitionEvent) {
			attrs := []any{
				"transition_id", e.TransitionID,
				"from", e.From,
				"to", e.To,
				"duration", e.Duration,
				"outcome", Outcome(e.Err),
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "transition_end", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "transition_end", append(attrs, "inactive", e.Inactive)...)
		},
	}
}
