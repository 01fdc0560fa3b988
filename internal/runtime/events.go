package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/sticky/pkg/domain"
)

func emitStart(ctx context.Context, hooks domain.ObserverHooks, rec *domain.TransitionRecord) {
	if hooks.OnTransitionStart == nil {
		return
	}
	hooks.OnTransitionStart(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{
			Timestamp:    time.Now(),
			Type:         domain.EventTransitionStart,
			TransitionID: rec.ID,
		},
		From: rec.From.Name,
		To:   rec.To.Name,
	})
}

func emitEnd(ctx context.Context, hooks domain.ObserverHooks, t *transition, d time.Duration, err error) {
	if hooks.OnTransitionEnd == nil {
		return
	}

	typ := domain.EventTransitionSuccess
	switch {
	case errors.Is(err, domain.ErrTransitionSuperseded):
		typ = domain.EventTransitionSuperseded
	case err != nil:
		typ = domain.EventTransitionError
	}

	e := &domain.TransitionEvent{
		EventBase: domain.EventBase{
			Timestamp:    time.Now(),
			Type:         typ,
			TransitionID: t.record.ID,
		},
		From:     t.record.From.Name,
		To:       t.record.To.Name,
		Duration: d,
		Err:      err,
	}
	if t.plan != nil {
		e.Classifications = t.plan.Classifications()
		e.Inactive = t.plan.InactiveNames()
	}
	hooks.OnTransitionEnd(ctx, e)
}
