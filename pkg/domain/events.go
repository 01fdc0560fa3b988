package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter      EventType = "state_enter"
	EventStateExit       EventType = "state_exit"
	EventStateInactivate EventType = "state_inactivate"
	EventStateReactivate EventType = "state_reactivate"

	EventTransitionStart      EventType = "transition_start"
	EventTransitionSuccess    EventType = "transition_success"
	EventTransitionError      EventType = "transition_error"
	EventTransitionSuperseded EventType = "transition_superseded"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	TransitionID string    `json:"transition_id,omitempty"`
}

// StateEvent reports a lifecycle change of a single state.
type StateEvent struct {
	EventBase
	State  string `json:"state"`
	Params Params `json:"params,omitempty"`
}

// TransitionEvent reports the progress of a transition.
type TransitionEvent struct {
	EventBase
	From string `json:"from"`
	To   string `json:"to"`

	// Classifications maps state names to the planner's verdict.
	// Only populated once the transition has been planned.
	Classifications map[string]Classification `json:"classifications,omitempty"`

	// Inactive lists the states inactive after the transition (planned view).
	Inactive []string `json:"inactive,omitempty"`

	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// ObserverHooks defines callbacks for engine observability.
type ObserverHooks struct {
	OnStateEvent      func(context.Context, *StateEvent)
	OnTransitionStart func(context.Context, *TransitionEvent)
	OnTransitionEnd   func(context.Context, *TransitionEvent)
}

// Merge returns hooks calling h first and then other.
func (h ObserverHooks) Merge(other ObserverHooks) ObserverHooks {
	return ObserverHooks{
		OnStateEvent:      chainState(h.OnStateEvent, other.OnStateEvent),
		OnTransitionStart: chainTransition(h.OnTransitionStart, other.OnTransitionStart),
		OnTransitionEnd:   chainTransition(h.OnTransitionEnd, other.OnTransitionEnd),
	}
}

// EmitState calls OnStateEvent if set.
func (h ObserverHooks) EmitState(ctx context.Context, e *StateEvent) {
	if h.OnStateEvent != nil {
		h.OnStateEvent(ctx, e)
	}
}

func chainState(a, b func(context.Context, *StateEvent)) func(context.Context, *StateEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *StateEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainTransition(a, b func(context.Context, *TransitionEvent)) func(context.Context, *TransitionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *TransitionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
