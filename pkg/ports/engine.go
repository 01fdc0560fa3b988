package ports

import (
	"context"

	"github.com/aretw0/sticky/pkg/domain"
)

// Request describes a transition handed to a TransitionEngine.
type Request struct {
	From       *domain.State
	FromParams domain.Params
	To         *domain.State
	ToParams   domain.Params
	Options    domain.Options
}

// Substitution is the result of a PlanHook.
type Substitution struct {
	// From and To replace the canonical paths the engine computed.
	From domain.Path
	To   domain.Path

	// Settle must be called exactly once when the engine is done with the
	// paths, whatever the outcome. It may be nil.
	Settle func(err error)
}

// PlanHook is invoked by the engine with the canonical paths of a transition
// before it walks them.
type PlanHook func(ctx context.Context, from, to domain.Path) (Substitution, error)

// TransitionEngine is the external hierarchical transition engine.
//
// Implementations exit from-path elements beyond their own pivot leaf to root,
// resolve the views of entered elements that carry them, then enter to-path
// elements root to leaf. They return the reached state or the first error.
type TransitionEngine interface {
	Transition(ctx context.Context, req Request, hook PlanHook) (*domain.State, error)
}
