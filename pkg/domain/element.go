package domain

import (
	"sync/atomic"

	"github.com/aretw0/sticky/pkg/locals"
)

// Kind tags a path element with the role it plays in a transition.
type Kind string

const (
	// KindState marks the canonical element of a state.
	KindState Kind = "state"

	KindReactivatePhase1 Kind = "reactivate-phase1"
	KindReactivatePhase2 Kind = "reactivate-phase2"
	KindInactivate       Kind = "inactivate"
	KindEnter            Kind = "enter"
	KindExit             Kind = "exit"
	KindUpdateParams     Kind = "update-params"
)

// Element is a path entry handed to the external transition engine.
//
// The engine fires the element's hooks, resolves its Views when it enters the
// element and treats Locals as already resolved data when it keeps it.
type Element struct {
	State *State
	Kind  Kind

	// Views are the resolve inputs. A nil map makes resolution a no-op.
	Views map[string]ViewFactory

	// Locals is the layer the engine sees for a kept element.
	Locals *locals.Layer

	hooks atomic.Pointer[Lifecycle]
}

// NewElement creates an element for s carrying the given hooks.
func NewElement(s *State, kind Kind, hooks Lifecycle) *Element {
	el := &Element{State: s, Kind: kind}
	el.hooks.Store(&hooks)
	return el
}

// Hooks returns the hooks currently installed on the element.
func (e *Element) Hooks() Lifecycle {
	if h := e.hooks.Load(); h != nil {
		return *h
	}
	return Lifecycle{}
}

// SetHooks swaps the element's hooks and returns the previous set.
func (e *Element) SetHooks(l Lifecycle) Lifecycle {
	prev := e.hooks.Swap(&l)
	if prev == nil {
		return Lifecycle{}
	}
	return *prev
}

// Name returns the name of the underlying state.
func (e *Element) Name() string {
	return e.State.Name
}

// IsSurrogate reports whether the element stands in for its state.
func (e *Element) IsSurrogate() bool {
	return e.Kind != KindState
}

// Path is a root-first sequence of elements.
type Path []*Element

// States returns the underlying states of the path.
func (p Path) States() []*State {
	out := make([]*State, len(p))
	for i, el := range p {
		out[i] = el.State
	}
	return out
}

// Names returns the state names of the path.
func (p Path) Names() []string {
	out := make([]string, len(p))
	for i, el := range p {
		out[i] = el.State.Name
	}
	return out
}

// Leaf returns the last element, or nil for an empty path.
func (p Path) Leaf() *Element {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Pivot returns the last index at which both paths hold the same element.
// It returns -1 when the paths share nothing.
func Pivot(from, to Path) int {
	pivot := -1
	for i := 0; i < len(from) && i < len(to); i++ {
		if from[i] != to[i] {
			break
		}
		pivot = i
	}
	return pivot
}
