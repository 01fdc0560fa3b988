package domain

import (
	"sync"
	"time"
)

// Classification is the planner's verdict for one state of a transition.
type Classification string

const (
	ClassKeep         Classification = "keep"
	ClassEnter        Classification = "enter"
	ClassExit         Classification = "exit"
	ClassInactivate   Classification = "inactivate"
	ClassReactivate   Classification = "reactivate"
	ClassUpdateParams Classification = "updateStateParams"
)

// Options tune a single transition request.
type Options struct {
	// Reload forces re-resolution of the target path below the root.
	Reload bool

	// ReloadFrom forces re-resolution of the subtree rooted at the named state.
	// The state must lie on the target path. ReloadAll behaves like Reload.
	ReloadFrom string

	// ReloadState is ReloadFrom given as a state reference.
	ReloadState *State

	// Relative resolves the target name relative to this state name.
	Relative string

	// Inherit copies parameters missing from the request from the current parameters.
	Inherit bool
}

// TransitionRecord is the bookkeeping for one accepted transition request.
type TransitionRecord struct {
	ID         string
	From       *State
	FromParams Params
	To         *State
	ToParams   Params
	Options    Options

	// ReloadBoundary is the state whose subtree is forced to re-resolve.
	ReloadBoundary *State

	Accepted time.Time

	mu          sync.Mutex
	entered     []*State
	exited      []*State
	inactivated []*State
	reactivated []*State
}

// RecordEntered appends s to the entered accumulator.
func (r *TransitionRecord) RecordEntered(s *State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entered = append(r.entered, s)
}

// RecordExited appends s to the exited accumulator.
func (r *TransitionRecord) RecordExited(s *State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exited = append(r.exited, s)
}

// RecordInactivated appends s to the inactivated accumulator.
func (r *TransitionRecord) RecordInactivated(s *State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inactivated = append(r.inactivated, s)
}

// RecordReactivated appends s to the reactivated accumulator.
func (r *TransitionRecord) RecordReactivated(s *State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reactivated = append(r.reactivated, s)
}

// Entered returns the states entered so far, in hook order.
func (r *TransitionRecord) Entered() []*State { return r.snapshot(&r.entered) }

// Exited returns the states exited so far, in hook order.
func (r *TransitionRecord) Exited() []*State { return r.snapshot(&r.exited) }

// Inactivated returns the states inactivated so far, in hook order.
func (r *TransitionRecord) Inactivated() []*State { return r.snapshot(&r.inactivated) }

// Reactivated returns the states reactivated so far, in hook order.
func (r *TransitionRecord) Reactivated() []*State { return r.snapshot(&r.reactivated) }

func (r *TransitionRecord) snapshot(list *[]*State) []*State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*State, len(*list))
	copy(out, *list)
	return out
}
