package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStateNotFound is returned when a state name does not resolve.
	ErrStateNotFound = errors.New("state not found")

	// ErrTransitionPrevented is returned when a guard vetoes a transition.
	ErrTransitionPrevented = errors.New("transition prevented")

	// ErrTransitionAborted is returned when a transition is cancelled by its caller.
	ErrTransitionAborted = errors.New("transition aborted")

	// ErrTransitionSuperseded is returned to a transition replaced by a newer request.
	ErrTransitionSuperseded = errors.New("transition superseded")

	// ErrNotInactive is returned when resetting a state that is not inactive.
	ErrNotInactive = errors.New("state is not inactive")

	// ErrTransitionPending is returned by operations that require an idle coordinator.
	ErrTransitionPending = errors.New("transition pending")

	// ErrReloadOutsidePath is returned when the reload state is not on the target path.
	ErrReloadOutsidePath = errors.New("reload state is not on the target path")

	// ErrSnapshotNotFound is returned when a snapshot key does not exist in the store.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// IsSentinel reports whether err is one of the expected transition outcomes
// (prevented, aborted or superseded) rather than an anomaly.
func IsSentinel(err error) bool {
	return errors.Is(err, ErrTransitionPrevented) ||
		errors.Is(err, ErrTransitionAborted) ||
		errors.Is(err, ErrTransitionSuperseded)
}

// NotFoundError describes a failed state lookup.
type NotFoundError struct {
	Name       string
	RelativeTo string
}

func (e *NotFoundError) Error() string {
	if e.RelativeTo != "" {
		return fmt.Sprintf("state '%s' not found relative to '%s'", e.Name, e.RelativeTo)
	}
	return fmt.Sprintf("state '%s' not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrStateNotFound
}

// RegistrationError describes an invalid state declaration.
type RegistrationError struct {
	Name   string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register state '%s': %s", e.Name, e.Reason)
}
