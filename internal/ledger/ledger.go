// Package ledger records the temporary mutations made while steering an
// external transition engine and undoes them exactly once.
package ledger

import (
	"log/slog"
	"sync"

	"github.com/aretw0/sticky/internal/logging"
	"github.com/aretw0/sticky/pkg/domain"
)

// UndoFunc reverts one mutation.
type UndoFunc func()

type action struct {
	name string
	undo UndoFunc
}

// Ledger is an ordered list of undo actions with a single-use rollback latch.
// Safe for concurrent use.
type Ledger struct {
	mu         sync.Mutex
	actions    []action
	from       domain.Path
	to         domain.Path
	rolledBack bool
	logger     *slog.Logger
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithLogger configures a logger for rollback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SaveOriginals keeps the canonical from/to paths the substitution replaced.
func (l *Ledger) SaveOriginals(from, to domain.Path) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.from = append(domain.Path(nil), from...)
	l.to = append(domain.Path(nil), to...)
}

// Originals returns the saved from/to paths.
func (l *Ledger) Originals() (from, to domain.Path) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.from, l.to
}

// Record appends an undo action. If the ledger was already rolled back the
// action runs immediately so nothing outlives the transition.
func (l *Ledger) Record(name string, undo UndoFunc) {
	l.mu.Lock()
	if l.rolledBack {
		l.mu.Unlock()
		l.logger.Debug("ledger already rolled back, undoing immediately", "action", name)
		undo()
		return
	}
	l.actions = append(l.actions, action{name: name, undo: undo})
	l.mu.Unlock()
}

// Rollback runs every recorded undo action in reverse order. Only the first
// call has an effect; it reports whether this call performed the rollback.
func (l *Ledger) Rollback() bool {
	l.mu.Lock()
	if l.rolledBack {
		l.mu.Unlock()
		return false
	}
	l.rolledBack = true
	actions := l.actions
	l.actions = nil
	l.mu.Unlock()

	// Unwind Loop: newest mutation first.
	for i := len(actions) - 1; i >= 0; i-- {
		l.logger.Debug("undo", "action", actions[i].name)
		actions[i].undo()
	}
	return true
}

// RolledBack reports whether Rollback has run.
func (l *Ledger) RolledBack() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rolledBack
}

// Len returns the number of pending undo actions.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.actions)
}
