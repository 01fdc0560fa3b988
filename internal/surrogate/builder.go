// Package surrogate builds the stand-in path elements that steer an external
// transition engine into entering, exiting, inactivating or reactivating
// exactly the states the planner selected.
package surrogate

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/sticky/internal/ledger"
	"github.com/aretw0/sticky/internal/logging"
	"github.com/aretw0/sticky/internal/planner"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/locals"
)

// Effects is the registry surface the surrogate hooks act upon.
type Effects interface {
	Entered(s *domain.State, params domain.Params)
	Inactivate(s *domain.State, params domain.Params)
	Reactivate(s *domain.State)
	Exit(s *domain.State)
	Discard(s *domain.State) []*domain.State
	Retained(s *domain.State) (*locals.Layer, bool)
	InactiveParams(s *domain.State) (domain.Params, bool)
}

// Builder creates surrogates for a single transition.
type Builder struct {
	effects  Effects
	ledger   *ledger.Ledger
	record   *domain.TransitionRecord
	observer domain.ObserverHooks
	logger   *slog.Logger
}

// Option configures the Builder.
type Option func(*Builder)

// WithObserver sets the hooks notified of state lifecycle events.
func WithObserver(hooks domain.ObserverHooks) Option {
	return func(b *Builder) {
		b.observer = hooks
	}
}

// WithLogger sets the builder's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New creates a builder whose undo actions are recorded on l.
func New(effects Effects, l *ledger.Ledger, record *domain.TransitionRecord, opts ...Option) *Builder {
	b := &Builder{
		effects: effects,
		ledger:  l,
		record:  record,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build turns a plan into substitute from/to paths.
//
// Layout: kept elements are shared; reactivation phase-1 elements follow on
// both paths so the engine keeps them; the to-path continues with phase-2 and
// entering surrogates; the from-path continues with exiting surrogates and
// finally the orphans, appended so that the engine's leaf-to-root exit walk
// reaches the deepest orphan first.
func (b *Builder) Build(plan *planner.Plan) (from, to domain.Path) {
	for i := 0; i <= plan.Pivot; i++ {
		from = append(from, plan.From[i].Self())
		to = append(to, plan.To[i].Self())
	}

	var phase2 []*domain.Element
	for i := plan.Pivot + 1; i < len(plan.To); i++ {
		if plan.Enter[i] != domain.ClassReactivate {
			continue
		}
		p1, p2 := b.Reactivate(plan.To[i])
		from = append(from, p1)
		to = append(to, p1)
		phase2 = append(phase2, p2)
	}

	next := 0
	for i := plan.Pivot + 1; i < len(plan.To); i++ {
		s := plan.To[i]
		switch plan.Enter[i] {
		case domain.ClassReactivate:
			to = append(to, phase2[next])
			next++
		case domain.ClassUpdateParams:
			to = append(to, b.UpdateParams(s))
		default:
			to = append(to, b.Enter(s))
		}
	}

	for i := plan.Pivot + 1; i < len(plan.From); i++ {
		s := plan.From[i]
		if plan.Exit[i] == domain.ClassInactivate {
			from = append(from, b.Inactivate(s))
		} else {
			from = append(from, b.Exit(s))
		}
	}

	for i := len(plan.Orphans) - 1; i >= 0; i-- {
		from = append(from, b.Exit(plan.Orphans[i]))
	}

	return from, to
}

// Enter builds the surrogate of a freshly entered state.
func (b *Builder) Enter(s *domain.State) *domain.Element {
	orig := s.Lifecycle
	hooks := orig
	hooks.OnEnter = func(ctx context.Context, params domain.Params) error {
		if err := call(ctx, orig.OnEnter, params); err != nil {
			return err
		}
		if !b.live() {
			return nil
		}
		b.effects.Entered(s, params)
		b.record.RecordEntered(s)
		b.emit(ctx, domain.EventStateEnter, s, params)
		return nil
	}

	el := domain.NewElement(s, domain.KindEnter, hooks)
	el.Views = s.Views
	b.restoreOnRollback(orig, el)
	return el
}

// UpdateParams builds the surrogate of an inactive state re-entered with
// different parameters. Its retained data and inactive descendants are dropped.
func (b *Builder) UpdateParams(s *domain.State) *domain.Element {
	orig := s.Lifecycle
	hooks := orig
	hooks.OnEnter = func(ctx context.Context, params domain.Params) error {
		if b.live() {
			if dropped := b.effects.Discard(s); len(dropped) > 0 {
				b.logger.DebugContext(ctx, "discarded stale inactive descendants", "state", s.String(), "count", len(dropped))
			}
		}
		if err := call(ctx, orig.OnEnter, params); err != nil {
			return err
		}
		if !b.live() {
			return nil
		}
		b.effects.Entered(s, params)
		b.record.RecordEntered(s)
		b.emit(ctx, domain.EventStateEnter, s, params)
		return nil
	}

	el := domain.NewElement(s, domain.KindUpdateParams, hooks)
	el.Views = s.Views
	b.restoreOnRollback(orig, el)
	return el
}

// Reactivate builds the two surrogates of a reactivated state.
//
// Phase 1 sits on both paths carrying the retained layer, so the engine keeps
// it without resolving. Phase 2 sits on the to-path only with its views
// blanked; its enter hook reattaches the retained layer.
func (b *Builder) Reactivate(s *domain.State) (phase1, phase2 *domain.Element) {
	orig := s.Lifecycle
	retained, _ := b.effects.Retained(s)

	phase1 = domain.NewElement(s, domain.KindReactivatePhase1, domain.Lifecycle{})
	phase1.Locals = retained

	hooks := orig
	hooks.OnEnter = func(ctx context.Context, params domain.Params) error {
		if !b.live() {
			return call(ctx, orig.OnReactivate, params)
		}
		layer, ok := b.effects.Retained(s)
		if ok {
			s.AttachLocals(layer)
		}
		if err := call(ctx, orig.OnReactivate, params); err != nil {
			if ok {
				s.DetachLocals()
			}
			return err
		}
		b.effects.Reactivate(s)
		b.record.RecordReactivated(s)
		b.emit(ctx, domain.EventStateReactivate, s, params)
		return nil
	}
	phase2 = domain.NewElement(s, domain.KindReactivatePhase2, hooks)

	b.restoreOnRollback(orig, phase1, phase2)
	return phase1, phase2
}

// Inactivate builds the surrogate of a sticky state being left.
func (b *Builder) Inactivate(s *domain.State) *domain.Element {
	orig := s.Lifecycle
	hooks := orig
	hooks.OnExit = func(ctx context.Context, params domain.Params) error {
		if err := call(ctx, orig.OnInactivate, params); err != nil {
			return err
		}
		if !b.live() {
			return nil
		}
		b.effects.Inactivate(s, params)
		b.record.RecordInactivated(s)
		b.emit(ctx, domain.EventStateInactivate, s, params)
		return nil
	}

	el := domain.NewElement(s, domain.KindInactivate, hooks)
	el.Locals = s.Locals()
	b.restoreOnRollback(orig, el)
	return el
}

// Exit builds the surrogate of a state leaving for good. Inactive states
// (orphans) see the parameters they were retained with.
func (b *Builder) Exit(s *domain.State) *domain.Element {
	orig := s.Lifecycle
	hooks := orig
	hooks.OnExit = func(ctx context.Context, params domain.Params) error {
		if retainedParams, inactive := b.effects.InactiveParams(s); inactive {
			params = retainedParams
		}
		if err := call(ctx, orig.OnExit, params); err != nil {
			return err
		}
		if !b.live() {
			return nil
		}
		b.effects.Exit(s)
		b.record.RecordExited(s)
		b.emit(ctx, domain.EventStateExit, s, params)
		return nil
	}

	el := domain.NewElement(s, domain.KindExit, hooks)
	b.restoreOnRollback(orig, el)
	return el
}

// restoreOnRollback registers the single undo action of a builder call: the
// elements get the state's original hooks back.
func (b *Builder) restoreOnRollback(orig domain.Lifecycle, els ...*domain.Element) {
	name := "hooks:" + string(els[len(els)-1].Kind) + ":" + els[0].State.String()
	b.ledger.Record(name, func() {
		for _, el := range els {
			el.SetHooks(orig)
		}
	})
}

func (b *Builder) live() bool {
	return !b.ledger.RolledBack()
}

func (b *Builder) emit(ctx context.Context, typ domain.EventType, s *domain.State, params domain.Params) {
	b.observer.EmitState(ctx, &domain.StateEvent{
		EventBase: domain.EventBase{
			Timestamp:    time.Now(),
			Type:         typ,
			TransitionID: b.record.ID,
		},
		State:  s.Name,
		Params: params.Clone(),
	})
}

func call(ctx context.Context, fn domain.HookFunc, params domain.Params) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, params)
}
