// Package runtime sequences transitions: it plans them, installs the
// substitute paths, delegates to the external engine and rolls every
// mutation back once the engine settles.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/sticky/internal/ledger"
	"github.com/aretw0/sticky/internal/logging"
	"github.com/aretw0/sticky/internal/planner"
	"github.com/aretw0/sticky/internal/registry"
	"github.com/aretw0/sticky/internal/surrogate"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/locals"
	"github.com/aretw0/sticky/pkg/ports"
	"github.com/aretw0/sticky/pkg/tree"
)

type transition struct {
	record *domain.TransitionRecord
	ledger *ledger.Ledger
	cancel context.CancelCauseFunc
	phase  Phase
	plan   *planner.Plan

	// engineParams are the target params without the reload nonce.
	engineParams domain.Params
	superseded   bool
}

// Coordinator is the per-tree transition context. Safe for concurrent use.
type Coordinator struct {
	mu       sync.Mutex
	tree     *tree.Tree
	engine   ports.TransitionEngine
	reg      *registry.Registry
	logger   *slog.Logger
	observer domain.ObserverHooks
	store    ports.SnapshotStore
	storeKey string
	newID    func() string

	current *domain.State
	params  domain.Params
	pending *transition
}

// NewCoordinator creates a coordinator for t driving engine.
// The root state starts active.
func NewCoordinator(t *tree.Tree, engine ports.TransitionEngine, opts ...Option) *Coordinator {
	c := &Coordinator{
		tree:    t,
		engine:  engine,
		reg:     registry.New(),
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
		current: t.Root(),
		params:  domain.Params{},
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, s := range t.States() {
		c.reg.StateRegistered(s)
	}
	t.Subscribe(c.reg.StateRegistered)
	c.reg.Entered(t.Root(), nil)
	return c
}

// Transition moves to the named state. It blocks until the engine settles.
//
// A newer call supersedes a pending one: the older call returns
// domain.ErrTransitionSuperseded once its engine returns.
func (c *Coordinator) Transition(ctx context.Context, to string, params domain.Params, opts domain.Options) (*domain.State, error) {
	// 1. Resolve before touching anything
	target, boundary, err := c.resolve(to, opts)
	if err != nil {
		c.logger.DebugContext(ctx, "transition target not resolved", "to", to, "err", err)
		return nil, err
	}

	// 2. Accept: supersede, record, inject reload param
	tctx, t := c.accept(ctx, target, boundary, params, opts)
	start := time.Now()
	rec := t.record

	emitStart(ctx, c.observer, rec)
	c.logger.DebugContext(ctx, "transition accepted",
		"id", rec.ID, "from", rec.From.String(), "to", rec.To.String())

	// 3. Delegate
	req := ports.Request{
		From:       rec.From,
		FromParams: rec.FromParams.Clone(),
		To:         rec.To,
		ToParams:   t.engineParams.Clone(),
		Options:    rec.Options,
	}
	reached, err := c.engine.Transition(tctx, req, c.planHook(t))
	t.cancel(nil)

	// 4. Settle
	reached, err = c.settle(ctx, t, reached, err)

	emitEnd(ctx, c.observer, t, time.Since(start), err)
	return reached, err
}

func (c *Coordinator) resolve(to string, opts domain.Options) (target, boundary *domain.State, err error) {
	var relative *domain.State
	if opts.Relative != "" {
		relative, err = c.tree.Lookup(opts.Relative, nil)
		if err != nil {
			return nil, nil, err
		}
	}
	target, err = c.tree.Lookup(to, relative)
	if err != nil {
		return nil, nil, err
	}

	path := target.CanonicalPath().States()
	switch {
	case opts.Reload || opts.ReloadFrom == domain.ReloadAll:
		if len(path) > 1 {
			boundary = path[1]
		}
	case opts.ReloadState != nil || opts.ReloadFrom != "":
		boundary = opts.ReloadState
		if boundary == nil {
			boundary, err = c.tree.Lookup(opts.ReloadFrom, relative)
			if err != nil {
				return nil, nil, err
			}
		}
		if boundary != target && !boundary.IsAncestorOf(target) {
			return nil, nil, fmt.Errorf("reload from '%s': %w", boundary.String(), domain.ErrReloadOutsidePath)
		}
		if boundary.IsRoot() && len(path) > 1 {
			boundary = path[1]
		} else if boundary.IsRoot() {
			boundary = nil
		}
	}
	return target, boundary, nil
}

func (c *Coordinator) accept(ctx context.Context, target, boundary *domain.State, params domain.Params, opts domain.Options) (context.Context, *transition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		c.supersede(ctx, c.pending)
	}

	toParams := params.Clone()
	if opts.Inherit {
		toParams = c.params.Clone()
		for k, v := range params {
			toParams[k] = v
		}
	}

	l := ledger.New(ledger.WithLogger(c.logger))
	rec := &domain.TransitionRecord{
		ID:             c.newID(),
		From:           c.current,
		FromParams:     c.params.Clone(),
		To:             target,
		Options:        opts,
		ReloadBoundary: boundary,
		Accepted:       time.Now(),
	}

	t := &transition{
		record:       rec,
		ledger:       l,
		phase:        PhasePlanned,
		engineParams: toParams.Clone(),
	}

	if boundary != nil {
		l.Record("reload-param:"+boundary.String(), boundary.AddParam(domain.ReloadParam))
		toParams[domain.ReloadParam] = c.newID()
	}
	rec.ToParams = toParams

	tctx, cancel := context.WithCancelCause(ctx)
	t.cancel = cancel
	c.pending = t
	return tctx, t
}

// supersede rolls back an outstanding transition. Caller holds c.mu.
func (c *Coordinator) supersede(ctx context.Context, t *transition) {
	t.superseded = true
	t.cancel(domain.ErrTransitionSuperseded)
	t.ledger.Rollback()
	t.phase = PhaseRolledBack
	c.pending = nil
	c.logger.DebugContext(ctx, "transition superseded", "id", t.record.ID, "to", t.record.To.String())
	c.resync(ctx)
}

// resync points current at the deepest state the registry still holds
// active. Hooks that ran before a failure or supersession have already moved
// states in or out of the registry, so the old current may be gone.
// Caller holds c.mu.
func (c *Coordinator) resync(ctx context.Context) {
	leaf := c.reg.DeepestActive()
	if leaf == nil {
		leaf = c.tree.Root()
	}
	if leaf == c.current {
		return
	}
	params, _ := c.reg.ActiveParams(leaf)
	c.logger.DebugContext(ctx, "current state resynchronised", "from", c.current.String(), "to", leaf.String())
	c.current = leaf
	c.params = params.Clone()
}

// planHook is handed to the engine; it runs the planner and installs the
// substitute paths.
func (c *Coordinator) planHook(t *transition) ports.PlanHook {
	return func(ctx context.Context, from, to domain.Path) (ports.Substitution, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if t.superseded || t.ledger.RolledBack() {
			return ports.Substitution{}, domain.ErrTransitionSuperseded
		}

		plan, err := planner.Compute(planner.Input{
			From:       from.States(),
			FromParams: t.record.FromParams,
			To:         to.States(),
			ToParams:   t.record.ToParams,
		}, c.reg)
		if err != nil {
			return ports.Substitution{}, fmt.Errorf("failed to plan transition %s: %w", t.record.ID, err)
		}
		t.plan = plan

		b := surrogate.New(c.reg, t.ledger, t.record,
			surrogate.WithObserver(c.observer),
			surrogate.WithLogger(c.logger),
		)
		subFrom, subTo := b.Build(plan)
		c.reg.Refresh(plan.Inactives)

		t.ledger.SaveOriginals(from, to)
		if leaf := from.Leaf(); leaf != nil {
			t.ledger.Record("path:"+leaf.State.String(), leaf.State.InstallPath(subFrom))
		}
		if leaf := to.Leaf(); leaf != nil {
			t.ledger.Record("path:"+leaf.State.String(), leaf.State.InstallPath(subTo))
		}
		t.phase = PhaseSubstituted

		c.logger.DebugContext(ctx, "transition planned",
			"id", t.record.ID,
			"pivot", plan.Pivot,
			"classifications", plan.Classifications(),
			"inactive", plan.InactiveNames(),
		)

		t.phase = PhaseDelegated
		return ports.Substitution{
			From: subFrom,
			To:   subTo,
			Settle: func(error) {
				t.ledger.Rollback()
			},
		}, nil
	}
}

func (c *Coordinator) settle(ctx context.Context, t *transition, reached *domain.State, err error) (*domain.State, error) {
	var snap *domain.Snapshot

	c.mu.Lock()
	t.ledger.Rollback()
	if c.pending == t {
		c.pending = nil
		c.reg.Refresh(c.reg.Inactives())
		c.checkRestored(ctx, t)
	}

	switch {
	case t.superseded:
		t.phase = PhaseRolledBack
		if !errors.Is(err, domain.ErrTransitionSuperseded) {
			err = domain.ErrTransitionSuperseded
		}
		reached = nil
	case err != nil:
		t.phase = PhaseRolledBack
		reached = nil
		c.resync(ctx)
	default:
		if reached == nil {
			reached = t.record.To
		}
		c.current = reached
		c.params = t.engineParams.Clone()
		t.phase = PhaseCommitted
		snap = c.snapshotLocked()
	}
	c.mu.Unlock()

	switch {
	case err == nil:
		c.logger.DebugContext(ctx, "transition committed", "id", t.record.ID, "state", reached.String())
	case domain.IsSentinel(err):
		c.logger.DebugContext(ctx, "transition rolled back", "id", t.record.ID, "err", err)
	default:
		c.logger.ErrorContext(ctx, "transition failed", "id", t.record.ID, "to", t.record.To.String(), "err", err)
	}

	if snap != nil {
		c.persist(ctx, snap)
	}
	return reached, err
}

// checkRestored verifies that the leaves of the original paths are back on
// their canonical paths after rollback, and clears any leftover substitute.
// Caller holds c.mu and t is the latest transition.
func (c *Coordinator) checkRestored(ctx context.Context, t *transition) {
	from, to := t.ledger.Originals()
	for _, p := range []domain.Path{from, to} {
		leaf := p.Leaf()
		if leaf == nil || !leaf.State.HasSubstitutePath() {
			continue
		}
		c.logger.ErrorContext(ctx, "substitute path left installed after rollback",
			"id", t.record.ID, "state", leaf.State.String())
		leaf.State.InstallPath(nil)
	}
}

// Reset permanently exits inactive states. name "*" resets every inactive
// state; otherwise the named state and its inactive descendants are reset.
// OnExit hooks run deepest first with the retained params. Hooks must not call
// back into the coordinator.
func (c *Coordinator) Reset(ctx context.Context, name string) error {
	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return domain.ErrTransitionPending
	}

	var targets []*domain.State
	if name == domain.ReloadAll {
		targets = c.reg.Inactives()
	} else {
		s, err := c.tree.Lookup(name, nil)
		if err != nil {
			c.mu.Unlock()
			return err
		}
		if !c.reg.IsInactive(s) {
			c.mu.Unlock()
			return fmt.Errorf("reset '%s': %w", s.String(), domain.ErrNotInactive)
		}
		targets = append([]*domain.State{s}, c.reg.InactiveDescendants(s)...)
	}
	planner.SortDeepestFirst(targets)

	for _, s := range targets {
		params, _ := c.reg.InactiveParams(s)
		if hook := s.Lifecycle.OnExit; hook != nil {
			if err := hook(ctx, params); err != nil {
				c.mu.Unlock()
				return fmt.Errorf("reset '%s': %w", s.String(), err)
			}
		}
		c.reg.Exit(s)
		c.observer.EmitState(ctx, &domain.StateEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStateExit},
			State:     s.Name,
			Params:    params,
		})
		c.logger.DebugContext(ctx, "inactive state reset", "state", s.String())
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snap)
	return nil
}

// Current returns the active leaf and the params it was reached with.
func (c *Coordinator) Current() (*domain.State, domain.Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.params.Clone()
}

// Pending reports the phase of the outstanding transition, or PhaseIdle.
func (c *Coordinator) Pending() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return PhaseIdle
	}
	return c.pending.phase
}

// Registry exposes the inactive-state registry.
func (c *Coordinator) Registry() *registry.Registry {
	return c.reg
}

// Tree returns the coordinated tree.
func (c *Coordinator) Tree() *tree.Tree {
	return c.tree
}

// Locals returns the layered view data visible from the named state.
func (c *Coordinator) Locals(name string) (locals.Chain, error) {
	s, err := c.tree.Lookup(name, nil)
	if err != nil {
		return locals.Chain{}, err
	}
	return c.reg.Chain(s), nil
}

// InactiveStates summarises the inactive pool.
func (c *Coordinator) InactiveStates() []domain.InactiveState {
	return c.reg.InactiveStates()
}

// Snapshot returns a serialisable summary of the registry.
func (c *Coordinator) Snapshot() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// LoadSnapshot reads the last persisted snapshot from the configured store.
func (c *Coordinator) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	if c.store == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	snap, err := c.store.Load(ctx, c.storeKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot '%s': %w", c.storeKey, err)
	}
	return snap, nil
}

func (c *Coordinator) snapshotLocked() *domain.Snapshot {
	return &domain.Snapshot{
		Current:   c.current.Name,
		Params:    c.params.Clone(),
		Active:    c.reg.ActiveNames(),
		Inactive:  c.reg.InactiveStates(),
		Timestamp: time.Now(),
	}
}

func (c *Coordinator) persist(ctx context.Context, snap *domain.Snapshot) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, c.storeKey, snap); err != nil {
		c.logger.WarnContext(ctx, "failed to persist snapshot", "key", c.storeKey, "err", err)
	}
}
