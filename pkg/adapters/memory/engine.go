package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/sticky/internal/logging"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/locals"
	"github.com/aretw0/sticky/pkg/ports"
)

// Op names what the engine did with a path element.
type Op string

const (
	OpExit    Op = "exit"
	OpResolve Op = "resolve"
	OpEnter   Op = "enter"
)

// Step is one entry of the engine trace.
type Step struct {
	Op    Op
	State string
	Kind  domain.Kind
}

func (s Step) String() string {
	name := s.State
	if name == domain.RootName {
		name = "(root)"
	}
	return fmt.Sprintf("%s %s [%s]", s.Op, name, s.Kind)
}

// Guard may veto a transition before any hook runs.
type Guard func(ctx context.Context, req ports.Request) error

// Engine is an in-process hierarchical transition engine.
//
// It diffs the two paths by element identity, exits the from-tail leaf to
// root, then resolves views and enters the to-tail root to leaf. Between
// elements it checks the context, so a superseded transition stops early.
type Engine struct {
	logger *slog.Logger
	guard  Guard

	mu    sync.Mutex
	steps []Step
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithGuard installs a guard consulted before every transition.
func WithGuard(g Guard) EngineOption {
	return func(e *Engine) {
		e.guard = g
	}
}

// NewEngine creates an in-memory engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transition implements ports.TransitionEngine.
func (e *Engine) Transition(ctx context.Context, req ports.Request, hook ports.PlanHook) (reached *domain.State, err error) {
	from := req.From.CanonicalPath()
	to := req.To.CanonicalPath()

	if hook != nil {
		sub, herr := hook(ctx, from, to)
		if herr != nil {
			return nil, herr
		}
		from, to = sub.From, sub.To
		if sub.Settle != nil {
			defer func() { sub.Settle(err) }()
		}
	}

	if e.guard != nil {
		if gerr := e.guard(ctx, req); gerr != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrTransitionPrevented, gerr)
		}
	}

	pivot := domain.Pivot(from, to)

	// 1. Exit leaf to root
	for i := len(from) - 1; i > pivot; i-- {
		el := from[i]
		if err := e.check(ctx); err != nil {
			return nil, err
		}
		e.trace(OpExit, el)
		if fn := el.Hooks().OnExit; fn != nil {
			if err := fn(ctx, req.FromParams.Clone()); err != nil {
				return nil, fmt.Errorf("exit '%s': %w", el.State.String(), err)
			}
		}
		if !el.IsSurrogate() {
			el.State.DetachLocals()
		}
	}

	// 2. Resolve and enter root to leaf
	for i := pivot + 1; i < len(to); i++ {
		el := to[i]
		if err := e.check(ctx); err != nil {
			return nil, err
		}
		// A layer attached here is taken back if the state never finishes entering.
		detach := func() {}
		if el.Views != nil {
			e.trace(OpResolve, el)
			layer, err := resolve(ctx, el, req.ToParams)
			if err != nil {
				return nil, err
			}
			prev := el.State.AttachLocals(layer)
			detach = func() { el.State.AttachLocals(prev) }
		}
		e.trace(OpEnter, el)
		if fn := el.Hooks().OnEnter; fn != nil {
			if err := fn(ctx, req.ToParams.Clone()); err != nil {
				detach()
				return nil, fmt.Errorf("enter '%s': %w", el.State.String(), err)
			}
		}
		if err := e.check(ctx); err != nil {
			detach()
			return nil, err
		}
	}

	e.logger.DebugContext(ctx, "engine transition done", "from", req.From.String(), "to", req.To.String(), "pivot", pivot)
	return req.To, nil
}

// Steps returns the trace of every element handled so far.
func (e *Engine) Steps() []Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Step, len(e.steps))
	copy(out, e.steps)
	return out
}

// ResetSteps clears the trace.
func (e *Engine) ResetSteps() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.steps = nil
}

func (e *Engine) trace(op Op, el *domain.Element) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.steps = append(e.steps, Step{Op: op, State: el.State.Name, Kind: el.Kind})
}

// check stops a walk whose context is done. Supersession surfaces as is;
// any other cancellation is an abort.
func (e *Engine) check(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(ctx)
	if errors.Is(cause, domain.ErrTransitionSuperseded) {
		return cause
	}
	return fmt.Errorf("%w: %w", domain.ErrTransitionAborted, cause)
}

func resolve(ctx context.Context, el *domain.Element, params domain.Params) (*locals.Layer, error) {
	names := make([]string, 0, len(el.Views))
	for name := range el.Views {
		names = append(names, name)
	}
	sort.Strings(names)

	layer := locals.NewLayer(el.State.Name)
	for _, name := range names {
		factory := el.Views[name]
		if factory == nil {
			continue
		}
		v, err := factory(ctx, params.Clone())
		if err != nil {
			return nil, fmt.Errorf("failed to resolve view '%s' of '%s': %w", name, el.State.String(), err)
		}
		layer.Set(locals.Key(name, el.State.Name), v)
	}
	return layer, nil
}
