package sticky

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/sticky/internal/logging"
	"github.com/aretw0/sticky/internal/runtime"
	"github.com/aretw0/sticky/pkg/adapters/memory"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/aretw0/sticky/pkg/locals"
	"github.com/aretw0/sticky/pkg/ports"
	"github.com/aretw0/sticky/pkg/tree"
)

// Engine is the high-level entry point for the sticky library.
// It wraps the transition coordinator and provides a simplified API for consumers.
type Engine struct {
	coord      *runtime.Coordinator
	tree       *tree.Tree
	engine     ports.TransitionEngine
	hooks      domain.ObserverHooks
	logger     *slog.Logger
	store      ports.SnapshotStore
	storeKey   string
	loaderOpts []loader.Option
	newID      func() string
	Name       string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithObserver registers observability hooks. Multiple observers are merged.
func WithObserver(hooks domain.ObserverHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTransitionEngine replaces the bundled in-memory transition engine.
func WithTransitionEngine(te ports.TransitionEngine) Option {
	return func(e *Engine) {
		e.engine = te
	}
}

// WithSnapshotStore persists a registry snapshot under key after every
// committed transition and reset. An empty key falls back to the engine Name.
func WithSnapshotStore(store ports.SnapshotStore, key string) Option {
	return func(e *Engine) {
		e.store = store
		e.storeKey = key
	}
}

// WithLoaderOptions configures the YAML loader used by NewFromFile.
func WithLoaderOptions(opts ...loader.Option) Option {
	return func(e *Engine) {
		e.loaderOpts = append(e.loaderOpts, opts...)
	}
}

// WithIDGenerator overrides how transition IDs are generated.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// New initializes an Engine over an already built tree.
func New(t *tree.Tree, opts ...Option) *Engine {
	eng := &Engine{tree: t}
	for _, opt := range opts {
		opt(eng)
	}
	eng.init()
	return eng
}

// NewFromFile loads a YAML tree definition and initializes an Engine over it.
func NewFromFile(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	t, err := loader.New(eng.loaderOpts...).LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree '%s': %w", path, err)
	}
	eng.tree = t
	eng.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	eng.init()
	return eng, nil
}

func (e *Engine) init() {
	// Ensure logger is initialized (so we don't pass nil to the runtime)
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.Name != "" {
		e.logger = e.logger.With("tree", e.Name)
	}
	if e.engine == nil {
		e.engine = memory.NewEngine(memory.WithLogger(e.logger))
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(e.logger),
		runtime.WithObserver(e.hooks),
	}
	if e.store != nil {
		if e.storeKey == "" {
			e.storeKey = e.Name
		}
		runtimeOpts = append(runtimeOpts, runtime.WithSnapshotStore(e.store, e.storeKey))
	}
	if e.newID != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithIDGenerator(e.newID))
	}
	e.coord = runtime.NewCoordinator(e.tree, e.engine, runtimeOpts...)
}

// Transition moves to the named state and blocks until the transition settles.
func (e *Engine) Transition(ctx context.Context, to string, params domain.Params, opts domain.Options) (*domain.State, error) {
	return e.coord.Transition(ctx, to, params, opts)
}

// Go is Transition without options.
func (e *Engine) Go(ctx context.Context, to string, params domain.Params) (*domain.State, error) {
	return e.coord.Transition(ctx, to, params, domain.Options{})
}

// Current returns the active leaf and the params it was reached with.
func (e *Engine) Current() (*domain.State, domain.Params) {
	return e.coord.Current()
}

// InactiveStates lists the inactive states with their retained params.
func (e *Engine) InactiveStates() []domain.InactiveState {
	return e.coord.InactiveStates()
}

// Reset permanently exits an inactive state and its inactive descendants.
// The name "*" resets every inactive state.
func (e *Engine) Reset(ctx context.Context, name string) error {
	return e.coord.Reset(ctx, name)
}

// Locals returns the layered view data visible from the named state.
func (e *Engine) Locals(name string) (locals.Chain, error) {
	return e.coord.Locals(name)
}

// Snapshot returns a serialisable summary of the registry.
func (e *Engine) Snapshot() *domain.Snapshot {
	return e.coord.Snapshot()
}

// LoadSnapshot reads the last persisted snapshot from the configured store.
func (e *Engine) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	return e.coord.LoadSnapshot(ctx)
}

// Pending reports the phase of the outstanding transition.
func (e *Engine) Pending() runtime.Phase {
	return e.coord.Pending()
}

// Tree returns the state tree driven by the engine.
func (e *Engine) Tree() *tree.Tree {
	return e.tree
}

// TransitionEngine returns the external engine the coordinator delegates to.
func (e *Engine) TransitionEngine() ports.TransitionEngine {
	return e.engine
}
