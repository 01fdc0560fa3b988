package runtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/sticky/internal/runtime"
	"github.com/aretw0/sticky/pkg/adapters/memory"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/locals"
	"github.com/aretw0/sticky/pkg/tree"
	"github.com/stretchr/testify/require"
)

// harness wires a tree, the in-memory engine and a coordinator, and records
// every hook call and the classifications of the last transition.
type harness struct {
	t      *testing.T
	tree   *tree.Tree
	engine *memory.Engine
	coord  *runtime.Coordinator

	mu      sync.Mutex
	calls   []string
	last    map[string]domain.Classification
	results []*domain.TransitionEvent
}

func newHarness(t *testing.T, opts ...runtime.Option) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		tree:   tree.New(),
		engine: memory.NewEngine(),
	}
	observer := domain.ObserverHooks{
		OnTransitionEnd: func(_ context.Context, e *domain.TransitionEvent) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.results = append(h.results, e)
			if e.Err == nil {
				h.last = e.Classifications
			}
		},
	}
	opts = append([]runtime.Option{runtime.WithObserver(observer)}, opts...)
	h.coord = runtime.NewCoordinator(h.tree, h.engine, opts...)
	return h
}

// state registers a state with a "main" view and traced hooks.
func (h *harness) state(name string, mod ...func(*tree.Config)) *domain.State {
	h.t.Helper()
	cfg := tree.Config{
		Name: name,
		Views: map[string]domain.ViewFactory{
			"main": func(_ context.Context, p domain.Params) (any, error) {
				return &domain.View{Name: "main", State: name, Params: p}, nil
			},
		},
		Lifecycle: domain.Lifecycle{
			OnEnter:      h.trace("enter", name),
			OnExit:       h.trace("exit", name),
			OnInactivate: h.trace("inactivate", name),
			OnReactivate: h.trace("reactivate", name),
		},
	}
	for _, m := range mod {
		m(&cfg)
	}
	s, err := h.tree.Register(cfg)
	require.NoError(h.t, err)
	return s
}

func sticky(cfg *tree.Config) { cfg.Sticky = true }

func deepSticky(cfg *tree.Config) { cfg.DeepSticky = true }

func params(names ...string) func(*tree.Config) {
	return func(cfg *tree.Config) { cfg.Params = names }
}

func (h *harness) trace(event, name string) domain.HookFunc {
	return func(context.Context, domain.Params) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.calls = append(h.calls, event+":"+name)
		return nil
	}
}

func (h *harness) move(to string, p domain.Params, opts ...domain.Options) *domain.State {
	h.t.Helper()
	var o domain.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	h.resetCalls()
	s, err := h.coord.Transition(context.Background(), to, p, o)
	require.NoError(h.t, err)
	return s
}

func (h *harness) resetCalls() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

func (h *harness) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *harness) Last() map[string]domain.Classification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// view returns the "main" view of state as seen from the layered locals of from.
func (h *harness) view(from, state string) any {
	h.t.Helper()
	chain, err := h.coord.Locals(from)
	require.NoError(h.t, err)
	v, ok := chain.Lookup(locals.Key("main", state))
	require.True(h.t, ok, "view main@%s not visible from %s", state, from)
	return v
}

func (h *harness) inactive(name string) bool {
	s, ok := h.tree.Get(name)
	require.True(h.t, ok)
	return h.coord.Registry().IsInactive(s)
}

func (h *harness) noSubstitutePaths() {
	h.t.Helper()
	for _, s := range append(h.tree.States(), h.tree.Root()) {
		require.False(h.t, s.HasSubstitutePath(), "state %s still has a substitute path", s)
		require.NotContains(h.t, s.OwnParams(), domain.ReloadParam)
	}
}
