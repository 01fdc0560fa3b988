// Package tree holds the registered state hierarchy and resolves state names.
package tree

import (
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/sticky/pkg/domain"
)

// Config declares a state at registration time.
type Config struct {
	Name string

	// Parent names the parent state. When empty the parent is derived from
	// the dotted name ("a.b" is registered under "a"), falling back to the root.
	Parent string

	Sticky     bool
	DeepSticky bool
	Params     []string
	Views      map[string]domain.ViewFactory
	Lifecycle  domain.Lifecycle
	Data       map[string]any
}

// Listener is notified after a state has been registered.
type Listener func(*domain.State)

// Tree is the registered hierarchy of states.
// Safe for concurrent use.
type Tree struct {
	mu        sync.RWMutex
	root      *domain.State
	states    map[string]*domain.State
	children  map[*domain.State][]*domain.State
	listeners []Listener
}

// New creates a tree holding only the synthetic root.
func New() *Tree {
	root := domain.NewRoot()
	return &Tree{
		root:     root,
		states:   map[string]*domain.State{domain.RootName: root},
		children: make(map[*domain.State][]*domain.State),
	}
}

// Root returns the synthetic root state.
func (t *Tree) Root() *domain.State {
	return t.root
}

// Subscribe registers a listener for stateRegistered notifications.
func (t *Tree) Subscribe(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// Register inserts a state under its parent.
func (t *Tree) Register(cfg Config) (*domain.State, error) {
	if cfg.Name == domain.RootName {
		return nil, &domain.RegistrationError{Name: cfg.Name, Reason: "name is required"}
	}
	if strings.ContainsAny(cfg.Name, "^@") || strings.HasPrefix(cfg.Name, ".") || strings.HasSuffix(cfg.Name, ".") {
		return nil, &domain.RegistrationError{Name: cfg.Name, Reason: "invalid characters in name"}
	}

	t.mu.Lock()
	if _, exists := t.states[cfg.Name]; exists {
		t.mu.Unlock()
		return nil, &domain.RegistrationError{Name: cfg.Name, Reason: "duplicate state"}
	}

	pname := parentName(cfg)
	parent, ok := t.states[pname]
	if !ok {
		t.mu.Unlock()
		return nil, &domain.RegistrationError{Name: cfg.Name, Reason: "parent '" + pname + "' is not registered"}
	}

	s := &domain.State{
		Name:       cfg.Name,
		Parent:     parent,
		Sticky:     cfg.Sticky,
		DeepSticky: cfg.DeepSticky,
		Params:     cfg.Params,
		Views:      cfg.Views,
		Lifecycle:  cfg.Lifecycle,
		Data:       cfg.Data,
	}
	s.ComputePath()

	t.states[s.Name] = s
	t.children[parent] = append(t.children[parent], s)
	listeners := append([]Listener(nil), t.listeners...)
	t.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
	return s, nil
}

// RegisterAll registers cfgs in dependency order: a config whose parent is
// not yet registered is retried after the others. A parent that never
// appears is an error.
func (t *Tree) RegisterAll(cfgs []Config) error {
	pending := cfgs
	for len(pending) > 0 {
		var deferred []Config
		for _, cfg := range pending {
			if _, ok := t.Get(parentName(cfg)); !ok {
				deferred = append(deferred, cfg)
				continue
			}
			if _, err := t.Register(cfg); err != nil {
				return err
			}
		}
		if len(deferred) == len(pending) {
			return &domain.RegistrationError{
				Name:   deferred[0].Name,
				Reason: "parent '" + parentName(deferred[0]) + "' is not declared",
			}
		}
		pending = deferred
	}
	return nil
}

func parentName(cfg Config) string {
	if cfg.Parent != "" {
		return cfg.Parent
	}
	if i := strings.LastIndex(cfg.Name, "."); i >= 0 {
		return cfg.Name[:i]
	}
	return domain.RootName
}

// MustRegister is like Register but panics on error. Intended for tests and examples.
func (t *Tree) MustRegister(cfg Config) *domain.State {
	s, err := t.Register(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// Get returns a state by absolute name.
func (t *Tree) Get(name string) (*domain.State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.states[name]
	return s, ok
}

// Lookup resolves name, optionally relative to another state.
//
// Relative forms: "^" is the parent, "^.x" a sibling, "^.^.x" walks further
// up, ".x" is a child of relativeTo. Relative segments follow the registered
// children, so a state placed under an explicit parent is reached by the part
// of its name that does not repeat the parent's.
func (t *Tree) Lookup(name string, relativeTo *domain.State) (*domain.State, error) {
	if !strings.HasPrefix(name, "^") && !strings.HasPrefix(name, ".") {
		s, found := t.Get(name)
		if !found {
			return nil, notFound(name, relativeTo)
		}
		return s, nil
	}
	if relativeTo == nil {
		return nil, notFound(name, relativeTo)
	}

	base := relativeTo
	rest := name
	for strings.HasPrefix(rest, "^") {
		if base.Parent == nil {
			return nil, notFound(name, relativeTo)
		}
		base = base.Parent
		rest = strings.TrimPrefix(rest, "^")
		rest = strings.TrimPrefix(rest, ".")
	}
	rest = strings.TrimPrefix(rest, ".")
	if rest == "" {
		return base, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if s := t.descend(base, rest); s != nil {
		return s, nil
	}
	return nil, notFound(name, relativeTo)
}

// descend follows rest down from base one registered child at a time,
// preferring the child whose local name consumes the most of rest.
func (t *Tree) descend(base *domain.State, rest string) *domain.State {
	for rest != "" {
		var next *domain.State
		var consumed string
		for _, c := range t.children[base] {
			local := localName(c)
			if (rest == local || strings.HasPrefix(rest, local+".")) && len(local) > len(consumed) {
				next, consumed = c, local
			}
		}
		if next == nil {
			return nil
		}
		base = next
		rest = strings.TrimPrefix(strings.TrimPrefix(rest, consumed), ".")
	}
	return base
}

// localName is the part of s.Name below its parent: the suffix after the
// parent's dotted prefix, or the whole name when s was placed explicitly.
func localName(s *domain.State) string {
	if s.Parent == nil || s.Parent.Name == domain.RootName {
		return s.Name
	}
	if local, ok := strings.CutPrefix(s.Name, s.Parent.Name+"."); ok {
		return local
	}
	return s.Name
}

func notFound(name string, relativeTo *domain.State) error {
	err := &domain.NotFoundError{Name: name}
	if relativeTo != nil {
		err.RelativeTo = relativeTo.String()
	}
	return err
}

// PathOf returns the path of s as currently installed, root first.
func (t *Tree) PathOf(s *domain.State) domain.Path {
	return s.Path()
}

// Children returns the direct children of s in registration order.
func (t *Tree) Children(s *domain.State) []*domain.State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*domain.State(nil), t.children[s]...)
}

// Descendants returns every registered descendant of s, shallowest first,
// then by name.
func (t *Tree) Descendants(s *domain.State) []*domain.State {
	t.mu.RLock()
	var out []*domain.State
	queue := append([]*domain.State(nil), t.children[s]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		out = append(out, next)
		queue = append(queue, t.children[next]...)
	}
	t.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Depth(), out[j].Depth()
		if di != dj {
			return di < dj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// States returns every registered state except the root, sorted by name.
func (t *Tree) States() []*domain.State {
	t.mu.RLock()
	out := make([]*domain.State, 0, len(t.states))
	for _, s := range t.states {
		if s != t.root {
			out = append(out, s)
		}
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
