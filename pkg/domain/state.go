package domain

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/sticky/pkg/locals"
)

// HookFunc is a lifecycle callback. Params are the transition's target
// parameters for enter-like hooks and its source parameters for exit-like hooks.
type HookFunc func(ctx context.Context, params Params) error

// Lifecycle groups the hook slots of a state.
type Lifecycle struct {
	OnEnter      HookFunc
	OnExit       HookFunc
	OnInactivate HookFunc // runs instead of OnExit when a sticky state is inactivated
	OnReactivate HookFunc // runs instead of OnEnter when an inactive state is reactivated
}

// ViewFactory resolves the data bound to one view of a state.
type ViewFactory func(ctx context.Context, params Params) (any, error)

// View is the view data produced by the bundled view factories.
type View struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	Template string `json:"template,omitempty"`
	Params   Params `json:"params,omitempty"`
}

// State is a node of the state tree.
type State struct {
	// Name is the unique dotted name, e.g. "app.inbox.message".
	Name string

	// Parent is nil only for the tree root.
	Parent *State

	// Sticky marks the state as inactivated, rather than exited, when left.
	Sticky bool

	// DeepSticky makes every descendant sticky as well.
	DeepSticky bool

	// Params lists the parameter names owned by this state.
	Params []string

	// Views maps view names to the factories resolving their data.
	Views map[string]ViewFactory

	Lifecycle Lifecycle

	// Data carries free-form configuration.
	Data map[string]any

	mu        sync.RWMutex
	self      *Element
	canonical Path
	installed Path
	local     *locals.Layer
	params    []string
}

// NewRoot creates the synthetic root state.
func NewRoot() *State {
	root := &State{Name: RootName}
	root.ComputePath()
	return root
}

// ComputePath rebuilds the canonical path from the parent chain.
// The parent's path must already be computed.
func (s *State) ComputePath() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params = slices.Clone(s.Params)
	s.self = NewElement(s, KindState, s.Lifecycle)
	s.self.Views = s.Views

	var base Path
	if s.Parent != nil {
		base = s.Parent.CanonicalPath()
	}
	path := make(Path, 0, len(base)+1)
	path = append(path, base...)
	s.canonical = append(path, s.self)
}

// Self returns the canonical element of the state.
func (s *State) Self() *Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.self
}

// CanonicalPath returns the real ancestor chain, root first, ending at s.
func (s *State) CanonicalPath() Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.canonical)
}

// Path returns the installed substitute path if one is present, otherwise
// the canonical path.
func (s *State) Path() Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.installed != nil {
		return slices.Clone(s.installed)
	}
	return slices.Clone(s.canonical)
}

// InstallPath temporarily replaces the path of s. The returned func restores
// whatever was installed before.
func (s *State) InstallPath(p Path) (restore func()) {
	s.mu.Lock()
	prev := s.installed
	s.installed = slices.Clone(p)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.installed = prev
		s.mu.Unlock()
	}
}

// HasSubstitutePath reports whether a substitute path is installed.
func (s *State) HasSubstitutePath() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.installed != nil
}

// OwnParams returns the parameter names currently owned by the state,
// including any synthetic parameter injected for a reload.
func (s *State) OwnParams() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.params)
}

// AddParam appends a parameter name for the duration of one transition.
// The returned func removes it again.
func (s *State) AddParam(name string) (remove func()) {
	s.mu.Lock()
	s.params = append(s.params, name)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := slices.Index(s.params, name); i >= 0 {
			s.params = slices.Delete(s.params, i, i+1)
		}
	}
}

// Locals returns the view layer currently attached to the state.
func (s *State) Locals() *locals.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.local
}

// AttachLocals attaches l as the state's own layer and returns the previous one.
func (s *State) AttachLocals(l *locals.Layer) *locals.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.local
	s.local = l
	return prev
}

// DetachLocals removes and returns the state's own layer.
func (s *State) DetachLocals() *locals.Layer {
	return s.AttachLocals(nil)
}

// IsRoot reports whether s is the synthetic root.
func (s *State) IsRoot() bool {
	return s.Parent == nil
}

// Depth is the number of edges between s and the root.
func (s *State) Depth() int {
	d := 0
	for p := s.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// IsSticky reports whether s is sticky itself or sits below a deep sticky ancestor.
func (s *State) IsSticky() bool {
	if s.Sticky || s.DeepSticky {
		return true
	}
	for p := s.Parent; p != nil; p = p.Parent {
		if p.DeepSticky {
			return true
		}
	}
	return false
}

// IsAncestorOf reports whether s is a strict ancestor of other.
func (s *State) IsAncestorOf(other *State) bool {
	if other == nil {
		return false
	}
	for p := other.Parent; p != nil; p = p.Parent {
		if p == s {
			return true
		}
	}
	return false
}

// ShortName is the last segment of the dotted name.
func (s *State) ShortName() string {
	if i := strings.LastIndex(s.Name, "."); i >= 0 {
		return s.Name[i+1:]
	}
	return s.Name
}

// String returns a printable name; the root prints as "(root)".
func (s *State) String() string {
	if s == nil {
		return "<nil>"
	}
	if s.Name == RootName {
		return "(root)"
	}
	return s.Name
}
