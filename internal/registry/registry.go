// Package registry tracks which states are active or inactive and owns the
// virtual root layer through which inactive view data stays reachable.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/locals"
)

// PoolOwner is the owner name of the virtual root layer.
const PoolOwner = "$$inactive"

type entry struct {
	state    *domain.State
	params   domain.Params
	retained *locals.Layer
	since    time.Time
}

// Registry is the inactive-state registry plus the virtual root pool.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	active   map[*domain.State]domain.Params
	inactive map[*domain.State]*entry
	sticky   map[string]bool
	pool     *locals.Layer
	now      func() time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		active:   make(map[*domain.State]domain.Params),
		inactive: make(map[*domain.State]*entry),
		sticky:   make(map[string]bool),
		pool:     locals.NewLayer(PoolOwner),
		now:      time.Now,
	}
}

// StateRegistered records the sticky flag of a newly registered state.
// It is meant to be subscribed to tree registration events.
func (r *Registry) StateRegistered(s *domain.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sticky[s.Name] = s.IsSticky()
}

// IsStickyName reports the sticky flag recorded at registration.
func (r *Registry) IsStickyName(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sticky[name]
}

// IsSticky reports the sticky flag recorded for s. A state that was never
// announced through StateRegistered is not sticky.
func (r *Registry) IsSticky(s *domain.State) bool {
	return r.IsStickyName(s.Name)
}

// Pool returns the virtual root layer.
func (r *Registry) Pool() *locals.Layer {
	return r.pool
}

// IsInactive reports whether s is in the inactive pool.
func (r *Registry) IsInactive(s *domain.State) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.inactive[s]
	return ok
}

// InactiveParams returns the parameters s was active with before it was inactivated.
func (r *Registry) InactiveParams(s *domain.State) (domain.Params, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.inactive[s]
	if !ok {
		return nil, false
	}
	return e.params.Clone(), true
}

// Retained returns the view layer retained for an inactive state.
func (r *Registry) Retained(s *domain.State) (*locals.Layer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.inactive[s]
	if !ok {
		return nil, false
	}
	return e.retained, true
}

// Inactives returns the inactive states sorted by name.
func (r *Registry) Inactives() []*domain.State {
	r.mu.RLock()
	out := make([]*domain.State, 0, len(r.inactive))
	for s := range r.inactive {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// InactiveDescendants returns the inactive states strictly below s, sorted by name.
func (r *Registry) InactiveDescendants(s *domain.State) []*domain.State {
	var out []*domain.State
	for _, in := range r.Inactives() {
		if s.IsAncestorOf(in) {
			out = append(out, in)
		}
	}
	return out
}

// ActiveParams returns the parameters s was entered with, if it is active.
func (r *Registry) ActiveParams(s *domain.State) (domain.Params, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.active[s]
	return p, ok
}

// Entered marks s active with the given parameters.
func (r *Registry) Entered(s *domain.State, params domain.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[s] = params.Clone()
}

// Inactivate moves s into the inactive pool, retaining its own view layer and
// publishing the layer's entries on the virtual root. A state that is already
// inactive keeps its existing record.
func (r *Registry) Inactivate(s *domain.State, params domain.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.inactive[s]; ok {
		return
	}

	retained := s.DetachLocals()
	if retained == nil {
		retained = locals.NewLayer(s.Name)
	}
	if p, ok := r.active[s]; ok {
		params = p
	}
	delete(r.active, s)
	r.inactive[s] = &entry{
		state:    s,
		params:   params.Clone(),
		retained: retained,
		since:    r.now(),
	}
	for k, v := range retained.Entries() {
		r.pool.Set(k, v)
	}
}

// DeepestActive returns the deepest active state whose ancestors are all
// active, ties broken by name. The root counts as active once entered.
func (r *Registry) DeepestActive() *domain.State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *domain.State
	bestDepth := -1
	for s := range r.active {
		if !r.chainActive(s) {
			continue
		}
		d := s.Depth()
		if d > bestDepth || (d == bestDepth && s.Name < best.Name) {
			best, bestDepth = s, d
		}
	}
	return best
}

func (r *Registry) chainActive(s *domain.State) bool {
	for p := s.Parent; p != nil; p = p.Parent {
		if _, ok := r.active[p]; !ok {
			return false
		}
	}
	return true
}

// Reactivate takes s out of the inactive pool. The caller is expected to have
// reattached the retained layer to s beforehand.
func (r *Registry) Reactivate(s *domain.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.inactive[s]
	if !ok {
		return
	}
	delete(r.inactive, s)
	r.active[s] = e.params
	r.pool.DeleteOwnedBy(s.Name)
}

// Exit forgets s entirely and drops its view data.
func (r *Registry) Exit(s *domain.State) {
	s.DetachLocals()

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, s)
	delete(r.inactive, s)
	r.pool.DeleteOwnedBy(s.Name)
}

// Discard drops the stale inactive record of s and of its inactive
// descendants without touching the layer currently attached to s.
// It returns the discarded descendants.
func (r *Registry) Discard(s *domain.State) []*domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dropped []*domain.State
	for in := range r.inactive {
		if in == s || s.IsAncestorOf(in) {
			delete(r.inactive, in)
			r.pool.DeleteOwnedBy(in.Name)
			if in != s {
				in.DetachLocals()
				dropped = append(dropped, in)
			}
		}
	}
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Name < dropped[j].Name })
	return dropped
}

// Refresh rebuilds the virtual root pool from the given states.
// Inactive states contribute their retained layer; states about to be
// inactivated contribute the layer still attached to them.
func (r *Registry) Refresh(inactives []*domain.State) {
	fresh := make(map[string]any)

	r.mu.RLock()
	for _, s := range inactives {
		layer := s.Locals()
		if e, ok := r.inactive[s]; ok {
			layer = e.retained
		}
		for k, v := range layer.Entries() {
			fresh[k] = v
		}
	}
	r.mu.RUnlock()

	r.pool.Replace(fresh)
}

// Chain returns the layered locals for s: its own layer, each ancestor's
// layer, then the virtual root pool.
func (r *Registry) Chain(s *domain.State) locals.Chain {
	var layers []*locals.Layer
	for p := s; p != nil; p = p.Parent {
		layers = append(layers, p.Locals())
	}
	layers = append(layers, r.pool)
	return locals.NewChain(layers...)
}

// ActiveNames returns the names of the active states sorted by depth then name.
func (r *Registry) ActiveNames() []string {
	r.mu.RLock()
	states := make([]*domain.State, 0, len(r.active))
	for s := range r.active {
		states = append(states, s)
	}
	r.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool {
		di, dj := states[i].Depth(), states[j].Depth()
		if di != dj {
			return di < dj
		}
		return states[i].Name < states[j].Name
	})
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.Name
	}
	return out
}

// InactiveStates summarises the inactive pool sorted by name.
func (r *Registry) InactiveStates() []domain.InactiveState {
	r.mu.RLock()
	out := make([]domain.InactiveState, 0, len(r.inactive))
	for s, e := range r.inactive {
		views := make([]string, 0, e.retained.Len())
		for _, k := range e.retained.Keys() {
			view, _ := locals.SplitKey(k)
			views = append(views, view)
		}
		out = append(out, domain.InactiveState{
			Name:   s.Name,
			Params: e.params.Clone(),
			Views:  views,
			Since:  e.since,
		})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
