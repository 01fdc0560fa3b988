// Package planner diffs two state paths and classifies every state on them.
package planner

import (
	"errors"
	"sort"

	"github.com/aretw0/sticky/pkg/domain"
)

// ErrInvalidPath is returned when a path is empty or does not start at the root.
var ErrInvalidPath = errors.New("path must start at the tree root")

// Inactivity is the read-only registry view the planner needs.
type Inactivity interface {
	// IsSticky reports the sticky flag recorded when s was registered.
	IsSticky(s *domain.State) bool
	InactiveParams(s *domain.State) (domain.Params, bool)
	InactiveDescendants(s *domain.State) []*domain.State
	Inactives() []*domain.State
}

// Input describes one transition to plan.
type Input struct {
	From       []*domain.State
	FromParams domain.Params
	To         []*domain.State
	ToParams   domain.Params
}

// Plan is the classification of a transition.
type Plan struct {
	// Pivot is the last index kept on both paths. Index 0 (root) is always kept.
	Pivot int

	From []*domain.State
	To   []*domain.State

	// Enter classifies To indices beyond the pivot.
	Enter map[int]domain.Classification
	// Exit classifies From indices beyond the pivot.
	Exit map[int]domain.Classification

	// Orphans are inactive states exited as a side effect, deepest first.
	Orphans []*domain.State

	// Inactives lists the states inactive after the transition, by name.
	Inactives []*domain.State
}

// Compute plans a transition against the current registry contents.
func Compute(in Input, reg Inactivity) (*Plan, error) {
	if len(in.From) == 0 || len(in.To) == 0 || in.From[0] != in.To[0] {
		return nil, ErrInvalidPath
	}

	p := &Plan{
		Pivot: pivot(in),
		From:  in.From,
		To:    in.To,
		Enter: make(map[int]domain.Classification),
		Exit:  make(map[int]domain.Classification),
	}

	p.classifyEntering(in, reg)
	p.classifyExiting(reg)
	p.collectOrphans(reg)
	p.collectInactives(reg)
	return p, nil
}

// pivot walks both paths while they reference the same state with the same
// own parameters.
func pivot(in Input) int {
	keep := 0
	for i := 1; i < len(in.From) && i < len(in.To); i++ {
		s := in.To[i]
		if in.From[i] != s {
			break
		}
		if !in.ToParams.EqualForKeys(in.FromParams, s.OwnParams()) {
			break
		}
		keep = i
	}
	return keep
}

func (p *Plan) classifyEntering(in Input, reg Inactivity) {
	// Once a state is freshly entered, nothing below it may reuse retained data.
	fresh := false
	for i := p.Pivot + 1; i < len(p.To); i++ {
		s := p.To[i]
		retainedParams, inactive := reg.InactiveParams(s)
		switch {
		case !inactive:
			p.Enter[i] = domain.ClassEnter
			fresh = true
		case fresh || !in.ToParams.EqualForKeys(retainedParams, s.OwnParams()):
			p.Enter[i] = domain.ClassUpdateParams
			fresh = true
		default:
			p.Enter[i] = domain.ClassReactivate
		}
	}
}

func (p *Plan) classifyExiting(reg Inactivity) {
	reentered := make(map[*domain.State]bool)
	for i := p.Pivot + 1; i < len(p.To); i++ {
		reentered[p.To[i]] = true
	}

	// A sticky state is only retained while its parent is retained too.
	parentRetained := true
	for i := p.Pivot + 1; i < len(p.From); i++ {
		s := p.From[i]
		if parentRetained && reg.IsSticky(s) && !reentered[s] {
			p.Exit[i] = domain.ClassInactivate
			continue
		}
		p.Exit[i] = domain.ClassExit
		parentRetained = false
	}
}

func (p *Plan) collectOrphans(reg Inactivity) {
	onTo := make(map[*domain.State]bool, len(p.To))
	for _, s := range p.To {
		onTo[s] = true
	}

	seen := make(map[*domain.State]bool)
	add := func(list []*domain.State) {
		for _, s := range list {
			if !onTo[s] && !seen[s] {
				seen[s] = true
				p.Orphans = append(p.Orphans, s)
			}
		}
	}

	if p.TerminalReactivated() {
		add(reg.InactiveDescendants(p.Target()))
	}
	for i := p.Pivot + 1; i < len(p.To); i++ {
		if p.Enter[i] == domain.ClassUpdateParams {
			add(reg.InactiveDescendants(p.To[i]))
		}
	}
	for i := p.Pivot + 1; i < len(p.From); i++ {
		if p.Exit[i] == domain.ClassExit {
			add(reg.InactiveDescendants(p.From[i]))
		}
	}

	SortDeepestFirst(p.Orphans)
}

func (p *Plan) collectInactives(reg Inactivity) {
	leaving := make(map[*domain.State]bool)
	for i := p.Pivot + 1; i < len(p.To); i++ {
		leaving[p.To[i]] = true
	}
	for _, s := range p.Orphans {
		leaving[s] = true
	}

	for _, s := range reg.Inactives() {
		if !leaving[s] {
			p.Inactives = append(p.Inactives, s)
		}
	}
	for i := p.Pivot + 1; i < len(p.From); i++ {
		if p.Exit[i] == domain.ClassInactivate {
			p.Inactives = append(p.Inactives, p.From[i])
		}
	}
	sort.Slice(p.Inactives, func(i, j int) bool { return p.Inactives[i].Name < p.Inactives[j].Name })
}

// Target is the leaf of the to-path.
func (p *Plan) Target() *domain.State {
	return p.To[len(p.To)-1]
}

// TerminalReactivated reports whether the target itself is being reactivated.
func (p *Plan) TerminalReactivated() bool {
	last := len(p.To) - 1
	return last > p.Pivot && p.Enter[last] == domain.ClassReactivate
}

// Classifications flattens the plan into a name to classification map.
// Kept states (other than the root) are reported as ClassKeep.
func (p *Plan) Classifications() map[string]domain.Classification {
	out := make(map[string]domain.Classification)
	for i := 1; i <= p.Pivot; i++ {
		out[p.To[i].Name] = domain.ClassKeep
	}
	for i, c := range p.Exit {
		out[p.From[i].Name] = c
	}
	for _, s := range p.Orphans {
		out[s.Name] = domain.ClassExit
	}
	// Entering verdicts win for states that are exited and re-entered.
	for i, c := range p.Enter {
		out[p.To[i].Name] = c
	}
	return out
}

// InactiveNames returns the names of Inactives.
func (p *Plan) InactiveNames() []string {
	out := make([]string, len(p.Inactives))
	for i, s := range p.Inactives {
		out[i] = s.Name
	}
	return out
}

// SortDeepestFirst orders states by depth descending, then name descending.
func SortDeepestFirst(states []*domain.State) {
	sort.SliceStable(states, func(i, j int) bool {
		di, dj := states[i].Depth(), states[j].Depth()
		if di != dj {
			return di > dj
		}
		return states[i].Name > states[j].Name
	})
}
