package dsl

import (
	"fmt"

	"github.com/aretw0/sticky/pkg/tree"
)

// Builder manages the tree construction.
type Builder struct {
	order  []string
	states map[string]*StateBuilder
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{
		states: make(map[string]*StateBuilder),
	}
}

// Add declares a state by dotted name.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(name string) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{
		cfg:     tree.Config{Name: name},
		builder: b,
	}
	b.states[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Build registers every declared state on a new tree.
// States may be declared in any order.
func (b *Builder) Build() (*tree.Tree, error) {
	t := tree.New()
	if err := b.Into(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Into registers every declared state on an existing tree.
func (b *Builder) Into(t *tree.Tree) error {
	cfgs := make([]tree.Config, 0, len(b.order))
	for _, name := range b.order {
		cfgs = append(cfgs, b.states[name].cfg)
	}
	if err := t.RegisterAll(cfgs); err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	return nil
}
