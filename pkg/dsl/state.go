package dsl

import (
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/aretw0/sticky/pkg/tree"
)

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	cfg     tree.Config
	builder *Builder
}

// Parent places the state under an explicitly named parent instead of the
// one derived from its dotted name.
func (s *StateBuilder) Parent(name string) *StateBuilder {
	s.cfg.Parent = name
	return s
}

// Sticky marks the state as inactivated, rather than exited, when left.
func (s *StateBuilder) Sticky() *StateBuilder {
	s.cfg.Sticky = true
	return s
}

// DeepSticky makes the state and all of its descendants sticky.
func (s *StateBuilder) DeepSticky() *StateBuilder {
	s.cfg.DeepSticky = true
	return s
}

// Params declares the parameter names owned by the state.
func (s *StateBuilder) Params(names ...string) *StateBuilder {
	s.cfg.Params = append(s.cfg.Params, names...)
	return s
}

// View binds a view factory under name.
func (s *StateBuilder) View(name string, factory domain.ViewFactory) *StateBuilder {
	if s.cfg.Views == nil {
		s.cfg.Views = make(map[string]domain.ViewFactory)
	}
	s.cfg.Views[name] = factory
	return s
}

// Template binds a view resolving to a *domain.View carrying tmpl.
func (s *StateBuilder) Template(name, tmpl string) *StateBuilder {
	return s.View(name, loader.TemplateView(s.cfg.Name, name, tmpl))
}

// OnEnter sets the enter hook.
func (s *StateBuilder) OnEnter(fn domain.HookFunc) *StateBuilder {
	s.cfg.Lifecycle.OnEnter = fn
	return s
}

// OnExit sets the exit hook.
func (s *StateBuilder) OnExit(fn domain.HookFunc) *StateBuilder {
	s.cfg.Lifecycle.OnExit = fn
	return s
}

// OnInactivate sets the hook run when the state is kept inactive.
func (s *StateBuilder) OnInactivate(fn domain.HookFunc) *StateBuilder {
	s.cfg.Lifecycle.OnInactivate = fn
	return s
}

// OnReactivate sets the hook run when an inactive state is entered again.
func (s *StateBuilder) OnReactivate(fn domain.HookFunc) *StateBuilder {
	s.cfg.Lifecycle.OnReactivate = fn
	return s
}

// Data adds a free-form configuration value.
func (s *StateBuilder) Data(key string, value any) *StateBuilder {
	if s.cfg.Data == nil {
		s.cfg.Data = make(map[string]any)
	}
	s.cfg.Data[key] = value
	return s
}

// Add declares another state on the same builder, for chaining.
func (s *StateBuilder) Add(name string) *StateBuilder {
	return s.builder.Add(name)
}

// Config returns the underlying tree.Config.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *StateBuilder) Config() tree.Config {
	return s.cfg
}
