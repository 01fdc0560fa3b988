// Package loader builds state trees from YAML definitions.
//
// A definition lists states by dotted name or nests them under "children":
//
//	states:
//	  - name: inbox
//	    sticky: true
//	    views:
//	      main: "inbox.html"
//	    children:
//	      - name: message
//	        params: [id]
//	  - name: settings
//	    sticky: deep
package loader

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/tree"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Loader turns decoded documents into registered trees.
type Loader struct {
	lifecycle func(name string) domain.Lifecycle
	views     func(state, view, template string) domain.ViewFactory
}

// Option configures the Loader.
type Option func(*Loader)

// WithLifecycle supplies the hooks of each declared state.
func WithLifecycle(fn func(name string) domain.Lifecycle) Option {
	return func(l *Loader) {
		l.lifecycle = fn
	}
}

// WithViewFactory overrides how a declared view template becomes a factory.
func WithViewFactory(fn func(state, view, template string) domain.ViewFactory) Option {
	return func(l *Loader) {
		l.views = fn
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{views: TemplateView}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TemplateView is the default view factory: it resolves to a *domain.View
// carrying the template and the params it was resolved with.
func TemplateView(state, view, template string) domain.ViewFactory {
	return func(_ context.Context, params domain.Params) (any, error) {
		return &domain.View{Name: view, State: state, Template: template, Params: params}, nil
	}
}

// LoadFile reads a YAML tree file.
func (l *Loader) LoadFile(path string) (*tree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	return l.Load(data)
}

// Load parses YAML bytes into a new tree.
func (l *Loader) Load(data []byte) (*tree.Tree, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	t := tree.New()
	if err := l.Register(t, doc); err != nil {
		return nil, err
	}
	return t, nil
}

// Parse decodes YAML bytes into a Document.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tree yaml: %w", err)
	}
	return Decode(raw)
}

// Decode converts a generic map into a Document. Unknown keys are rejected.
func Decode(raw map[string]any) (*Document, error) {
	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncType(stickyHook),
		ErrorUnused: true,
		Result:      &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	return &doc, nil
}

var stickyType = reflect.TypeOf(StickyNone)

func stickyHook(from, to reflect.Type, data any) (any, error) {
	if to != stickyType {
		return data, nil
	}
	switch v := data.(type) {
	case nil:
		return StickyNone, nil
	case bool:
		if v {
			return StickyOn, nil
		}
		return StickyNone, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "false", "no":
			return StickyNone, nil
		case "true", "yes", "sticky":
			return StickyOn, nil
		case "deep":
			return StickyDeep, nil
		}
		return nil, fmt.Errorf("invalid sticky mode '%s'", v)
	default:
		return nil, fmt.Errorf("invalid sticky mode of type %s", from)
	}
}

// Register adds every state of doc to t. Parents may be declared after
// their children; a state whose parent never appears is an error.
func (l *Loader) Register(t *tree.Tree, doc *Document) error {
	flat := flatten(doc.States, "")
	cfgs := make([]tree.Config, len(flat))
	for i, meta := range flat {
		cfgs[i] = l.config(meta)
	}
	return t.RegisterAll(cfgs)
}

func (l *Loader) config(meta StateMetadata) tree.Config {
	cfg := tree.Config{
		Name:       meta.Name,
		Parent:     meta.Parent,
		Sticky:     meta.Sticky == StickyOn,
		DeepSticky: meta.Sticky == StickyDeep,
		Params:     meta.Params,
		Data:       meta.Data,
	}
	if len(meta.Views) > 0 {
		cfg.Views = make(map[string]domain.ViewFactory, len(meta.Views))
		for view, tmpl := range meta.Views {
			cfg.Views[view] = l.views(meta.Name, view, tmpl)
		}
	}
	if l.lifecycle != nil {
		cfg.Lifecycle = l.lifecycle(meta.Name)
	}
	return cfg
}

// flatten expands nested children into absolute names, parents first.
func flatten(states []StateMetadata, parent string) []StateMetadata {
	var out []StateMetadata
	for _, s := range states {
		if parent != "" {
			s.Name = parent + "." + s.Name
			s.Parent = parent
		}
		children := s.Children
		s.Children = nil
		out = append(out, s)
		out = append(out, flatten(children, s.Name)...)
	}
	return out
}
