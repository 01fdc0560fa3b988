package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/locals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func child(parent *domain.State, name string, mod ...func(*domain.State)) *domain.State {
	s := &domain.State{Name: name, Parent: parent}
	for _, m := range mod {
		m(s)
	}
	s.ComputePath()
	return s
}

func TestState_CanonicalPathSharesSelfElements(t *testing.T) {
	root := domain.NewRoot()
	a := child(root, "a")
	b := child(a, "a.b")

	path := b.CanonicalPath()
	require.Len(t, path, 3)
	assert.Same(t, root.Self(), path[0])
	assert.Same(t, a.Self(), path[1])
	assert.Same(t, b.Self(), path.Leaf())
	assert.False(t, path[1].IsSurrogate())
	assert.Equal(t, 2, domain.Pivot(b.CanonicalPath(), b.CanonicalPath()))
	assert.Equal(t, 1, domain.Pivot(b.CanonicalPath(), a.CanonicalPath()))
}

func TestState_InstallPathRestores(t *testing.T) {
	root := domain.NewRoot()
	a := child(root, "a")
	sub := domain.Path{root.Self(), domain.NewElement(a, domain.KindEnter, domain.Lifecycle{})}

	restore := a.InstallPath(sub)
	assert.True(t, a.HasSubstitutePath())
	assert.Equal(t, domain.KindEnter, a.Path().Leaf().Kind)
	assert.Equal(t, domain.KindState, a.CanonicalPath().Leaf().Kind)

	restore()
	assert.False(t, a.HasSubstitutePath())
	assert.Same(t, a.Self(), a.Path().Leaf())
}

func TestState_AddParamIsReversible(t *testing.T) {
	root := domain.NewRoot()
	a := child(root, "a", func(s *domain.State) { s.Params = []string{"id"} })

	remove := a.AddParam(domain.ReloadParam)
	assert.Equal(t, []string{"id", domain.ReloadParam}, a.OwnParams())
	assert.Equal(t, []string{"id"}, a.Params)

	remove()
	assert.Equal(t, []string{"id"}, a.OwnParams())
}

func TestState_IsSticky(t *testing.T) {
	root := domain.NewRoot()
	plain := child(root, "plain")
	sticky := child(root, "sticky", func(s *domain.State) { s.Sticky = true })
	stickyChild := child(sticky, "sticky.x")
	deep := child(root, "deep", func(s *domain.State) { s.DeepSticky = true })
	deepChild := child(child(deep, "deep.x"), "deep.x.y")

	assert.False(t, plain.IsSticky())
	assert.True(t, sticky.IsSticky())
	assert.False(t, stickyChild.IsSticky(), "Sticky does not propagate")
	assert.True(t, deep.IsSticky())
	assert.True(t, deepChild.IsSticky())
	assert.True(t, deep.IsAncestorOf(deepChild))
	assert.False(t, deepChild.IsAncestorOf(deep))
}

func TestElement_SetHooksSwapsAtomically(t *testing.T) {
	root := domain.NewRoot()
	a := child(root, "a")
	called := ""
	el := domain.NewElement(a, domain.KindExit, domain.Lifecycle{
		OnExit: func(context.Context, domain.Params) error { called = "wrapped"; return nil },
	})

	prev := el.SetHooks(domain.Lifecycle{
		OnExit: func(context.Context, domain.Params) error { called = "original"; return nil },
	})
	require.NotNil(t, prev.OnExit)

	require.NoError(t, el.Hooks().OnExit(context.Background(), nil))
	assert.Equal(t, "original", called)
}

func TestState_LocalsAttachDetach(t *testing.T) {
	a := child(domain.NewRoot(), "a")
	layer := locals.NewLayer("a")

	assert.Nil(t, a.AttachLocals(layer))
	assert.Same(t, layer, a.Locals())
	assert.Same(t, layer, a.DetachLocals())
	assert.Nil(t, a.Locals())
}

func TestParams(t *testing.T) {
	p := domain.Params{"a": 1, "b": []int{1, 2}, "c": "x"}

	assert.Equal(t, domain.Params{"a": 1}, p.Only([]string{"a", "missing"}))
	assert.Equal(t, domain.Params{"a": 1, "b": []int{1, 2}}, p.Without("c"))
	assert.True(t, p.EqualForKeys(domain.Params{"b": []int{1, 2}}, []string{"b", "missing"}))
	assert.False(t, p.EqualForKeys(domain.Params{"a": 2}, []string{"a"}))
	assert.False(t, p.EqualForKeys(domain.Params{}, []string{"a"}))
	assert.Equal(t, []string{"a", "b", "c"}, p.Keys())

	var nilParams domain.Params
	assert.NotNil(t, nilParams.Clone())
}

func TestNotFoundError(t *testing.T) {
	err := &domain.NotFoundError{Name: "^.x", RelativeTo: "a"}
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
	assert.Contains(t, err.Error(), "relative to 'a'")
	assert.False(t, domain.IsSentinel(err))
	assert.True(t, domain.IsSentinel(domain.ErrTransitionSuperseded))
}
