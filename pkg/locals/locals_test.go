package locals_test

import (
	"testing"

	"github.com/aretw0/sticky/pkg/locals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	key := locals.Key("main", "app.inbox")
	assert.Equal(t, "main@app.inbox", key)

	view, state := locals.SplitKey(key)
	assert.Equal(t, "main", view)
	assert.Equal(t, "app.inbox", state)

	view, state = locals.SplitKey("orphan")
	assert.Equal(t, "orphan", view)
	assert.Empty(t, state)
}

func TestChain_LookupPrefersStrongerLayers(t *testing.T) {
	child := locals.NewLayer("a.b")
	parent := locals.NewLayer("a")
	pool := locals.NewLayer("$$inactive")

	shared := &struct{ n int }{1}
	child.Set("main@a.b", "child")
	parent.Set("main@a", shared)
	parent.Set("main@a.b", "shadowed")
	pool.Set("main@x", "retained")

	chain := locals.NewChain(child, nil, parent, pool)
	require.Len(t, chain.Layers(), 3)

	v, ok := chain.Lookup("main@a.b")
	require.True(t, ok)
	assert.Equal(t, "child", v)

	v, src, ok := chain.Source("main@a")
	require.True(t, ok)
	assert.Same(t, shared, v)
	assert.Same(t, parent, src)

	v, src, ok = chain.Source("main@x")
	require.True(t, ok)
	assert.Equal(t, "retained", v)
	assert.Equal(t, "$$inactive", src.Owner())

	_, ok = chain.Lookup("missing@a")
	assert.False(t, ok)

	flat := chain.Flatten()
	assert.Equal(t, "child", flat["main@a.b"])
	assert.Len(t, flat, 3)
}

func TestLayer_ReplaceKeepsIdentity(t *testing.T) {
	l := locals.NewLayer("pool")
	v := &struct{}{}
	l.Set("main@a", v)
	l.Set("stale@b", 1)

	l.Replace(map[string]any{"main@a": v, "main@c": 2})

	assert.Equal(t, []string{"main@a", "main@c"}, l.Keys())
	got, _ := l.Get("main@a")
	assert.Same(t, v, got)
}

func TestLayer_DeleteOwnedBy(t *testing.T) {
	l := locals.NewLayer("pool")
	l.Set("main@a", 1)
	l.Set("side@a", 2)
	l.Set("main@a.b", 3)

	l.DeleteOwnedBy("a")

	assert.Equal(t, []string{"main@a.b"}, l.Keys())
}

func TestLayer_NilSafeReads(t *testing.T) {
	var l *locals.Layer
	_, ok := l.Get("x")
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Keys())
	assert.Empty(t, l.Entries())
}
