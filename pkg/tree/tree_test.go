package tree_test

import (
	"testing"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New()
	for _, name := range []string{"app", "app.inbox", "app.inbox.message", "app.settings"} {
		_, err := tr.Register(tree.Config{Name: name})
		require.NoError(t, err)
	}
	return tr
}

func TestTree_RegisterDerivesParent(t *testing.T) {
	tr := newTree(t)
	msg, ok := tr.Get("app.inbox.message")
	require.True(t, ok)

	assert.Equal(t, "app.inbox", msg.Parent.Name)
	assert.Equal(t, 3, msg.Depth())
	assert.Equal(t, []string{"", "app", "app.inbox", "app.inbox.message"}, tr.PathOf(msg).Names())
	assert.Equal(t, "message", msg.ShortName())
}

func TestTree_RegisterErrors(t *testing.T) {
	tr := newTree(t)

	tests := []struct {
		name string
		cfg  tree.Config
	}{
		{"empty name", tree.Config{}},
		{"duplicate", tree.Config{Name: "app"}},
		{"missing parent", tree.Config{Name: "nope.child"}},
		{"invalid characters", tree.Config{Name: "a@b"}},
		{"leading dot", tree.Config{Name: ".a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Register(tt.cfg)
			var regErr *domain.RegistrationError
			assert.ErrorAs(t, err, &regErr)
		})
	}
}

func TestTree_ExplicitParent(t *testing.T) {
	tr := newTree(t)
	s, err := tr.Register(tree.Config{Name: "compose", Parent: "app"})
	require.NoError(t, err)
	assert.Equal(t, "app", s.Parent.Name)
	assert.Contains(t, tr.Children(s.Parent), s)
}

func TestTree_Lookup(t *testing.T) {
	tr := newTree(t)
	inbox, _ := tr.Get("app.inbox")

	tests := []struct {
		name     string
		relative *domain.State
		want     string
	}{
		{"app.settings", nil, "app.settings"},
		{"", nil, ""},
		{"^", inbox, "app"},
		{"^.settings", inbox, "app.settings"},
		{".message", inbox, "app.inbox.message"},
		{"^.^", inbox, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tr.Lookup(tt.name, tt.relative)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name)
		})
	}
}

func TestTree_LookupFollowsExplicitParents(t *testing.T) {
	tr := newTree(t)
	compose := tr.MustRegister(tree.Config{Name: "compose", Parent: "app"})
	tr.MustRegister(tree.Config{Name: "compose.to"})
	inbox, _ := tr.Get("app.inbox")
	app, _ := tr.Get("app")

	tests := []struct {
		name     string
		relative *domain.State
		want     string
	}{
		{".compose", app, "compose"},
		{"^.compose", inbox, "compose"},
		{".compose.to", app, "compose.to"},
		{"^.inbox", compose, "app.inbox"},
		{"^.inbox.message", compose, "app.inbox.message"},
		{".app.compose", tr.Root(), "compose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tr.Lookup(tt.name, tt.relative)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name)
		})
	}

	_, err := tr.Lookup(".compose", nil)
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
	_, err = tr.Lookup(".compose.missing", app)
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestTree_LookupNotFound(t *testing.T) {
	tr := newTree(t)
	inbox, _ := tr.Get("app.inbox")

	_, err := tr.Lookup("app.missing", nil)
	assert.ErrorIs(t, err, domain.ErrStateNotFound)

	_, err = tr.Lookup("^.missing", inbox)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "app.inbox", nf.RelativeTo)

	_, err = tr.Lookup(".x", nil)
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestTree_SubscribeNotifiesRegistrations(t *testing.T) {
	tr := tree.New()
	var seen []string
	tr.Subscribe(func(s *domain.State) { seen = append(seen, s.Name) })

	tr.MustRegister(tree.Config{Name: "a", Sticky: true})
	tr.MustRegister(tree.Config{Name: "a.b"})

	assert.Equal(t, []string{"a", "a.b"}, seen)
}

func TestTree_Descendants(t *testing.T) {
	tr := newTree(t)
	app, _ := tr.Get("app")

	names := make([]string, 0)
	for _, s := range tr.Descendants(app) {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"app.inbox", "app.settings", "app.inbox.message"}, names)
	assert.Len(t, tr.States(), 4)
}

func TestTree_RegisterAllOrdersByParent(t *testing.T) {
	tr := tree.New()
	err := tr.RegisterAll([]tree.Config{
		{Name: "a.b.c"},
		{Name: "x", Parent: "a.b"},
		{Name: "a.b"},
		{Name: "a"},
	})
	require.NoError(t, err)

	x, ok := tr.Get("x")
	require.True(t, ok)
	assert.Equal(t, "a.b", x.Parent.Name)
	assert.Len(t, tr.States(), 4)
}

func TestTree_RegisterAllMissingParent(t *testing.T) {
	tr := tree.New()
	err := tr.RegisterAll([]tree.Config{{Name: "a"}, {Name: "b.c"}})

	var regErr *domain.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "b.c", regErr.Name)
	_, ok := tr.Get("a")
	assert.True(t, ok)
}
