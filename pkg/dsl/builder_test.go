package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleTree(t *testing.T) {
	// 1. Build the tree using DSL
	b := New()

	b.Add("inbox.message").
		Params("id").
		Template("main", "message.html")

	b.Add("inbox").
		Sticky().
		Params("folder").
		Data("icon", "mail")

	b.Add("settings").
		DeepSticky().
		Add("settings.profile")

	tr, err := b.Build()
	require.NoError(t, err)

	// 2. Verify states
	inbox, ok := tr.Get("inbox")
	require.True(t, ok)
	assert.True(t, inbox.Sticky)
	assert.Equal(t, []string{"folder"}, inbox.Params)
	assert.Equal(t, "mail", inbox.Data["icon"])

	msg, ok := tr.Get("inbox.message")
	require.True(t, ok, "child declared before its parent")
	assert.Same(t, inbox, msg.Parent)

	profile, ok := tr.Get("settings.profile")
	require.True(t, ok)
	assert.True(t, profile.IsSticky())

	// 3. Verify template view
	v, err := msg.Views["main"](context.Background(), domain.Params{"id": 3})
	require.NoError(t, err)
	view := v.(*domain.View)
	assert.Equal(t, "message.html", view.Template)
	assert.Equal(t, 3, view.Params["id"])
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	first := b.Add("a")
	first.Sticky()
	assert.Same(t, first, b.Add("a"))
	assert.True(t, b.Add("a").Config().Sticky)
}

func TestBuilder_Hooks(t *testing.T) {
	var calls []string
	hook := func(name string) domain.HookFunc {
		return func(context.Context, domain.Params) error {
			calls = append(calls, name)
			return nil
		}
	}

	b := New()
	b.Add("a").
		OnEnter(hook("enter")).
		OnExit(hook("exit")).
		OnInactivate(hook("inactivate")).
		OnReactivate(hook("reactivate"))

	cfg := b.Add("a").Config()
	ctx := context.Background()
	require.NoError(t, cfg.Lifecycle.OnEnter(ctx, nil))
	require.NoError(t, cfg.Lifecycle.OnInactivate(ctx, nil))
	require.NoError(t, cfg.Lifecycle.OnReactivate(ctx, nil))
	require.NoError(t, cfg.Lifecycle.OnExit(ctx, nil))
	assert.Equal(t, []string{"enter", "inactivate", "reactivate", "exit"}, calls)
}

func TestBuilder_ExplicitParent(t *testing.T) {
	b := New()
	b.Add("modal").Parent("app")
	b.Add("app")

	tr, err := b.Build()
	require.NoError(t, err)
	modal, _ := tr.Get("modal")
	assert.Equal(t, "app", modal.Parent.Name)
}

func TestBuilder_MissingParent(t *testing.T) {
	b := New()
	b.Add("a.b")

	_, err := b.Build()
	var regErr *domain.RegistrationError
	assert.ErrorAs(t, err, &regErr)
}
