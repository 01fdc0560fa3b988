package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mailTree = `
name: mail
states:
  - name: inbox
    sticky: true
    params: [folder]
    views:
      main: inbox.html
    children:
      - name: message
        params: [id]
        views:
          main: message.html
  - name: settings.profile
  - name: settings
    sticky: deep
  - name: compose
    sticky: "false"
`

func TestLoad(t *testing.T) {
	tr, err := loader.New().Load([]byte(mailTree))
	require.NoError(t, err)

	inbox, ok := tr.Get("inbox")
	require.True(t, ok)
	assert.True(t, inbox.Sticky)
	assert.Equal(t, []string{"folder"}, inbox.Params)

	msg, ok := tr.Get("inbox.message")
	require.True(t, ok)
	assert.Same(t, inbox, msg.Parent)
	assert.False(t, msg.IsSticky())

	profile, ok := tr.Get("settings.profile")
	require.True(t, ok, "child declared before its parent")
	assert.True(t, profile.IsSticky(), "deep sticky propagates")

	compose, ok := tr.Get("compose")
	require.True(t, ok)
	assert.False(t, compose.IsSticky())
}

func TestLoad_TemplateViews(t *testing.T) {
	tr, err := loader.New().Load([]byte(mailTree))
	require.NoError(t, err)

	msg, _ := tr.Get("inbox.message")
	v, err := msg.Views["main"](context.Background(), domain.Params{"id": "1"})
	require.NoError(t, err)

	view, ok := v.(*domain.View)
	require.True(t, ok)
	assert.Equal(t, "message.html", view.Template)
	assert.Equal(t, "inbox.message", view.State)
	assert.Equal(t, "1", view.Params["id"])
}

func TestLoad_Lifecycle(t *testing.T) {
	var entered []string
	l := loader.New(loader.WithLifecycle(func(name string) domain.Lifecycle {
		return domain.Lifecycle{
			OnEnter: func(context.Context, domain.Params) error {
				entered = append(entered, name)
				return nil
			},
		}
	}))
	tr, err := l.Load([]byte(mailTree))
	require.NoError(t, err)

	s, _ := tr.Get("compose")
	require.NotNil(t, s.Lifecycle.OnEnter)
	require.NoError(t, s.Lifecycle.OnEnter(context.Background(), nil))
	assert.Equal(t, []string{"compose"}, entered)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", "states: ["},
		{"unknown key", "states:\n  - name: a\n    colour: red\n"},
		{"bad sticky", "states:\n  - name: a\n    sticky: sometimes\n"},
		{"missing parent", "states:\n  - name: a.b\n"},
		{"duplicate", "states:\n  - name: a\n  - name: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.New().Load([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingParentIsRegistrationError(t *testing.T) {
	_, err := loader.New().Load([]byte("states:\n  - name: a.b\n"))
	var regErr *domain.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "a.b", regErr.Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mailTree), 0o644))

	tr, err := loader.New().LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, tr.States(), 5)

	_, err = loader.New().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseScript(t *testing.T) {
	script, err := loader.ParseScript([]byte(`
steps:
  - to: inbox.message
    params: {id: "1"}
  - to: settings
  - to: inbox
    reload_from: inbox
  - reset: "*"
`))
	require.NoError(t, err)
	require.Len(t, script.Steps, 4)
	assert.Equal(t, "1", script.Steps[0].Params["id"])
	assert.Equal(t, "inbox", script.Steps[2].Options().ReloadFrom)
	assert.Equal(t, "*", script.Steps[3].Reset)

	_, err = loader.ParseScript([]byte("steps:\n  - {}\n"))
	assert.Error(t, err)
}
