package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/sticky/internal/cli"
	"github.com/aretw0/sticky/internal/presentation/tui"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeYAML = `
states:
  - name: inbox
    sticky: true
    children:
      - name: message
        params: [id]
  - name: contacts
`

func newSession(t *testing.T) *cli.Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(treeYAML), 0o644))
	s, err := cli.NewSession(cli.Options{TreeFile: path})
	require.NoError(t, err)
	return s
}

func TestSession_Apply(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	_, err := s.Apply(ctx, loader.Step{To: "inbox.message", Params: map[string]any{"id": "1"}})
	require.NoError(t, err)

	report, err := s.Apply(ctx, loader.Step{To: "contacts"})
	require.NoError(t, err)
	require.NoError(t, report.Err)

	assert.Equal(t, "inbox.message", report.From)
	assert.Equal(t, domain.ClassInactivate, report.Classifications["inbox"])
	assert.Equal(t, domain.ClassExit, report.Classifications["inbox.message"])
	assert.Equal(t, domain.ClassEnter, report.Classifications["contacts"])
	assert.Equal(t, []string{"inbox"}, report.Inactive)
	assert.NotEmpty(t, report.Steps)
	require.NotNil(t, report.Diff)
	assert.Equal(t, []string{"inbox"}, report.Diff.Inactivated)
}

func TestSession_ApplyFailureIsReported(t *testing.T) {
	s := newSession(t)

	report, err := s.Apply(context.Background(), loader.Step{To: "nowhere"})
	require.NoError(t, err)
	assert.ErrorIs(t, report.Err, domain.ErrStateNotFound)
	assert.Empty(t, report.Classifications)
}

func TestSession_Run(t *testing.T) {
	s := newSession(t)
	script, err := loader.ParseScript([]byte(`
steps:
  - to: inbox
  - to: contacts
  - to: nowhere
  - reset: inbox
`))
	require.NoError(t, err)

	var buf bytes.Buffer
	failed, err := s.Run(context.Background(), script, &buf, tui.Plain)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	out := buf.String()
	assert.Contains(t, out, "## 1. (root) → inbox")
	assert.Contains(t, out, "## 2. inbox → contacts")
	assert.Contains(t, out, "**failed:**")
	assert.Contains(t, out, "## 4. reset inbox")
	assert.Empty(t, s.Engine.InactiveStates())
}

func TestSession_RunCancelled(t *testing.T) {
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	script := &loader.Script{Steps: []loader.Step{{To: "inbox"}}}
	_, err := s.Run(ctx, script, &bytes.Buffer{}, tui.Plain)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSession_RequiresFile(t *testing.T) {
	_, err := cli.NewSession(cli.Options{})
	assert.Error(t, err)
}
