package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/formtree/internal/session"
)

const signupLayout = `
forms:
  - name: signup
    fields:
      - name: email
        type: email
elements:
  - parent: signup.address
    name: zip
  - parent: signup
    name: address
    group: true
  - parent: billing
    name: card
`

func writeLayout(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInspect_PrintsEventsTreeAndSummary(t *testing.T) {
	path := writeLayout(t, signupLayout)
	manager := session.NewManager()
	t.Cleanup(manager.CloseAll)

	var out bytes.Buffer
	require.NoError(t, inspect(context.Background(), &out, manager, path, inspectOptions{events: true}))

	got := out.String()
	require.Contains(t, got, ""+
		"  root_registered    signup\n"+
		"  element_registered signup.address (group)\n"+
		"  element_registered signup.address.zip (control)\n")
	require.Contains(t, got, ""+
		"└─ signup\n"+
		"   ├─ email  email\n"+
		"   └─ address\n"+
		"      └─ zip  text\n")
	require.Contains(t, got, "1 forms, 2 attached, 0 skipped, 1 unattached\n")
	require.Contains(t, got, `unattached card: parent "billing" never registered`)
}

func TestInspect_ReopensSession(t *testing.T) {
	path := writeLayout(t, signupLayout)
	manager := session.NewManager()
	t.Cleanup(manager.CloseAll)

	var out bytes.Buffer
	require.NoError(t, inspect(context.Background(), &out, manager, path, inspectOptions{}))
	first, ok := manager.Get(inspectScreen)
	require.True(t, ok)

	require.NoError(t, inspect(context.Background(), &out, manager, path, inspectOptions{}))
	second, ok := manager.Get(inspectScreen)
	require.True(t, ok)

	require.True(t, first.Registry.Closed())
	require.NotSame(t, first.Registry, second.Registry)
	require.False(t, second.Registry.Closed())
	require.Equal(t, 1, manager.Count())
}

func TestInspect_InvalidLayout(t *testing.T) {
	path := writeLayout(t, "forms:\n  - name: a.b\n")
	manager := session.NewManager()

	var out bytes.Buffer
	require.Error(t, inspect(context.Background(), &out, manager, path, inspectOptions{}))
	require.Equal(t, 0, manager.Count())
}

func TestInspect_MissingFile(t *testing.T) {
	manager := session.NewManager()
	var out bytes.Buffer
	err := inspect(context.Background(), &out, manager, filepath.Join(t.TempDir(), "nope.yaml"), inspectOptions{})
	require.Error(t, err)
}
