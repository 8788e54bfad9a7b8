package formview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/formtree/internal/formtree"
	"github.com/zjrosen/formtree/internal/registry"
)

type describedControl struct{ kind string }

func (d describedControl) Describe() string { return d.kind }

type stringControl struct{}

func (stringControl) String() string { return "stringer" }

func TestView_Tree(t *testing.T) {
	root := formtree.NewGroup()
	profile := formtree.NewGroup()
	address := formtree.NewGroup()
	root.Add("profile", formtree.GroupNode(profile))
	profile.Add("email", formtree.ControlNode(describedControl{kind: "email"}))
	profile.Add("address", formtree.GroupNode(address))
	address.Add("zip", formtree.ControlNode(describedControl{kind: "text"}))
	root.Add("empty", formtree.GroupNode(formtree.NewGroup()))

	got := New(&bytes.Buffer{}).Tree(root)

	want := "" +
		"├─ profile\n" +
		"│  ├─ email  email\n" +
		"│  └─ address\n" +
		"│     └─ zip  text\n" +
		"└─ empty\n"
	require.Equal(t, want, got)
}

func TestView_TreeMarksCycles(t *testing.T) {
	root := formtree.NewGroup()
	loop := formtree.NewGroup()
	root.Add("loop", formtree.GroupNode(loop))
	loop.Add("again", formtree.GroupNode(loop))

	got := New(&bytes.Buffer{}).Tree(root)

	require.Equal(t, "└─ loop\n   └─ again (cycle)\n", got)
}

func TestView_Event(t *testing.T) {
	v := New(&bytes.Buffer{})

	root := v.Event(registry.Event{Kind: registry.RootRegistered, Path: "profile"})
	require.Equal(t, "root_registered    profile", root)

	el := v.Event(registry.Event{
		Kind: registry.ElementRegistered,
		Path: "profile.address",
		Node: formtree.GroupNode(formtree.NewGroup()),
	})
	require.Equal(t, "element_registered profile.address (group)", el)
}

func TestDescribe(t *testing.T) {
	require.Equal(t, "", Describe(nil))
	require.Equal(t, "email", Describe(describedControl{kind: "email"}))
	require.Equal(t, "stringer", Describe(stringControl{}))
	require.Equal(t, "int", Describe(42))
}
