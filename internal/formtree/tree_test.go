package formtree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type textInput struct {
	value string
}

func TestTree_ResolveEmptyPathIsRoot(t *testing.T) {
	tree := New()

	node, ok := tree.Resolve(Path{})
	require.True(t, ok)
	g, ok := node.Group()
	require.True(t, ok)
	require.Same(t, tree.Root(), g)
}

func TestTree_ResolveNested(t *testing.T) {
	tree := New()
	form := NewGroup()
	address := NewGroup()
	zip := &textInput{value: "90210"}

	tree.SetRootChild("profile", form)
	require.True(t, tree.AddChild(form, "address", GroupNode(address)))
	require.True(t, tree.AddChild(address, "zip", ControlNode(zip)))

	node, ok := tree.Resolve(MustParsePath("profile.address.zip"))
	require.True(t, ok)
	c, ok := node.Control()
	require.True(t, ok)
	require.Same(t, zip, c)

	g, ok := tree.ResolveGroup(MustParsePath("profile.address"))
	require.True(t, ok)
	require.Same(t, address, g)
}

func TestTree_ResolveMissingSegment(t *testing.T) {
	tree := New()
	tree.SetRootChild("profile", NewGroup())

	_, ok := tree.Resolve(MustParsePath("profile.missing"))
	require.False(t, ok)
	_, ok = tree.Resolve(MustParsePath("nope"))
	require.False(t, ok)
}

func TestTree_ResolveThroughControlFails(t *testing.T) {
	tree := New()
	form := NewGroup()
	tree.SetRootChild("f", form)
	form.Add("name", ControlNode(&textInput{}))

	_, ok := tree.Resolve(MustParsePath("f.name.inner"))
	require.False(t, ok, "must not descend through a control")
}

func TestTree_ResolveGroupRejectsControl(t *testing.T) {
	tree := New()
	form := NewGroup()
	tree.SetRootChild("f", form)
	form.Add("name", ControlNode(&textInput{}))

	_, ok := tree.ResolveGroup(MustParsePath("f.name"))
	require.False(t, ok)
}

func TestTree_SetRootChildOverwrites(t *testing.T) {
	tree := New()
	first := NewGroup()
	second := NewGroup()

	tree.SetRootChild("r", first)
	tree.SetRootChild("r", second)

	g, ok := tree.ResolveGroup(MustParsePath("r"))
	require.True(t, ok)
	require.Same(t, second, g)
	require.Equal(t, 1, tree.Root().Len())
}

func TestTree_AddChildIsAddIfAbsent(t *testing.T) {
	tree := New()
	form := NewGroup()
	original := &textInput{value: "a"}

	require.True(t, tree.AddChild(form, "x", ControlNode(original)))
	require.False(t, tree.AddChild(form, "x", ControlNode(&textInput{value: "b"})))

	node, _ := form.Get("x")
	c, _ := node.Control()
	require.Same(t, original, c)
}

func TestTree_PathsDepthFirstInsertionOrder(t *testing.T) {
	tree := New()
	a := NewGroup()
	b := NewGroup()
	tree.SetRootChild("a", a)
	a.Add("z", ControlNode(1))
	a.Add("b", GroupNode(b))
	b.Add("c", ControlNode(2))
	tree.SetRootChild("d", NewGroup())

	var got []string
	for _, p := range tree.Paths() {
		got = append(got, p.String())
	}
	require.Equal(t, []string{"a", "a.z", "a.b", "a.b.c", "d"}, got)
}

func TestGroup_WalkSurvivesCycles(t *testing.T) {
	g := NewGroup()
	g.Add("self", GroupNode(g))

	visited := 0
	g.Walk(func(Path, Node) bool {
		visited++
		return true
	})
	require.Equal(t, 1, visited)
}

func TestTree_AddedNodesResolve(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := New()
		root := NewGroup()
		tree.SetRootChild("root", root)

		groups := []Path{MustParsePath("root")}
		n := rapid.IntRange(1, 30).Draw(t, "n")
		for i := 0; i < n; i++ {
			parent := groups[rapid.IntRange(0, len(groups)-1).Draw(t, "parent")]
			name := rapid.StringMatching(`[a-z]{1,3}`).Draw(t, "name")
			pg, ok := tree.ResolveGroup(parent)
			if !ok {
				t.Fatalf("group %s vanished", parent)
			}
			isGroup := rapid.Bool().Draw(t, "isGroup")
			node := ControlNode(i)
			if isGroup {
				node = GroupNode(NewGroup())
			}
			if tree.AddChild(pg, name, node) && isGroup {
				groups = append(groups, parent.Child(name))
			}

			child := parent.Child(name)
			got, ok := tree.Resolve(child)
			if !ok {
				t.Fatalf("%s does not resolve after insertion", child)
			}
			if got.IsZero() {
				t.Fatalf("%s resolved to the zero node", child)
			}
		}
	})
}
