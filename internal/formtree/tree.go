package formtree

// Tree is a single root Group addressed by dotted paths. The root is always a
// Group. Tree is not safe for concurrent use.
type Tree struct {
	root *Group
}

// New returns a tree with an empty root.
func New() *Tree {
	return &Tree{root: NewGroup()}
}

// Root returns the live root group.
func (t *Tree) Root() *Group {
	return t.root
}

// Resolve walks p from the root, one child lookup per segment. It fails when
// a segment is missing or when the walk would descend through a control.
// The root path resolves to the root group.
func (t *Tree) Resolve(p Path) (Node, bool) {
	current := GroupNode(t.root)
	for _, seg := range p {
		group, ok := current.Group()
		if !ok {
			return Node{}, false
		}
		current, ok = group.Get(seg)
		if !ok {
			return Node{}, false
		}
	}
	return current, true
}

// ResolveGroup is Resolve restricted to nodes that are groups, i.e. legal
// insertion points.
func (t *Tree) ResolveGroup(p Path) (*Group, bool) {
	node, ok := t.Resolve(p)
	if !ok {
		return nil, false
	}
	return node.Group()
}

// SetRootChild stores g under name at the root, replacing any prior subtree.
func (t *Tree) SetRootChild(name string, g *Group) {
	t.root.Set(name, GroupNode(g))
}

// AddChild inserts node under name in g if the name is free. A false return
// means the name was taken and nothing changed; it is not an error.
func (t *Tree) AddChild(g *Group, name string, node Node) bool {
	return g.Add(name, node)
}

// Paths lists every node path below the root, depth-first in insertion order.
func (t *Tree) Paths() []Path {
	var out []Path
	t.root.Walk(func(p Path, _ Node) bool {
		out = append(out, p)
		return true
	})
	return out
}
