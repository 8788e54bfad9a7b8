package formtree

// Group is an interior node holding uniquely named children in insertion
// order. A Group is a shared, mutable handle: every holder sees later
// additions made through the registry or directly.
type Group struct {
	names    []string
	children map[string]Node
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{children: make(map[string]Node)}
}

// Get returns the child stored under name.
func (g *Group) Get(name string) (Node, bool) {
	n, ok := g.children[name]
	return n, ok
}

// Contains reports whether a child named name exists.
func (g *Group) Contains(name string) bool {
	_, ok := g.children[name]
	return ok
}

// Add inserts node under name if the name is free. It returns false, leaving
// the group untouched, when the name is already taken or node is zero.
func (g *Group) Add(name string, node Node) bool {
	if node.IsZero() || g.Contains(name) {
		return false
	}
	g.children[name] = node
	g.names = append(g.names, name)
	return true
}

// Set stores node under name, replacing any previous child. The replaced
// child keeps its original position in the enumeration order.
func (g *Group) Set(name string, node Node) {
	if node.IsZero() {
		return
	}
	if !g.Contains(name) {
		g.names = append(g.names, name)
	}
	g.children[name] = node
}

// Names returns the child names in insertion order.
func (g *Group) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Len returns the number of children.
func (g *Group) Len() int {
	return len(g.names)
}

// WalkFunc is called for every node visited by Walk. Returning false skips
// the node's descendants.
type WalkFunc func(path Path, node Node) bool

// Walk visits every descendant of g depth-first in insertion order. Paths are
// relative to g. A group reachable from itself is visited once.
func (g *Group) Walk(fn WalkFunc) {
	g.walk(nil, fn, map[*Group]struct{}{g: {}})
}

func (g *Group) walk(prefix Path, fn WalkFunc, seen map[*Group]struct{}) {
	for _, name := range g.names {
		node := g.children[name]
		path := prefix.Child(name)
		if !fn(path, node) {
			continue
		}
		child, ok := node.Group()
		if !ok {
			continue
		}
		if _, dup := seen[child]; dup {
			continue
		}
		seen[child] = struct{}{}
		child.walk(path, fn, seen)
	}
}
