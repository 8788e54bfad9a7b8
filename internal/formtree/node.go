// Package formtree provides the path-addressed tree that backs a form
// registry. Interior nodes are groups of named children; leaves are opaque
// controls owned by the caller.
package formtree

// Kind identifies which variant a Node holds.
type Kind int

const (
	// KindInvalid is the kind of the zero Node.
	KindInvalid Kind = iota
	KindGroup
	KindControl
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindControl:
		return "control"
	default:
		return "invalid"
	}
}

// Control is an externally owned input control. The tree stores it as-is and
// never inspects or mutates it.
type Control any

// Node is either a *Group or a Control. Build one with GroupNode or
// ControlNode and match on Kind.
type Node struct {
	kind    Kind
	group   *Group
	control Control
}

// GroupNode wraps g as a Node. A nil group yields the zero Node.
func GroupNode(g *Group) Node {
	if g == nil {
		return Node{}
	}
	return Node{kind: KindGroup, group: g}
}

// ControlNode wraps c as a Node. A nil control yields the zero Node.
func ControlNode(c Control) Node {
	if c == nil {
		return Node{}
	}
	return Node{kind: KindControl, control: c}
}

// Kind returns the variant held by n.
func (n Node) Kind() Kind {
	return n.kind
}

// IsZero reports whether n holds neither a group nor a control.
func (n Node) IsZero() bool {
	return n.kind == KindInvalid
}

// Group returns the group held by n.
func (n Node) Group() (*Group, bool) {
	if n.kind != KindGroup {
		return nil, false
	}
	return n.group, true
}

// Control returns the control held by n.
func (n Node) Control() (Control, bool) {
	if n.kind != KindControl {
		return nil, false
	}
	return n.control, true
}

// Same reports whether n and other hold the identical group or control.
// Groups compare by pointer; controls compare with ==, so controls of
// uncomparable dynamic types are never Same.
func (n Node) Same(other Node) bool {
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindGroup:
		return n.group == other.group
	case KindControl:
		return sameControl(n.control, other.control)
	default:
		return true
	}
}

func sameControl(a, b Control) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
