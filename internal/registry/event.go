package registry

import (
	"time"

	"github.com/zjrosen/formtree/internal/formtree"
)

// EventKind identifies the structural change an Event announces.
type EventKind string

const (
	// RootRegistered is published after RegisterRoot stores a subtree.
	RootRegistered EventKind = "root_registered"
	// ElementRegistered is published after RegisterElement inserts a node.
	ElementRegistered EventKind = "element_registered"
)

// Event describes one committed registration. Events are values; handlers
// receive their own copy.
type Event struct {
	Kind EventKind
	// Path is the root name for RootRegistered and "<parent>.<child>" for
	// ElementRegistered.
	Path string
	// Node is the inserted node for ElementRegistered and the zero Node for
	// RootRegistered.
	Node      formtree.Node
	SessionID string
	Timestamp time.Time
}

// Handler receives registry events.
type Handler = func(Event) error
