// Package registry is the public face of a form tree: components register
// root forms and nested elements by dotted path, and every committed
// registration is announced on an ordered event channel.
//
// A Registry belongs to exactly one session (one screen or view lifecycle).
// Create it with New when the session starts and Close it when the session
// ends; never share one across sessions.
//
// Registrations that race ahead of their parent are dropped, not queued.
// A component that needs to attach below path P subscribes first and
// registers once an event establishes P; OnAvailable packages that pattern.
//
// A Registry is not safe for concurrent use. Event handlers run on the
// registering goroutine and may call back into the Registry. A registration
// made from a handler mutates the tree at once, but its event is delivered
// after the current event has reached every subscriber, so all subscribers
// observe events in registration call order.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/formtree/internal/cachemanager"
	"github.com/zjrosen/formtree/internal/formtree"
	"github.com/zjrosen/formtree/internal/log"
	"github.com/zjrosen/formtree/internal/pubsub"
	"github.com/zjrosen/formtree/internal/tracing"
)

// Registry errors
var (
	// ErrInvalidPath reports malformed caller input: empty or dotted names,
	// paths with empty segments, nil groups and zero nodes.
	ErrInvalidPath = formtree.ErrInvalidPath
	// ErrClosed is returned by registrations on a closed Registry.
	ErrClosed = errors.New("registry is closed")
)

// Registry owns one form tree and its event channel.
type Registry struct {
	sessionID string
	tree      *formtree.Tree
	events    *pubsub.Channel[Event]
	pathCache cachemanager.CacheManager[string, formtree.Path]
	paths     *cachemanager.ReadThroughCache[string, formtree.Path, string]
	tracer    trace.Tracer
	ownsCache bool
	closed    bool
}

// New creates an empty Registry with its own tree and event channel.
func New(opts ...Option) *Registry {
	r := &Registry{
		sessionID: uuid.NewString(),
		tree:      formtree.New(),
		tracer:    noop.NewTracerProvider().Tracer("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pathCache == nil {
		r.ownsCache = true
		r.pathCache = cachemanager.NewInMemoryCacheManager[string, formtree.Path](
			"paths:"+r.sessionID, cachemanager.NoExpiration, cachemanager.NoExpiration)
	}
	r.paths = cachemanager.NewReadThroughCache[string, formtree.Path, string](r.pathCache, formtree.ParsePath, false)
	r.events = pubsub.NewChannel[Event]("registry:" + r.sessionID)

	log.Debug(log.CatRegistry, "Registry created", "session", r.sessionID)
	return r
}

// SessionID returns the identifier stamped on this registry's events.
func (r *Registry) SessionID() string {
	return r.sessionID
}

// RegisterRoot stores group under name at the top level, replacing any
// subtree previously registered under that name, then publishes
// RootRegistered. name must be non-empty and must not contain a dot.
func (r *Registry) RegisterRoot(name string, group *formtree.Group) error {
	return r.RegisterRootContext(context.Background(), name, group)
}

// RegisterRootContext is RegisterRoot with its span parented to the span in
// ctx.
func (r *Registry) RegisterRootContext(ctx context.Context, name string, group *formtree.Group) error {
	_, span := r.tracer.Start(ctx, tracing.SpanRegisterRoot, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, r.sessionID),
		attribute.String(tracing.AttrFormPath, name),
	))
	defer span.End()

	if r.closed {
		failSpan(span, tracing.OutcomeClosed, ErrClosed)
		return ErrClosed
	}
	if err := formtree.ValidateName(name); err != nil {
		failSpan(span, tracing.OutcomeInvalid, err)
		return fmt.Errorf("register root: %w", err)
	}
	if group == nil {
		err := fmt.Errorf("register root %q: %w: group is nil", name, ErrInvalidPath)
		failSpan(span, tracing.OutcomeInvalid, err)
		return err
	}

	outcome := tracing.OutcomeRegistered
	if r.tree.Root().Contains(name) {
		outcome = tracing.OutcomeReplaced
	}
	r.tree.SetRootChild(name, group)
	span.SetAttributes(attribute.String(tracing.AttrOutcome, outcome))

	log.Debug(log.CatRegistry, "Root registered",
		"session", r.sessionID,
		"path", name,
		"outcome", outcome)

	r.publish(span, Event{Kind: RootRegistered, Path: name})
	return nil
}

// RegisterElement inserts node as childName below the group at parentPath
// and publishes ElementRegistered.
//
// A parent that does not resolve to a group makes the call a no-op: the
// registration is dropped, logged and traced, and nil is returned. A
// childName already present under the parent is also a no-op, so repeated
// registrations are idempotent. Only malformed input returns an error
// (ErrInvalidPath).
func (r *Registry) RegisterElement(parentPath, childName string, node formtree.Node) error {
	return r.RegisterElementContext(context.Background(), parentPath, childName, node)
}

// RegisterElementContext is RegisterElement with its span parented to the
// span in ctx.
func (r *Registry) RegisterElementContext(ctx context.Context, parentPath, childName string, node formtree.Node) error {
	_, span := r.tracer.Start(ctx, tracing.SpanRegisterElement, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, r.sessionID),
		attribute.String(tracing.AttrFormParent, parentPath),
		attribute.String(tracing.AttrFormChild, childName),
		attribute.String(tracing.AttrNodeKind, node.Kind().String()),
	))
	defer span.End()

	if r.closed {
		failSpan(span, tracing.OutcomeClosed, ErrClosed)
		return ErrClosed
	}
	if err := formtree.ValidateName(childName); err != nil {
		failSpan(span, tracing.OutcomeInvalid, err)
		return fmt.Errorf("register element under %q: %w", parentPath, err)
	}
	if node.IsZero() {
		err := fmt.Errorf("register element %q under %q: %w: node is empty", childName, parentPath, ErrInvalidPath)
		failSpan(span, tracing.OutcomeInvalid, err)
		return err
	}
	parent, err := r.parse(parentPath)
	if err != nil {
		failSpan(span, tracing.OutcomeInvalid, err)
		return fmt.Errorf("register element %q: %w", childName, err)
	}

	group, ok := r.tree.ResolveGroup(parent)
	if !ok {
		span.SetAttributes(attribute.String(tracing.AttrOutcome, tracing.OutcomeNoParent))
		span.AddEvent(tracing.EventRegistrationDropped)
		log.Warn(log.CatRegistry, "Registration dropped: parent group not registered",
			"session", r.sessionID,
			"parent", parentPath,
			"child", childName)
		return nil
	}

	if !r.tree.AddChild(group, childName, node) {
		span.SetAttributes(attribute.String(tracing.AttrOutcome, tracing.OutcomeDuplicate))
		log.Debug(log.CatRegistry, "Element already registered",
			"session", r.sessionID,
			"parent", parentPath,
			"child", childName)
		return nil
	}

	path := parent.Child(childName).String()
	span.SetAttributes(
		attribute.String(tracing.AttrOutcome, tracing.OutcomeRegistered),
		attribute.String(tracing.AttrFormPath, path),
	)
	log.Debug(log.CatRegistry, "Element registered",
		"session", r.sessionID,
		"path", path,
		"kind", node.Kind())

	r.publish(span, Event{Kind: ElementRegistered, Path: path, Node: node})
	return nil
}

// Get returns the node at path. A miss, including a malformed path or a
// closed registry, reports false rather than an error.
func (r *Registry) Get(path string) (formtree.Node, bool) {
	if r.closed {
		return formtree.Node{}, false
	}
	p, err := r.lookup(path)
	if err != nil {
		log.Debug(log.CatTree, "Lookup with malformed path", "session", r.sessionID, "path", path, "error", err)
		return formtree.Node{}, false
	}
	return r.tree.Resolve(p)
}

// Group returns the group at path. It reports false when nothing is
// registered there, when the node is a control or when the registry is
// closed.
func (r *Registry) Group(path string) (*formtree.Group, bool) {
	if r.closed {
		return nil, false
	}
	p, err := r.lookup(path)
	if err != nil {
		log.Debug(log.CatTree, "Lookup with malformed path", "session", r.sessionID, "path", path, "error", err)
		return nil, false
	}
	return r.tree.ResolveGroup(p)
}

// Root returns the live root group. The registry never copies on read:
// callers observe every later registration through the returned handle.
// After Close it returns an empty group detached from any session.
func (r *Registry) Root() *formtree.Group {
	return r.tree.Root()
}

// Paths lists every registered path depth-first in registration order.
func (r *Registry) Paths() []string {
	paths := r.tree.Paths()
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

// Subscribe delivers every event published from now on to handler. Events
// published before the call are not replayed.
func (r *Registry) Subscribe(handler Handler) *pubsub.Subscription {
	return r.events.Subscribe(handler)
}

// Events exposes the underlying channel, e.g. for pubsub.NewContinuousListener.
func (r *Registry) Events() *pubsub.Channel[Event] {
	return r.events
}

// Subscribers returns the number of active subscriptions.
func (r *Registry) Subscribers() int {
	return r.events.Len()
}

// OnAvailable runs fn with the group at path as soon as that group exists.
//
// If the group is already registered, fn runs immediately and the returned
// subscription is nil. Otherwise OnAvailable subscribes and waits for the
// first event at path or at one of its ancestors after which path resolves
// to a group; it then unsubscribes and runs fn. Cancel the wait by
// unsubscribing the returned subscription.
func (r *Registry) OnAvailable(path string, fn func(*formtree.Group)) (*pubsub.Subscription, error) {
	if r.closed {
		return nil, ErrClosed
	}
	target, err := r.parse(path)
	if err != nil {
		return nil, fmt.Errorf("wait for %q: %w", path, err)
	}
	if fn == nil {
		return nil, fmt.Errorf("wait for %q: %w: callback is nil", path, ErrInvalidPath)
	}
	if group, ok := r.tree.ResolveGroup(target); ok {
		fn(group)
		return nil, nil
	}

	var sub *pubsub.Subscription
	sub = r.events.Subscribe(func(ev Event) error {
		established, err := r.parse(ev.Path)
		if err != nil || !target.HasPrefix(established) {
			return nil
		}
		group, ok := r.tree.ResolveGroup(target)
		if !ok {
			return nil
		}
		sub.Unsubscribe()
		fn(group)
		return nil
	})
	return sub, nil
}

// Close ends the session: every subscription is cancelled, the tree is
// discarded and later registrations fail with ErrClosed. Close is
// idempotent.
func (r *Registry) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.events.Close()
	r.tree = formtree.New()
	if r.ownsCache {
		r.pathCache.Flush()
	}
	log.Debug(log.CatRegistry, "Registry closed", "session", r.sessionID)
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	return r.closed
}

// parse resolves registration and wait paths through the cache. Only these
// are cached: they come from code, so the set of distinct strings is small.
func (r *Registry) parse(path string) (formtree.Path, error) {
	return r.paths.Get(path, path, cachemanager.NoExpiration)
}

// lookup parses a path for Get and Group. Lookups reuse cached paths but do
// not add to the cache, since speculative lookups are unbounded.
func (r *Registry) lookup(path string) (formtree.Path, error) {
	if p, ok := r.pathCache.Get(path); ok {
		return p, nil
	}
	return formtree.ParsePath(path)
}

func (r *Registry) publish(span trace.Span, ev Event) {
	ev.SessionID = r.sessionID
	ev.Timestamp = time.Now()
	span.AddEvent(tracing.EventPublished, trace.WithAttributes(
		attribute.Int(tracing.AttrSubscribers, r.events.Len()),
	))
	r.events.Publish(ev)
}

func failSpan(span trace.Span, outcome string, err error) {
	span.SetAttributes(
		attribute.String(tracing.AttrOutcome, outcome),
		attribute.String(tracing.AttrErrorMessage, err.Error()),
	)
	span.SetStatus(codes.Error, err.Error())
}
