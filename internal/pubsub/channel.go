// Package pubsub provides a synchronous, ordered publish/subscribe channel.
//
// Events are delivered on the publisher's goroutine, one subscriber after
// another in subscription order. Nothing is replayed: a subscriber only sees
// events published while it is subscribed.
//
// A Publish made from inside a handler is queued and delivered once the
// current event has reached every subscriber. All subscribers therefore see
// events in the order Publish was called, even when handlers publish.
package pubsub

import (
	"fmt"

	"github.com/zjrosen/formtree/internal/log"
)

// Handler receives published events. A returned error is logged and does
// not affect delivery to other subscribers.
type Handler[T any] func(event T) error

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id     uint64
	active bool
	remove func(*Subscription)
}

// ID returns the subscription's sequence number within its channel.
func (s *Subscription) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool {
	return s != nil && s.active
}

// Unsubscribe stops delivery to this subscription. Calling it more than once
// is safe.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	if s.remove != nil {
		s.remove(s)
	}
}

type subscriber[T any] struct {
	sub     *Subscription
	handler Handler[T]
}

// delivery is a published event with the subscribers active at Publish time.
type delivery[T any] struct {
	event T
	subs  []subscriber[T]
}

// Channel is a multicast event channel. It is not safe for concurrent use;
// handlers may call Publish, Subscribe and Unsubscribe re-entrantly.
type Channel[T any] struct {
	name       string
	subs       []subscriber[T]
	nextID     uint64
	closed     bool
	queue      []delivery[T]
	delivering bool
}

// NewChannel creates an empty channel. name only appears in log output.
func NewChannel[T any](name string) *Channel[T] {
	return &Channel[T]{name: name}
}

// Subscribe registers handler for every event published from now on.
// Subscribing to a closed channel returns an inactive subscription.
func (c *Channel[T]) Subscribe(handler Handler[T]) *Subscription {
	c.nextID++
	sub := &Subscription{id: c.nextID}
	if c.closed || handler == nil {
		return sub
	}
	sub.active = true
	sub.remove = c.remove
	c.subs = append(c.subs, subscriber[T]{sub: sub, handler: handler})
	return sub
}

// Unsubscribe is shorthand for sub.Unsubscribe.
func (c *Channel[T]) Unsubscribe(sub *Subscription) {
	sub.Unsubscribe()
}

func (c *Channel[T]) remove(sub *Subscription) {
	for i, s := range c.subs {
		if s.sub == sub {
			// Copy rather than shift in place: a Publish in progress may be
			// iterating over the old slice.
			next := make([]subscriber[T], 0, len(c.subs)-1)
			next = append(next, c.subs[:i]...)
			c.subs = append(next, c.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers event to the current subscribers in subscription order.
// Called from a handler, it queues event behind the one being delivered and
// returns immediately. Subscribers added after Publish miss the event;
// subscribers removed before their turn are skipped.
func (c *Channel[T]) Publish(event T) {
	if c.closed {
		return
	}
	c.queue = append(c.queue, delivery[T]{event: event, subs: c.subs})
	if c.delivering {
		return
	}

	c.delivering = true
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		for _, s := range next.subs {
			if !s.sub.active {
				continue
			}
			c.deliver(s, next.event)
		}
	}
	c.queue = nil
	c.delivering = false
}

func (c *Channel[T]) deliver(s subscriber[T], event T) {
	defer func() {
		if r := recover(); r != nil {
			log.Panic(log.CatEvents, "Subscriber panic recovered", r,
				"channel", c.name,
				"subscription", s.sub.id)
		}
	}()
	if err := s.handler(event); err != nil {
		log.ErrorErr(log.CatEvents, "Subscriber failed", err,
			"channel", c.name,
			"subscription", s.sub.id,
			"event", fmt.Sprintf("%T", event))
	}
}

// Len returns the number of active subscribers.
func (c *Channel[T]) Len() int {
	return len(c.subs)
}

// Close deactivates every subscription. Later publishes are dropped and
// later subscriptions are inactive. Calling Close more than once is safe.
func (c *Channel[T]) Close() {
	if c.closed {
		return
	}
	c.closed = true
	for _, s := range c.subs {
		s.sub.active = false
	}
	c.subs = nil
	c.queue = nil
}
