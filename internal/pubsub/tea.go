package pubsub

import (
	tea "github.com/charmbracelet/bubbletea"
)

const defaultBufferSize = 64

// ListenCmd creates a Bubble Tea command that waits for the next event on ch.
// Returns nil once the channel is closed.
func ListenCmd[T any](ch <-chan T) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil // Channel closed
		}
		return event
	}
}

// ContinuousListener bridges a synchronous Channel into the Bubble Tea update
// loop. Events are copied into a bounded buffer on the publisher's goroutine
// and handed out one per Listen command.
type ContinuousListener[T any] struct {
	sub    *Subscription
	ch     chan T
	closed bool
}

// NewContinuousListener subscribes to channel. A buffer <= 0 uses the
// default size (64). When the buffer is full, new events are dropped so the
// publisher never blocks.
func NewContinuousListener[T any](channel *Channel[T], buffer int) *ContinuousListener[T] {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}
	l := &ContinuousListener[T]{ch: make(chan T, buffer)}
	l.sub = channel.Subscribe(func(event T) error {
		select {
		case l.ch <- event:
			// Delivered
		default:
			// Buffer full - drop to prevent blocking
		}
		return nil
	})
	return l
}

// Listen returns a tea.Cmd that waits for the next event.
// Call this method in your Update function after handling an event
// to continue receiving events.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return ListenCmd[T](l.ch)
}

// Close unsubscribes the listener and closes its buffer. Pending Listen
// commands return nil. Must be called from the goroutine that publishes.
func (l *ContinuousListener[T]) Close() {
	if l.closed {
		return
	}
	l.closed = true
	l.sub.Unsubscribe()
	close(l.ch)
}
