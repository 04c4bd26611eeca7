// Package broadcast provides a bounded multi-producer, multi-consumer
// broadcast channel. Producers never block; a subscriber that falls behind
// is told how many messages it missed instead of silently losing them.
package broadcast

import (
	"context"
	"fmt"
	"sync"
)

// DefaultCapacity is the per-subscriber replay buffer size.
const DefaultCapacity = 100

// LaggedError signals that a subscriber fell behind and messages were dropped.
type LaggedError struct {
	Missed int64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("subscriber lagged: %d messages dropped", e.Missed)
}

// Broadcaster fans messages out to any number of subscribers.
type Broadcaster[T any] struct {
	mu       sync.Mutex
	subs     map[*Subscriber[T]]struct{}
	capacity int
}

// New creates a Broadcaster with the given per-subscriber capacity.
// A non-positive capacity falls back to DefaultCapacity.
func New[T any](capacity int) *Broadcaster[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Broadcaster[T]{
		subs:     make(map[*Subscriber[T]]struct{}),
		capacity: capacity,
	}
}

// Send delivers msg to every subscriber. It never blocks: a subscriber whose
// buffer is full has the message dropped and its missed counter incremented.
func (b *Broadcaster[T]) Send(msg T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.ch <- msg:
		default:
			sub.mu.Lock()
			sub.missed++
			sub.mu.Unlock()
		}
	}
}

// Subscribe registers a new subscriber. The subscriber only sees messages
// sent after this call.
func (b *Broadcaster[T]) Subscribe() *Subscriber[T] {
	sub := &Subscriber[T]{
		ch:     make(chan T, b.capacity),
		parent: b,
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscriber is one consumer of a Broadcaster.
type Subscriber[T any] struct {
	ch     chan T
	parent *Broadcaster[T]

	mu     sync.Mutex
	missed int64
}

// Recv returns the next message. If the subscriber fell behind since the
// last call, Recv first returns a *LaggedError carrying the missed count;
// subsequent calls resume with the buffered messages.
func (s *Subscriber[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	s.mu.Lock()
	if s.missed > 0 {
		n := s.missed
		s.missed = 0
		s.mu.Unlock()
		return zero, &LaggedError{Missed: n}
	}
	s.mu.Unlock()

	select {
	case msg := <-s.ch:
		return msg, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close detaches the subscriber from its broadcaster.
func (s *Subscriber[T]) Close() {
	s.parent.mu.Lock()
	delete(s.parent.subs, s)
	s.parent.mu.Unlock()
}
