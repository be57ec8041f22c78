// Package controller implements the single-threaded cooperative driver
// that owns a robot.Source: it issues queued commands, ticks the source,
// republishes per-kind status streams plus the composite RobotStatus, and
// runs a connect/configure/run/closing state machine with a watchdog and
// automatic reconnection.
package controller

import "sync"

// Broadcast is a typed multi-subscriber fan-out, generalizing the
// teacher's serialmux.SerialMux subscribe-by-id pattern (there keyed to a
// single string-line stream) to any payload type and to the several
// distinct status streams the controller publishes.
type Broadcast[T any] struct {
	mu          sync.Mutex
	subscribers map[string]chan T
	closed      bool
}

// NewBroadcast returns an empty Broadcast.
func NewBroadcast[T any]() *Broadcast[T] {
	return &Broadcast[T]{subscribers: make(map[string]chan T)}
}

// Subscribe creates a new buffered channel and returns it along with the id
// used to Unsubscribe it later.
func (b *Broadcast[T]) Subscribe() (string, <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := randomID()
	ch := make(chan T, 1)
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe closes and removes the channel for id, if still present.
func (b *Broadcast[T]) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Publish fans v out to every current subscriber. A subscriber whose
// buffered channel is already full is skipped rather than blocking the
// driver, the same trade the teacher's Monitor loop makes.
func (b *Broadcast[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- v:
		default:
		}
	}
}

// Close closes every subscriber channel; further Publish calls are no-ops.
func (b *Broadcast[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
