// Package channel provides the two message conduits used between the
// controller tasks: a single-slot latest-value channel for sensor data and
// power commands, and a small bounded FIFO for operator events.
//
// Both types are safe for concurrent use by any number of producers and
// consumers. Neither ever blocks a producer.
package channel

import (
	"context"
	"time"
)

// Latest is a single-slot channel where a new publish replaces any value
// that has not been consumed yet. Consumers therefore only ever see the
// freshest value.
type Latest[T any] struct {
	slot chan T
}

// NewLatest creates an empty latest-value channel.
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{slot: make(chan T, 1)}
}

// Publish stores msg, discarding the current occupant if there is one.
//
// The discard and the insert are two separate steps. If another goroutine
// empties or refills the slot in between, the publish is abandoned without
// error: some producer's value is in the slot either way.
func (l *Latest[T]) Publish(msg T) {
	select {
	case <-l.slot:
	default:
	}

	select {
	case l.slot <- msg:
	default:
	}
}

// TakeLatest removes and returns the pending value without blocking.
// Returns false if the slot is empty.
func (l *Latest[T]) TakeLatest() (T, bool) {
	var last T
	found := false
	for {
		select {
		case msg := <-l.slot:
			last = msg
			found = true
		default:
			return last, found
		}
	}
}

// TakeBlocking waits up to timeout for a value to arrive, then collapses
// any backlog into the latest value. Returns false if the timeout expires
// or ctx is cancelled before anything arrives.
func (l *Latest[T]) TakeBlocking(ctx context.Context, timeout time.Duration) (T, bool) {
	var zero T

	// Fast path: avoids allocating a timer when data is already waiting.
	if msg, ok := l.TakeLatest(); ok {
		return msg, true
	}
	if timeout <= 0 {
		return zero, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return zero, false
	case <-timer.C:
		return zero, false
	case first := <-l.slot:
		if newer, ok := l.TakeLatest(); ok {
			return newer, true
		}
		return first, true
	}
}

// Drain discards whatever is pending and reports how many values were
// removed.
func (l *Latest[T]) Drain() int {
	n := 0
	for {
		select {
		case <-l.slot:
			n++
		default:
			return n
		}
	}
}

// Pending reports whether a value is waiting in the slot. The answer may be
// stale by the time the caller acts on it.
func (l *Latest[T]) Pending() bool {
	return len(l.slot) > 0
}
