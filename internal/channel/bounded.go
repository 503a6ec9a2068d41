package channel

import "fmt"

// DefaultEventCapacity matches the operator console's queue depth.
const DefaultEventCapacity = 10

// Bounded is a fixed-capacity FIFO that drops new items when full.
// Operators re-issue a command if it was dropped.
type Bounded[T any] struct {
	items chan T
}

// NewBounded creates a bounded channel holding at most capacity items.
func NewBounded[T any](capacity int) (*Bounded[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("bounded channel capacity must be >= 1, got %d", capacity)
	}
	return &Bounded[T]{items: make(chan T, capacity)}, nil
}

// TrySend enqueues item without blocking. Returns false if the channel was
// full and the item was dropped.
func (b *Bounded[T]) TrySend(item T) bool {
	select {
	case b.items <- item:
		return true
	default:
		return false
	}
}

// TryReceive pops the oldest item without blocking.
func (b *Bounded[T]) TryReceive() (T, bool) {
	select {
	case item := <-b.items:
		return item, true
	default:
		var zero T
		return zero, false
	}
}

// DrainAll removes and discards every pending item and returns how many
// were removed.
func (b *Bounded[T]) DrainAll() int {
	n := 0
	for {
		select {
		case <-b.items:
			n++
		default:
			return n
		}
	}
}

// Len returns the number of queued items.
func (b *Bounded[T]) Len() int { return len(b.items) }

// Cap returns the channel capacity.
func (b *Bounded[T]) Cap() int { return cap(b.items) }
