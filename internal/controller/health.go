package controller

import (
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"
)

// staleAfter is how many missed periods make a task count as stalled.
const staleAfter = 3

// heartbeat records when a task last completed a cycle.
type heartbeat struct {
	name   string
	period time.Duration
	last   atomic.Int64 // unix nanoseconds
}

func (b *heartbeat) record(now time.Time) {
	b.last.Store(now.UnixNano())
}

// health tracks task liveness. Heartbeats are written by their task and
// read by anyone without locking.
type health struct {
	clock clock.PassiveClock

	mu    sync.Mutex
	beats []*heartbeat
}

func newHealth(clk clock.PassiveClock) *health {
	return &health{clock: clk}
}

// register adds a task. Call before start.
func (h *health) register(name string, period time.Duration) *heartbeat {
	b := &heartbeat{name: name, period: period}
	b.record(h.clock.Now())

	h.mu.Lock()
	h.beats = append(h.beats, b)
	h.mu.Unlock()
	return b
}

// start resets every heartbeat to now, so time spent between construction
// and the first cycle does not count against a task.
func (h *health) start() {
	now := h.clock.Now()
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range h.beats {
		b.record(now)
	}
}

// stale returns the names of tasks that have not completed a cycle within
// staleAfter of their periods.
func (h *health) stale() []string {
	now := h.clock.Now().UnixNano()

	h.mu.Lock()
	defer h.mu.Unlock()

	var names []string
	for _, b := range h.beats {
		if time.Duration(now-b.last.Load()) > staleAfter*b.period {
			names = append(names, b.name)
		}
	}
	return names
}
