// Package schedule implements drift-free periodic execution.
//
// A periodic task keeps a monotonic "next release" deadline that advances
// by exactly one period per cycle, regardless of how long the cycle body
// took. Waiting for the deadline is a cancellable timed wait, so an idle
// task consumes no CPU and shutdown interrupts it immediately.
//
// Overruns are caught up by a single immediate cycle. The deadline is then
// re-anchored to the current time, so a long stall never produces a burst
// of back-to-back cycles.
package schedule

import (
	"context"
	"fmt"
	"time"

	"k8s.io/utils/clock"
)

// Release tracks the next release deadline of one periodic task.
// A Release is owned by a single goroutine and is not safe for concurrent use.
type Release struct {
	clock  clock.Clock
	period time.Duration
	next   time.Time
}

// NewRelease creates a Release whose first deadline is one period after
// the first call to Advance.
func NewRelease(clk clock.Clock, period time.Duration) *Release {
	return &Release{
		clock:  clk,
		period: period,
		next:   clk.Now(),
	}
}

// Advance moves the deadline forward by one period and returns it.
// Call it at the top of each cycle, before doing any work.
func (r *Release) Advance() time.Time {
	r.next = r.next.Add(r.period)
	return r.next
}

// Next returns the current deadline.
func (r *Release) Next() time.Time {
	return r.next
}

// Wait blocks until the current deadline passes or ctx is cancelled.
// Returns ctx.Err() on cancellation and nil otherwise.
//
// If the deadline has already passed, Wait returns at once and moves the
// deadline to now, so the following cycle is scheduled one full period
// later instead of immediately.
func (r *Release) Wait(ctx context.Context) error {
	now := r.clock.Now()
	remaining := r.next.Sub(now)
	if remaining <= 0 {
		r.next = now
		return ctx.Err()
	}

	timer := r.clock.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

// Run executes step once per period until ctx is cancelled.
//
// Cancellation is checked at the top of every cycle, so a cancelled task
// never starts a partial cycle. Cancellation is the normal way to stop a
// task and is not reported as an error.
func Run(ctx context.Context, clk clock.Clock, period time.Duration, step func(context.Context)) error {
	if period <= 0 {
		return fmt.Errorf("period must be positive, got %v", period)
	}

	release := NewRelease(clk, period)
	for {
		if ctx.Err() != nil {
			return nil
		}

		release.Advance()
		step(ctx)

		if err := release.Wait(ctx); err != nil {
			return nil
		}
	}
}
