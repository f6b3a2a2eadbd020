// Package debounce coalesces bursts of updates into a single commit.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("debouncer closed")

// DefaultDelay is the quiet period used when New gets a non-positive delay.
const DefaultDelay = 500 * time.Millisecond

// Debouncer delays commits until Push has not been called for the configured
// delay. Only the latest pushed value is committed. Commits never overlap.
type Debouncer[T any] struct {
	delay   time.Duration
	commit  func(context.Context, T) error
	onError func(error)

	mu         sync.Mutex
	timer      *time.Timer
	gen        uint64
	pending    T
	hasPending bool
	closed     bool

	// commitMu serializes commits from the timer and from Flush
	commitMu sync.Mutex
}

// New returns a Debouncer calling commit after delay of inactivity.
// Errors from timer-driven commits go to onError, which may be nil.
func New[T any](delay time.Duration, commit func(context.Context, T) error, onError func(error)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, commit: commit, onError: onError}
}

// Push records v as the pending value and restarts the quiet period.
// Pushes after Close are dropped.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.pending = v
	d.hasPending = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Pending reports whether a value is waiting to be committed.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPending
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.commitMu.Lock()
	defer d.commitMu.Unlock()

	v, ok := d.take(gen)
	if !ok {
		return
	}
	if err := d.commit(context.Background(), v); err != nil && d.onError != nil {
		d.onError(err)
	}
}

// take claims the pending value. A stale timer (gen mismatch) gets nothing.
func (d *Debouncer[T]) take(gen uint64) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.hasPending || (gen != 0 && gen != d.gen) {
		return zero, false
	}
	v := d.pending
	d.pending = zero
	d.hasPending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v, true
}

// Flush commits the pending value now, if any, and returns the commit error.
func (d *Debouncer[T]) Flush(ctx context.Context) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return d.flush(ctx)
}

func (d *Debouncer[T]) flush(ctx context.Context) error {
	d.commitMu.Lock()
	defer d.commitMu.Unlock()

	v, ok := d.take(0)
	if !ok {
		return nil
	}
	return d.commit(ctx, v)
}

// Close flushes the pending value and stops accepting pushes.
func (d *Debouncer[T]) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()
	return d.flush(ctx)
}
