// Package debounce delays rapidly changing values until they settle.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiescence window used for search input.
const DefaultWindow = 300 * time.Millisecond

// Debouncer emits the latest pushed value once it has stayed unchanged for
// the configured window. A push before the window elapses supersedes the
// pending value.
type Debouncer[T any] struct {
	// emitMu is held across fn so Cancel cannot return while an
	// emission it superseded is still running.
	emitMu  sync.Mutex
	mu      sync.Mutex
	window  time.Duration
	fn      func(T)
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// New creates a Debouncer that calls fn with each settled value.
// fn runs on its own goroutine and must not call Cancel or Stop.
func New[T any](window time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{window: window, fn: fn}
}

// Push records v as the latest value and restarts the window.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.window, func() {
		d.fire(seq, v)
	})
}

// fire emits v unless a later push or a cancel superseded it. A timer that
// already fired cannot be stopped, so the sequence check is what drops it.
func (d *Debouncer[T]) fire(seq uint64, v T) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}

// Cancel drops the pending value, if any. If the value is already being
// emitted, Cancel waits for fn to return, so nothing from before the
// cancel is delivered after it.
func (d *Debouncer[T]) Cancel() {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels the pending value and ignores all later pushes.
func (d *Debouncer[T]) Stop() {
	d.Cancel()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
