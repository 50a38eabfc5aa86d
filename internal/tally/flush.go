package tally

import (
	"sync"
	"time"
)

// Flusher coalesces bursts of edits into a single deferred write-out.
// Trailing-edge debounce with a single slot: the first Dirty call after an
// idle period schedules exactly one flush; further Dirty calls inside the
// window are no-ops. At most one flush callback is ever outstanding.
type Flusher struct {
	mu      sync.Mutex
	delay   time.Duration
	flush   func()
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewFlusher creates a flusher that invokes flush after delay once marked
// dirty. The callback runs on the timer goroutine; it must do its own
// locking (the engine's Flush does).
func NewFlusher(delay time.Duration, flush func()) *Flusher {
	return &Flusher{delay: delay, flush: flush}
}

// Dirty marks the aggregate dirty. Schedules a flush if none is pending.
func (f *Flusher) Dirty() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending || f.stopped {
		return
	}
	f.pending = true
	f.timer = time.AfterFunc(f.delay, f.fire)
}

func (f *Flusher) fire() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.pending = false
	f.mu.Unlock()

	// Outside the lock: a new Dirty during the write schedules the next
	// cycle instead of blocking on it.
	f.flush()
}

// Pending reports whether a flush is currently scheduled.
func (f *Flusher) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Stop cancels any scheduled flush and rejects further scheduling.
// It does not run a final flush; callers flush explicitly on shutdown.
func (f *Flusher) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	f.pending = false
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
