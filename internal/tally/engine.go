package tally

import (
	"log"
	"sync"
	"time"
)

// SessionState is the durable serialization of the engine: the daily
// aggregate plus the observed-document baseline. Losing either half causes
// double-counting or count drift on resume, so the engine persists both
// after every mutation batch.
type SessionState struct {
	SessionID   string
	Day         string
	DocIdentity string
	Baseline    string
	Initialized bool
	Frequencies FrequencyMap
}

// Sink receives the externalized tally: the daily ledger write and the
// optional annotated JSON export.
type Sink interface {
	WriteDay(day string, snap FrequencyMap) error
	ExportDay(day string, snap FrequencyMap) error
}

// Store persists session state between runs.
type Store interface {
	Save(s SessionState) error
}

// Options configures an Engine.
type Options struct {
	// SessionID identifies this tracking session in persisted state and
	// export metadata.
	SessionID string

	// Sink receives ledger writes and exports. Required.
	Sink Sink

	// Store persists session state after each mutation batch. Optional.
	Store Store

	// FlushDelay is the debounce window for ledger writes.
	FlushDelay time.Duration

	// AutoExport triggers a JSON export of the closing day at rollover.
	AutoExport bool

	// Now overrides the clock (tests). Defaults to time.Now.
	Now func() time.Time

	// Logf overrides the logger (tests). Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// Engine wires the tokenizer, differ, aggregate, tracker, rollover check,
// and debounced flusher behind one mutex. Every inbound event — watcher
// callback, MCP tool call, poll tick, flush timer — serializes on that
// mutex, which is the whole concurrency model: no partial deltas, no
// re-entrancy, single writer for aggregate and baseline.
type Engine struct {
	mu      sync.Mutex
	tracker *Tracker
	agg     *Aggregate
	flusher *Flusher

	sink       Sink
	store      Store
	sessionID  string
	autoExport bool
	now        func() time.Time
	logf       func(format string, args ...any)
}

// NewEngine creates an engine for today's local date. If prior state is
// given and stamped with today, the aggregate and baseline resume from it;
// a prior state from an earlier day is closed out first (ledger write plus
// export when enabled), then the engine starts the new day empty.
func NewEngine(tokenizer *Tokenizer, excluded []string, prior *SessionState, opts Options) *Engine {
	e := &Engine{
		sink:       opts.Sink,
		store:      opts.Store,
		sessionID:  opts.SessionID,
		autoExport: opts.AutoExport,
		now:        opts.Now,
		logf:       opts.Logf,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logf == nil {
		e.logf = log.Printf
	}

	today := LocalDay(e.now())
	switch {
	case prior != nil && prior.Day == today:
		e.agg = RestoreAggregate(prior.Day, prior.Frequencies)
		e.tracker = RestoreTracker(tokenizer, excluded, prior.DocIdentity, prior.Baseline, prior.Initialized)
		if prior.SessionID != "" {
			e.sessionID = prior.SessionID
		}
	case prior != nil && prior.Day != "" && len(prior.Frequencies) > 0:
		// Restart landed on a new day: close out the persisted day before
		// starting fresh.
		e.closeOutDay(prior.Day, FrequencyMap(prior.Frequencies).Clone())
		fallthrough
	default:
		e.agg = NewAggregate(today)
		e.tracker = NewTracker(tokenizer, excluded)
	}

	delay := opts.FlushDelay
	if delay <= 0 {
		delay = 10 * time.Second
	}
	e.flusher = NewFlusher(delay, e.Flush)
	return e
}

// SessionID returns the session identity carried in persisted state.
func (e *Engine) SessionID() string { return e.sessionID }

// OnContentChanged handles one editor-change notification.
func (e *Engine) OnContentChanged(identity, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()

	if e.tracker.Excluded(identity) {
		return
	}

	delta := e.tracker.Observe(identity, content)
	if len(delta) > 0 {
		e.agg.ApplyDelta(delta)
		e.flusher.Dirty()
	}
	e.persistLocked()
}

// OnDocumentDeleted handles a document-deletion notification.
func (e *Engine) OnDocumentDeleted(identity string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	e.tracker.ObserveDeleted(identity)
	e.persistLocked()
}

// OnTick drives the rollover check. Staleness is bounded by the caller's
// tick interval.
func (e *Engine) OnTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rolloverLocked()
}

// Flush writes the current snapshot to the ledger. A write failure is
// logged and leaves the in-memory aggregate untouched; the next dirty
// cycle retries.
func (e *Engine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	if err := e.sink.WriteDay(e.agg.Day(), e.agg.Snapshot()); err != nil {
		e.logf("ledger write failed (will retry next flush): %v", err)
	}
}

// Reset clears today's aggregate, rewrites the ledger empty, and persists.
// User-triggered; the tracker baseline stays valid so subsequent edits
// diff normally.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	e.agg.Reset()
	e.persistLocked()
	if err := e.sink.WriteDay(e.agg.Day(), e.agg.Snapshot()); err != nil {
		return err
	}
	return nil
}

// Export writes the JSON export artifact for today's tally.
func (e *Engine) Export() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	return e.sink.ExportDay(e.agg.Day(), e.agg.Snapshot())
}

// Snapshot returns today's date and a copy of the tally.
func (e *Engine) Snapshot() (string, FrequencyMap) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rolloverLocked()
	return e.agg.Day(), e.agg.Snapshot()
}

// Close stops the flusher, performs a final ledger write, and persists.
func (e *Engine) Close() {
	e.flusher.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.sink.WriteDay(e.agg.Day(), e.agg.Snapshot()); err != nil {
		e.logf("final ledger write failed: %v", err)
	}
	e.persistLocked()
}

// rolloverLocked checks the local calendar date and, on a boundary
// crossing, closes out the old day (pre-reset snapshot to ledger, export
// when enabled), resets the aggregate, stamps the new date, and drops the
// tracker back to uninitialized so the active document re-baselines.
// Callers hold e.mu.
func (e *Engine) rolloverLocked() {
	day := LocalDay(e.now())
	if day == e.agg.Day() {
		return
	}

	if e.agg.Len() > 0 {
		e.closeOutDay(e.agg.Day(), e.agg.Snapshot())
	}
	e.agg.Reset()
	e.agg.SetDay(day)
	e.tracker.Invalidate()
	e.persistLocked()
}

// closeOutDay writes a day's final ledger and optional export.
// Failures are logged, never propagated: rollover must not wedge on I/O.
func (e *Engine) closeOutDay(day string, snap FrequencyMap) {
	if err := e.sink.WriteDay(day, snap); err != nil {
		e.logf("rollover ledger write for %s failed: %v", day, err)
	}
	if e.autoExport {
		if err := e.sink.ExportDay(day, snap); err != nil {
			e.logf("rollover export for %s failed: %v", day, err)
		}
	}
}

// persistLocked saves session state. Callers hold e.mu.
func (e *Engine) persistLocked() {
	if e.store == nil {
		return
	}
	s := SessionState{
		SessionID:   e.sessionID,
		Day:         e.agg.Day(),
		DocIdentity: e.tracker.Identity(),
		Baseline:    e.tracker.Baseline(),
		Initialized: e.tracker.Initialized(),
		Frequencies: e.agg.Snapshot(),
	}
	if err := e.store.Save(s); err != nil {
		e.logf("state save failed: %v", err)
	}
}
