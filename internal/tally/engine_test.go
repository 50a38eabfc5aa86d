package tally

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeSink records ledger writes and exports in memory.
type fakeSink struct {
	mu      sync.Mutex
	ledgers map[string]FrequencyMap
	exports map[string]FrequencyMap
	failing bool
	writes  int
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		ledgers: make(map[string]FrequencyMap),
		exports: make(map[string]FrequencyMap),
	}
}

func (s *fakeSink) WriteDay(day string, snap FrequencyMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.failing {
		return fmt.Errorf("sink unavailable")
	}
	s.ledgers[day] = snap
	return nil
}

func (s *fakeSink) ExportDay(day string, snap FrequencyMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return fmt.Errorf("sink unavailable")
	}
	s.exports[day] = snap
	return nil
}

func (s *fakeSink) ledger(day string) FrequencyMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgers[day]
}

// fakeStore captures the last saved session state.
type fakeStore struct {
	mu    sync.Mutex
	last  *SessionState
	saves int
}

func (s *fakeStore) Save(state SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := state
	s.last = &st
	s.saves++
	return nil
}

func (s *fakeStore) lastState(t *testing.T) SessionState {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		t.Fatal("nothing persisted")
	}
	return *s.last
}

// testClock is a settable clock for driving rollover.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestEngine(t *testing.T, stopwords []string, prior *SessionState) (*Engine, *fakeSink, *fakeStore, *testClock) {
	t.Helper()
	sink := newFakeSink()
	store := &fakeStore{}
	clock := &testClock{now: time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)}
	eng := NewEngine(mustTokenizer(t, "", stopwords), nil, prior, Options{
		SessionID:  "01TESTSESSION",
		Sink:       sink,
		Store:      store,
		FlushDelay: 10 * time.Millisecond,
		AutoExport: true,
		Now:        clock.Now,
		Logf:       t.Logf,
	})
	return eng, sink, store, clock
}

func TestEngine_TypingScenario(t *testing.T) {
	eng, sink, _, _ := newTestEngine(t, []string{"the"}, nil)

	eng.OnContentChanged("a.md", "")
	eng.OnContentChanged("a.md", "the cat sat")
	eng.OnContentChanged("a.md", "the cat sat on the mat")

	_, snap := eng.Snapshot()
	want := FrequencyMap{"cat": 1, "sat": 1, "on": 1, "mat": 1}
	for w, c := range want {
		if snap[w] != c {
			t.Errorf("snapshot[%s] = %d, want %d", w, snap[w], c)
		}
	}
	if len(snap) != len(want) {
		t.Errorf("snapshot = %v, want %v", snap, want)
	}

	waitFor(t, func() bool { return sink.ledger("2026-08-31") != nil })
	if got := sink.ledger("2026-08-31"); len(got) != 4 {
		t.Errorf("flushed ledger = %v, want 4 words", got)
	}
}

func TestEngine_DeletionUnderCountScenario(t *testing.T) {
	eng, _, _, _ := newTestEngine(t, nil, nil)

	eng.OnContentChanged("a.md", "seed")
	eng.OnContentChanged("a.md", "seed cat cat")
	eng.OnContentChanged("a.md", "seed cat")
	eng.OnContentChanged("a.md", "")

	_, snap := eng.Snapshot()
	if snap["cat"] != 1 {
		t.Errorf("snapshot[cat] = %d, want 1 (empty clear suppresses the delta)", snap["cat"])
	}
}

func TestEngine_FirstObservationNoAggregateChange(t *testing.T) {
	eng, _, _, _ := newTestEngine(t, nil, nil)
	eng.OnContentChanged("huge.md", "an entire pre existing document full of words")
	_, snap := eng.Snapshot()
	if len(snap) != 0 {
		t.Errorf("snapshot after first observation = %v, want empty", snap)
	}
}

func TestEngine_Rollover(t *testing.T) {
	eng, sink, _, clock := newTestEngine(t, nil, nil)

	eng.OnContentChanged("a.md", "seed")
	eng.OnContentChanged("a.md", "seed monday words")

	clock.Set(time.Date(2026, 9, 1, 0, 0, 5, 0, time.Local))
	eng.OnTick()

	day, snap := eng.Snapshot()
	if day != "2026-09-01" {
		t.Errorf("day = %s, want 2026-09-01", day)
	}
	if len(snap) != 0 {
		t.Errorf("snapshot after rollover = %v, want empty", snap)
	}

	// Pre-reset tally went to the old day's ledger and export.
	old := sink.ledger("2026-08-31")
	if old["monday"] != 1 || old["words"] != 1 {
		t.Errorf("closed-out ledger = %v, want monday/words counted", old)
	}
	sink.mu.Lock()
	exported := sink.exports["2026-08-31"]
	sink.mu.Unlock()
	if exported == nil {
		t.Error("auto export did not run at rollover")
	}

	// Tracker re-baselines: next edit establishes a baseline, no counting.
	eng.OnContentChanged("a.md", "seed monday words tuesday")
	_, snap = eng.Snapshot()
	if len(snap) != 0 {
		t.Errorf("first post-rollover edit leaked words: %v", snap)
	}
	eng.OnContentChanged("a.md", "seed monday words tuesday more")
	_, snap = eng.Snapshot()
	if snap["more"] != 1 || len(snap) != 1 {
		t.Errorf("post-rollover counting = %v, want {more:1}", snap)
	}
}

func TestEngine_RolloverLazyOnContentChange(t *testing.T) {
	eng, _, _, clock := newTestEngine(t, nil, nil)
	eng.OnContentChanged("a.md", "seed")

	clock.Set(time.Date(2026, 9, 1, 8, 0, 0, 0, time.Local))
	eng.OnContentChanged("a.md", "seed next day")

	day, snap := eng.Snapshot()
	if day != "2026-09-01" {
		t.Errorf("day = %s, want rollover without a tick", day)
	}
	// The edit that crossed the boundary re-baselines instead of counting.
	if len(snap) != 0 {
		t.Errorf("snapshot = %v, want empty after boundary re-baseline", snap)
	}
}

func TestEngine_PersistAndResume(t *testing.T) {
	eng, _, store, _ := newTestEngine(t, nil, nil)
	eng.OnContentChanged("a.md", "seed")
	eng.OnContentChanged("a.md", "seed typed words")

	state := store.lastState(t)
	if state.Day != "2026-08-31" {
		t.Errorf("persisted day = %s", state.Day)
	}
	if state.Baseline != "seed typed words" {
		t.Errorf("persisted baseline = %q", state.Baseline)
	}
	if state.Frequencies["typed"] != 1 {
		t.Errorf("persisted frequencies = %v", state.Frequencies)
	}

	// Resume: the same edit content produces a zero delta, not a double count.
	eng2, _, _, _ := newTestEngine(t, nil, &state)
	eng2.OnContentChanged("a.md", "seed typed words")
	_, snap := eng2.Snapshot()
	if snap["typed"] != 1 || snap["words"] != 1 {
		t.Errorf("resumed snapshot = %v, want counts preserved without drift", snap)
	}
	eng2.OnContentChanged("a.md", "seed typed words extra")
	_, snap = eng2.Snapshot()
	if snap["extra"] != 1 {
		t.Errorf("resumed diffing broken: %v", snap)
	}
}

func TestEngine_ResumeAcrossDaysClosesOutOldDay(t *testing.T) {
	prior := &SessionState{
		SessionID:   "01OLDSESSION",
		Day:         "2026-08-30",
		DocIdentity: "a.md",
		Baseline:    "yesterday words",
		Initialized: true,
		Frequencies: FrequencyMap{"yesterday": 1, "words": 1},
	}
	eng, sink, _, _ := newTestEngine(t, nil, prior)

	day, snap := eng.Snapshot()
	if day != "2026-08-31" {
		t.Errorf("day = %s, want today", day)
	}
	if len(snap) != 0 {
		t.Errorf("snapshot = %v, want empty (old day must not leak)", snap)
	}
	if sink.ledger("2026-08-30") == nil {
		t.Error("old day's tally was not closed out to its ledger")
	}
}

func TestEngine_FlushFailureKeepsAggregate(t *testing.T) {
	eng, sink, _, _ := newTestEngine(t, nil, nil)
	eng.OnContentChanged("a.md", "seed")
	eng.OnContentChanged("a.md", "seed word")

	sink.mu.Lock()
	sink.failing = true
	sink.mu.Unlock()
	eng.Flush()

	_, snap := eng.Snapshot()
	if snap["word"] != 1 {
		t.Errorf("aggregate corrupted by failed flush: %v", snap)
	}

	sink.mu.Lock()
	sink.failing = false
	sink.mu.Unlock()
	eng.Flush()
	if got := sink.ledger("2026-08-31"); got["word"] != 1 {
		t.Errorf("retry flush did not land: %v", got)
	}
}

func TestEngine_Reset(t *testing.T) {
	eng, sink, _, _ := newTestEngine(t, nil, nil)
	eng.OnContentChanged("a.md", "seed")
	eng.OnContentChanged("a.md", "seed word")

	if err := eng.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	_, snap := eng.Snapshot()
	if len(snap) != 0 {
		t.Errorf("snapshot after Reset = %v, want empty", snap)
	}
	if got := sink.ledger("2026-08-31"); len(got) != 0 {
		t.Errorf("ledger after Reset = %v, want empty", got)
	}
}

func TestEngine_StopwordNeverInDelta(t *testing.T) {
	eng, _, store, _ := newTestEngine(t, []string{"the", "and"}, nil)
	eng.OnContentChanged("a.md", "seed")
	eng.OnContentChanged("a.md", "seed the cat and the dog")

	state := store.lastState(t)
	for _, stop := range []string{"the", "and"} {
		if _, ok := state.Frequencies[stop]; ok {
			t.Errorf("stopword %q leaked into aggregate", stop)
		}
	}
}

func TestEngine_Close(t *testing.T) {
	eng, sink, store, _ := newTestEngine(t, nil, nil)
	eng.OnContentChanged("a.md", "seed")
	eng.OnContentChanged("a.md", "seed final")
	eng.Close()

	if got := sink.ledger("2026-08-31"); got["final"] != 1 {
		t.Errorf("Close did not write final ledger: %v", got)
	}
	if store.lastState(t).Frequencies["final"] != 1 {
		t.Error("Close did not persist final state")
	}
}
