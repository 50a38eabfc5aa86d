package tally

import "strings"

// Tracker is the per-document change controller. It owns the single
// "last observed" snapshot and decides whether an editor notification
// establishes a new baseline or is a diffable edit.
//
// States: uninitialized (no baseline) and tracking (baseline established).
type Tracker struct {
	tokenizer *Tokenizer
	excluded  []string

	identity    string
	baseline    string
	initialized bool
}

// NewTracker creates a tracker in the uninitialized state.
// excluded lists document-identity path prefixes ignored entirely.
func NewTracker(tokenizer *Tokenizer, excluded []string) *Tracker {
	return &Tracker{tokenizer: tokenizer, excluded: normalizePrefixes(excluded)}
}

// RestoreTracker rebuilds a tracker from persisted state so diffs resume
// against the last successfully diffed snapshot.
func RestoreTracker(tokenizer *Tokenizer, excluded []string, identity, baseline string, initialized bool) *Tracker {
	t := NewTracker(tokenizer, excluded)
	t.identity = identity
	t.baseline = baseline
	t.initialized = initialized
	return t
}

// Identity returns the tracked document identity ("" when uninitialized).
func (t *Tracker) Identity() string { return t.identity }

// Baseline returns the last snapshot successfully diffed against.
func (t *Tracker) Baseline() string { return t.baseline }

// Initialized reports whether a baseline is established.
func (t *Tracker) Initialized() bool { return t.initialized }

// Excluded reports whether the identity matches a configured exclusion
// prefix. Matching is done on slash-normalized paths.
func (t *Tracker) Excluded(identity string) bool {
	id := normalizePath(identity)
	for _, prefix := range t.excluded {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// Observe processes one editor-change notification and returns the signed
// word delta to apply to the aggregate. A nil or empty result means no
// aggregate change.
//
// Rules:
//   - excluded identity: ignored outright, no state change
//   - identity change or uninitialized: new baseline (even an empty one),
//     no delta (a pre-existing file must not count as freshly typed)
//   - tracking and content now empty: baseline invalidated, no delta
//     (hosts report empty content spuriously during file swaps; a
//     synthetic all-deletion delta is unreliable, so a true
//     delete-everything under-counts)
//   - otherwise: multiset diff of baseline vs. content, baseline advanced
func (t *Tracker) Observe(identity, content string) map[string]int {
	if t.Excluded(identity) {
		return nil
	}

	if !t.initialized || identity != t.identity {
		t.identity = identity
		t.baseline = content
		t.initialized = true
		return nil
	}

	if content == "" {
		t.Invalidate()
		return nil
	}

	delta := Diff(t.tokenizer.Tokenize(t.baseline), t.tokenizer.Tokenize(content))
	t.baseline = content
	return delta
}

// ObserveDeleted handles a document-deletion notification. Deleting the
// tracked document invalidates the baseline; deletions of other documents
// are ignored.
func (t *Tracker) ObserveDeleted(identity string) {
	if t.initialized && identity == t.identity {
		t.Invalidate()
	}
}

// Invalidate drops back to the uninitialized state. The next notification
// for any identity re-arms tracking as a fresh baseline.
func (t *Tracker) Invalidate() {
	t.identity = ""
	t.baseline = ""
	t.initialized = false
}

func normalizePath(p string) string {
	return strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "/")
}

func normalizePrefixes(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = normalizePath(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
