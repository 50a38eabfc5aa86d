package tally

// Aggregate is the system of record for one day's word tally.
// Single-writer: the engine serializes all mutation.
type Aggregate struct {
	day   string // local calendar date, YYYY-MM-DD
	freqs FrequencyMap
}

// NewAggregate creates an empty aggregate for the given local day.
func NewAggregate(day string) *Aggregate {
	return &Aggregate{day: day, freqs: make(FrequencyMap)}
}

// RestoreAggregate rebuilds an aggregate from persisted rows.
// Non-positive counts are dropped rather than trusted.
func RestoreAggregate(day string, freqs FrequencyMap) *Aggregate {
	a := NewAggregate(day)
	for w, c := range freqs {
		if c > 0 {
			a.freqs[w] = c
		}
	}
	return a
}

// Day returns the local calendar date this aggregate covers.
func (a *Aggregate) Day() string { return a.day }

// SetDay stamps the aggregate with a new local date. Used by rollover
// after Reset.
func (a *Aggregate) SetDay(day string) { a.day = day }

// ApplyDelta folds a signed delta into the tally. A word whose resulting
// count is <= 0 is removed; the map never holds a non-positive entry.
func (a *Aggregate) ApplyDelta(delta map[string]int) {
	for w, d := range delta {
		if d == 0 {
			continue
		}
		next := a.freqs[w] + d
		if next <= 0 {
			delete(a.freqs, w)
			continue
		}
		a.freqs[w] = next
	}
}

// Reset clears the tally to empty. Used at day rollover and on explicit
// user-triggered reset.
func (a *Aggregate) Reset() {
	a.freqs = make(FrequencyMap)
}

// Snapshot returns a copy of the current tally for export or rendering.
// Callers may hold it across further mutation.
func (a *Aggregate) Snapshot() FrequencyMap {
	return a.freqs.Clone()
}

// Len returns the number of distinct words currently tallied.
func (a *Aggregate) Len() int { return len(a.freqs) }
