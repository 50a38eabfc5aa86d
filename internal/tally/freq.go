package tally

import "sort"

// FrequencyMap maps a word to a positive occurrence count.
// Invariant: every stored value is >= 1.
type FrequencyMap map[string]int

// Count builds the multiplicity map for a token sequence.
func Count(tokens []string) FrequencyMap {
	m := make(FrequencyMap, len(tokens))
	for _, tok := range tokens {
		m[tok]++
	}
	return m
}

// Diff computes the signed per-word delta between two token sequences as a
// multiset difference: delta[w] = count(new, w) - count(old, w), with zero
// entries omitted. This is deliberately not a positional diff — moving a
// word within the document nets to zero, duplicating an instance nets +1,
// which is the intended typing-vs-deleting semantics.
func Diff(oldTokens, newTokens []string) map[string]int {
	oldCounts := Count(oldTokens)
	newCounts := Count(newTokens)

	delta := make(map[string]int)
	for w, n := range newCounts {
		if d := n - oldCounts[w]; d != 0 {
			delta[w] = d
		}
	}
	for w, o := range oldCounts {
		if _, seen := newCounts[w]; !seen {
			delta[w] = -o
		}
	}
	return delta
}

// Entry is one (word, count) pair in a deterministic rendering of a
// FrequencyMap.
type Entry struct {
	Word  string
	Count int
}

// Sorted returns the map's entries ordered by count descending, then word
// ascending. Go maps carry no insertion order, so this is the canonical
// ledger and export ordering.
func (m FrequencyMap) Sorted() []Entry {
	entries := make([]Entry, 0, len(m))
	for w, c := range m {
		entries = append(entries, Entry{Word: w, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	return entries
}

// Clone returns an independent copy of the map.
func (m FrequencyMap) Clone() FrequencyMap {
	out := make(FrequencyMap, len(m))
	for w, c := range m {
		out[w] = c
	}
	return out
}
