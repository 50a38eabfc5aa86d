package tally

import (
	"regexp"
	"strings"
)

// DefaultWordPattern is the word-character class used when no override is
// configured: maximal runs of letters, digits, and underscore. Apostrophes
// and hyphens split tokens under this class.
const DefaultWordPattern = `[\p{L}\p{N}_]+`

var defaultWordRegexp = regexp.MustCompile(DefaultWordPattern)

// Stopwords is a case-insensitive word exclusion set.
type Stopwords map[string]struct{}

// NewStopwords builds a stopword set from a list of entries.
// Entries are trimmed and compared lowercase; blanks are dropped.
func NewStopwords(words []string) Stopwords {
	s := make(Stopwords, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether word (already lowercased) is a stopword.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Tokenizer extracts lowercase word tokens from raw text.
// Pure and deterministic; safe for concurrent use once built.
type Tokenizer struct {
	pattern   *regexp.Regexp
	stopwords Stopwords
}

// NewTokenizer builds a tokenizer with the given word pattern and stopword
// set. An empty pattern selects DefaultWordPattern. The pattern is a policy
// point: widen the class (for example to keep apostrophes word-internal)
// via the word_pattern config option.
func NewTokenizer(pattern string, stopwords Stopwords) (*Tokenizer, error) {
	re := defaultWordRegexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
	}
	return &Tokenizer{pattern: re, stopwords: stopwords}, nil
}

// Tokenize splits text into maximal word-class runs, lowercases each, and
// drops stopwords. Order mirrors order of appearance; duplicates are
// retained because frequency counting needs multiplicity. Empty input
// yields a nil slice.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	raw := t.pattern.FindAllString(text, -1)
	if raw == nil {
		return nil
	}
	tokens := make([]string, 0, len(raw))
	for _, r := range raw {
		w := strings.ToLower(r)
		if t.stopwords.Contains(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
