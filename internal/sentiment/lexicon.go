// Package sentiment provides the lexical-sentiment scoring function
// consumed by the JSON export: a word-to-score lookup in [-5, 5], AFINN
// style, with 0 for unknown words.
package sentiment

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Lexicon maps lowercase words to integer sentiment scores.
type Lexicon map[string]int

// Score returns the word's score, 0 if unknown. Lookup is on the
// lowercased word.
func (l Lexicon) Score(word string) int {
	return l[strings.ToLower(word)]
}

// Default returns a copy of the embedded lexicon.
func Default() Lexicon {
	out := make(Lexicon, len(defaultLexicon))
	for w, s := range defaultLexicon {
		out[w] = s
	}
	return out
}

// Load reads a user lexicon file and merges it over the default.
// Format: one "<word> <score>" pair per line; blank lines and lines
// starting with '#' are skipped; user entries win on conflict.
func Load(path string) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lex := Default()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("lexicon %s:%d: want \"<word> <score>\", got %q", path, lineNo, line)
		}
		score, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("lexicon %s:%d: bad score %q", path, lineNo, fields[1])
		}
		if score < -5 || score > 5 {
			return nil, fmt.Errorf("lexicon %s:%d: score %d out of range [-5, 5]", path, lineNo, score)
		}
		lex[strings.ToLower(fields[0])] = score
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lex, nil
}

// defaultLexicon is a compact AFINN-flavored table covering the common
// valence vocabulary of free-form journaling.
var defaultLexicon = map[string]int{
	"abandoned": -2, "abuse": -3, "accept": 1, "accomplish": 2,
	"ache": -2, "achieve": 2, "admire": 3, "adore": 3,
	"afraid": -2, "aggressive": -2, "agree": 1, "alive": 1,
	"alone": -2, "amazing": 4, "anger": -3, "angry": -3,
	"annoy": -2, "annoyed": -2, "anxious": -2, "appreciate": 2,
	"awesome": 4, "awful": -3, "awkward": -2, "bad": -3,
	"beautiful": 3, "best": 3, "better": 2, "bitter": -2,
	"blame": -2, "bless": 2, "bliss": 3, "bored": -2,
	"boring": -2, "brave": 2, "breathtaking": 5, "bright": 1,
	"brilliant": 4, "broken": -2, "calm": 2, "care": 2,
	"celebrate": 3, "chaos": -2, "cheerful": 2, "clean": 2,
	"comfort": 2, "confident": 2, "confused": -2, "cool": 1,
	"courage": 2, "crash": -2, "crazy": -2, "cried": -2,
	"cruel": -3, "cry": -1, "damage": -3, "danger": -2,
	"dark": -1, "dead": -3, "defeat": -2, "delight": 3,
	"depressed": -3, "despair": -3, "destroy": -3, "difficult": -1,
	"dirty": -2, "disappointed": -2, "disaster": -3, "dream": 1,
	"dull": -2, "eager": 2, "easy": 1, "ecstatic": 4,
	"embarrassed": -2, "empty": -1, "encourage": 2, "energetic": 2,
	"enjoy": 2, "excellent": 3, "excited": 3, "exhausted": -2,
	"fail": -2, "failure": -2, "fantastic": 4, "fear": -2,
	"fine": 2, "fond": 2, "forgive": 1, "fragile": -2,
	"free": 1, "fresh": 1, "friendly": 2, "frustrated": -2,
	"fun": 4, "funny": 4, "generous": 2, "gentle": 3,
	"glad": 3, "gloomy": -2, "good": 3, "grand": 3,
	"grateful": 3, "great": 3, "grief": -2, "grumpy": -2,
	"guilt": -3, "happy": 3, "harm": -2, "hate": -3,
	"heal": 2, "healthy": 2, "heartbroken": -3, "hell": -4,
	"help": 2, "hero": 2, "honest": 2, "hope": 2,
	"hopeful": 2, "hopeless": -2, "horrible": -3, "hug": 2,
	"hurt": -2, "ignore": -1, "ill": -2, "improve": 2,
	"inspire": 2, "interesting": 2, "jealous": -2, "joke": 2,
	"joy": 3, "kind": 2, "laugh": 1, "lazy": -1,
	"lonely": -2, "lose": -3, "loss": -3, "lost": -3,
	"love": 3, "loved": 3, "lovely": 3, "lucky": 3,
	"mad": -3, "mess": -2, "miracle": 4, "miss": -2,
	"mistake": -2, "motivated": 2, "nervous": -2, "nice": 3,
	"numb": -1, "optimistic": 2, "outstanding": 5, "overwhelmed": -2,
	"pain": -2, "panic": -3, "peace": 2, "peaceful": 2,
	"perfect": 3, "pleasant": 3, "pleased": 3, "poor": -2,
	"pretty": 1, "proud": 2, "quiet": 0, "regret": -2,
	"relax": 2, "relief": 1, "rest": 1, "sad": -2,
	"safe": 1, "satisfied": 2, "scared": -2, "serene": 2,
	"shame": -2, "shine": 2, "sick": -2, "smile": 2,
	"sorrow": -2, "sorry": -1, "strong": 2, "struggle": -2,
	"stuck": -2, "stupid": -2, "succeed": 3, "success": 2,
	"suffer": -2, "superb": 5, "support": 2, "sweet": 2,
	"terrible": -3, "terrific": 4, "thank": 2, "thankful": 2,
	"tired": -2, "tough": -2, "tragic": -2, "triumph": 4,
	"trouble": -2, "trust": 1, "ugly": -3, "unhappy": -2,
	"upset": -2, "useless": -2, "victory": 3, "vibrant": 3,
	"warm": 1, "weak": -2, "weary": -2, "welcome": 2,
	"win": 4, "wonderful": 4, "worn": -1, "worried": -3,
	"worry": -3, "worse": -3, "worst": -3, "wow": 4,
	"wrong": -2, "yes": 1,
}
