package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/wordscraper/internal/errors"
	"github.com/hpungsan/wordscraper/internal/tally"
)

// WordEntry is one annotated word in the JSON export.
type WordEntry struct {
	ID        int    `json:"id"`
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
	Sentiment int    `json:"sentiment"`
}

// Export is the JSON export artifact for one day's tally.
type Export struct {
	Session    string      `json:"session,omitempty"`
	ExportedAt int64       `json:"exported_at,omitempty"`
	Words      []WordEntry `json:"words"`
}

// BuildExport assembles the export document: 1-based ids in ledger order,
// entries with frequency <= 0 excluded, sentiment from the score function
// (0 when none is configured).
func BuildExport(snap tally.FrequencyMap, score func(string) int, session string, at time.Time) Export {
	words := make([]WordEntry, 0, len(snap))
	id := 1
	for _, e := range snap.Sorted() {
		if e.Count <= 0 {
			continue
		}
		s := 0
		if score != nil {
			s = score(e.Word)
		}
		words = append(words, WordEntry{ID: id, Word: e.Word, Frequency: e.Count, Sentiment: s})
		id++
	}
	return Export{Session: session, ExportedAt: at.Unix(), Words: words}
}

// ExportDay writes the JSON export for a day's snapshot, overwriting any
// existing artifact at the target path.
func (w *Writer) ExportDay(day string, snap tally.FrequencyMap) error {
	dir := w.ExportDir
	if dir == "" {
		dir = w.Dir
	}
	if err := w.checkDir(dir); err != nil {
		return err
	}

	doc := BuildExport(snap, w.Score, w.Session, time.Now())
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.NewInternal(err)
	}

	path := filepath.Join(dir, ExportName(day))
	if err := writeAtomic(path, append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// ExportName returns the export file name derived from the ledger basename.
func ExportName(day string) string {
	return strings.TrimSuffix(LedgerName(day), NameExt) + ".json"
}

// ExportPathFor returns the full export path for a day.
func (w *Writer) ExportPathFor(day string) string {
	dir := w.ExportDir
	if dir == "" {
		dir = w.Dir
	}
	return filepath.Join(dir, ExportName(day))
}

// ReadExport loads an export artifact, mainly for tests and the web view.
func ReadExport(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound("export")
		}
		return nil, errors.NewIOFailed("read export", err)
	}
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &doc, nil
}
