package ledger

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hpungsan/wordscraper/internal/errors"
	"github.com/hpungsan/wordscraper/internal/tally"
)

// Prefix and extension of daily ledger files.
const (
	NamePrefix = "WordScraper-"
	NameExt    = ".md"
)

// LedgerName returns the daily ledger file name for a local date.
func LedgerName(day string) string {
	return NamePrefix + day + NameExt
}

// CleanFolder normalizes a configured ledger folder: trailing separators
// are dropped and a leading separator (a root-relative spelling) is
// stripped, leaving a path resolvable against the watch root.
func CleanFolder(folder string) string {
	folder = strings.TrimRight(folder, `/\`)
	folder = strings.TrimLeft(folder, `/\`)
	return folder
}

// PathFor derives the ledger path for a day from a configured folder value.
func PathFor(folder, day string) string {
	folder = CleanFolder(folder)
	if folder == "" || folder == "." {
		return LedgerName(day)
	}
	return filepath.Join(folder, LedgerName(day))
}

// DayFromName extracts the date from a ledger file name, or "" if the name
// is not a ledger.
func DayFromName(name string) string {
	if !strings.HasPrefix(name, NamePrefix) || !strings.HasSuffix(name, NameExt) {
		return ""
	}
	day := strings.TrimSuffix(strings.TrimPrefix(name, NamePrefix), NameExt)
	if len(day) != len("2006-01-02") {
		return ""
	}
	return day
}

// IsArtifact reports whether name is one of the tool's own output files
// (ledger or export). The watcher skips these to avoid feeding the tally
// back into itself.
func IsArtifact(name string) bool {
	base := filepath.Base(name)
	if DayFromName(base) != "" {
		return true
	}
	return strings.HasPrefix(base, NamePrefix) && strings.HasSuffix(base, ".json")
}

// Format renders a frequency map as ledger lines, one "<word>: <count>"
// per word, count descending then word ascending.
func Format(snap tally.FrequencyMap) []byte {
	var buf bytes.Buffer
	for _, e := range snap.Sorted() {
		fmt.Fprintf(&buf, "%s: %d\n", e.Word, e.Count)
	}
	return buf.Bytes()
}

// Parse reads ledger lines back into a frequency map. Malformed lines and
// non-positive counts are skipped rather than treated as errors.
func Parse(data []byte) tally.FrequencyMap {
	m := make(tally.FrequencyMap)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		idx := strings.LastIndex(line, ": ")
		if idx <= 0 {
			continue
		}
		word := line[:idx]
		count, err := strconv.Atoi(line[idx+2:])
		if err != nil || count <= 0 {
			continue
		}
		m[word] = count
	}
	return m
}

// Writer writes daily ledgers and exports into a resolved directory.
// Implements tally.Sink.
type Writer struct {
	// Dir is the ledger directory, already resolved by the caller.
	Dir string

	// ExportDir is where JSON exports go. Empty means alongside the ledger.
	ExportDir string

	// Score is the external lexical-sentiment function consumed by export.
	Score func(word string) int

	// Session is carried into export metadata.
	Session string
}

// WriteDay writes the day's ledger atomically (temp file + rename), so a
// failed write leaves any prior ledger intact. A missing directory is a
// configuration error surfaced to the caller.
func (w *Writer) WriteDay(day string, snap tally.FrequencyMap) error {
	if err := w.checkDir(w.Dir); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(w.Dir, LedgerName(day)), Format(snap))
}

// ReadDay reads the day's ledger. A missing file yields an empty map.
func (w *Writer) ReadDay(day string) (tally.FrequencyMap, error) {
	data, err := os.ReadFile(filepath.Join(w.Dir, LedgerName(day)))
	if err != nil {
		if os.IsNotExist(err) {
			return make(tally.FrequencyMap), nil
		}
		return nil, errors.NewIOFailed("read ledger", err)
	}
	return Parse(data), nil
}

// OpenOrCreate ensures the day's ledger exists and returns its path.
// An existing ledger is left untouched.
func (w *Writer) OpenOrCreate(day string) (string, error) {
	if err := w.checkDir(w.Dir); err != nil {
		return "", err
	}
	path := filepath.Join(w.Dir, LedgerName(day))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := writeAtomic(path, nil); err != nil {
		return "", err
	}
	return path, nil
}

// Latest finds the most recent ledger in the directory.
// Returns ("", "") when none exists — callers treat that as a no-op.
func (w *Writer) Latest() (day, path string) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return "", ""
	}
	days := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if d := DayFromName(e.Name()); d != "" {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return "", ""
	}
	sort.Strings(days)
	day = days[len(days)-1]
	return day, filepath.Join(w.Dir, LedgerName(day))
}

func (w *Writer) checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return errors.NewFolderMissing(dir)
	}
	return nil
}

// writeAtomic writes data to path via a random-suffixed temp file and
// rename, preserving the existing file on failure.
func writeAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewIOFailed("create ledger temp file", err)
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if len(data) > 0 {
		if _, err := file.Write(data); err != nil {
			return errors.NewIOFailed("write ledger", err)
		}
	}
	if err := file.Close(); err != nil {
		file = nil
		return errors.NewIOFailed("close ledger", err)
	}
	file = nil

	if err := os.Rename(tempPath, path); err != nil {
		return errors.NewIOFailed("rename ledger", err)
	}
	success = true
	return nil
}
