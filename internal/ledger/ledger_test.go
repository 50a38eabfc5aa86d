package ledger

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hpungsan/wordscraper/internal/errors"
	"github.com/hpungsan/wordscraper/internal/tally"
)

func TestPathFor(t *testing.T) {
	tests := []struct {
		name   string
		folder string
		want   string
	}{
		{"plain", "journal", "journal/WordScraper-2026-08-31.md"},
		{"trailing separator", "journal/", "journal/WordScraper-2026-08-31.md"},
		{"leading separator", "/journal", "journal/WordScraper-2026-08-31.md"},
		{"both", "/journal/", "journal/WordScraper-2026-08-31.md"},
		{"empty", "", "WordScraper-2026-08-31.md"},
		{"dot", ".", "WordScraper-2026-08-31.md"},
		{"nested", "notes/daily", "notes/daily/WordScraper-2026-08-31.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PathFor(tt.folder, "2026-08-31"); got != filepath.FromSlash(tt.want) {
				t.Errorf("PathFor(%q) = %q, want %q", tt.folder, got, tt.want)
			}
		})
	}
}

func TestDayFromName(t *testing.T) {
	if got := DayFromName("WordScraper-2026-08-31.md"); got != "2026-08-31" {
		t.Errorf("DayFromName = %q, want 2026-08-31", got)
	}
	for _, bad := range []string{"notes.md", "WordScraper-.md", "WordScraper-2026-08-31.json", "WordScraper-aug.md"} {
		if got := DayFromName(bad); got != "" {
			t.Errorf("DayFromName(%q) = %q, want empty", bad, got)
		}
	}
}

func TestIsArtifact(t *testing.T) {
	if !IsArtifact("WordScraper-2026-08-31.md") {
		t.Error("ledger file not recognized as artifact")
	}
	if !IsArtifact("exports/WordScraper-2026-08-31.json") {
		t.Error("export file not recognized as artifact")
	}
	if IsArtifact("notes/todo.md") {
		t.Error("ordinary note flagged as artifact")
	}
}

func TestFormatParse_RoundTrip(t *testing.T) {
	snap := tally.FrequencyMap{"cat": 3, "mat": 1, "sat": 3}
	data := Format(snap)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	want := []string{"cat: 3", "sat: 3", "mat: 1"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Format lines = %v, want %v", lines, want)
	}

	parsed := Parse(data)
	if !reflect.DeepEqual(parsed, snap) {
		t.Errorf("Parse(Format(m)) = %v, want %v", parsed, snap)
	}
}

func TestParse_TolerantOfJunk(t *testing.T) {
	data := []byte("cat: 2\n\ngarbage line\nword: notanumber\nneg: -1\nzero: 0\nok: 1\n")
	got := Parse(data)
	want := tally.FrequencyMap{"cat": 2, "ok": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}

func TestWriteDay_ReadDay(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	snap := tally.FrequencyMap{"cat": 2, "dog": 1}

	if err := w.WriteDay("2026-08-31", snap); err != nil {
		t.Fatalf("WriteDay failed: %v", err)
	}
	got, err := w.ReadDay("2026-08-31")
	if err != nil {
		t.Fatalf("ReadDay failed: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("ReadDay = %v, want %v", got, snap)
	}

	// No stray temp files after a successful write.
	entries, _ := os.ReadDir(w.Dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteDay_MissingFolderIsConfigError(t *testing.T) {
	w := &Writer{Dir: filepath.Join(t.TempDir(), "nope")}
	err := w.WriteDay("2026-08-31", tally.FrequencyMap{"cat": 1})
	if !errors.Is(err, errors.ErrFolderMissing) {
		t.Errorf("err = %v, want FOLDER_MISSING", err)
	}
}

func TestReadDay_MissingFileIsEmpty(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	got, err := w.ReadDay("2026-08-31")
	if err != nil {
		t.Fatalf("ReadDay failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadDay of missing ledger = %v, want empty", got)
	}
}

func TestOpenOrCreate(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}

	path, err := w.OpenOrCreate("2026-08-31")
	if err != nil {
		t.Fatalf("OpenOrCreate failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("created ledger missing: %v", err)
	}

	// Existing content must survive a second call.
	if err := os.WriteFile(path, []byte("cat: 1\n"), 0600); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	again, err := w.OpenOrCreate("2026-08-31")
	if err != nil {
		t.Fatalf("second OpenOrCreate failed: %v", err)
	}
	if again != path {
		t.Errorf("path changed: %s vs %s", again, path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "cat: 1\n" {
		t.Errorf("existing ledger clobbered: %q", data)
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	if day, path := w.Latest(); day != "" || path != "" {
		t.Errorf("Latest on empty dir = (%q, %q), want empty", day, path)
	}

	for _, d := range []string{"2026-08-29", "2026-08-31", "2026-08-30"} {
		if err := w.WriteDay(d, tally.FrequencyMap{"x": 1}); err != nil {
			t.Fatalf("WriteDay(%s): %v", d, err)
		}
	}
	os.WriteFile(filepath.Join(dir, "unrelated.md"), []byte("hi"), 0600)

	day, path := w.Latest()
	if day != "2026-08-31" {
		t.Errorf("Latest day = %s, want 2026-08-31", day)
	}
	if filepath.Base(path) != "WordScraper-2026-08-31.md" {
		t.Errorf("Latest path = %s", path)
	}
}
