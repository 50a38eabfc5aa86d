package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// recordingHandler captures forwarded notifications.
type recordingHandler struct {
	changed []string
	content map[string]string
	deleted []string
	ticks   int
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{content: make(map[string]string)}
}

func (h *recordingHandler) OnContentChanged(identity, content string) {
	h.changed = append(h.changed, identity)
	h.content[identity] = content
}

func (h *recordingHandler) OnDocumentDeleted(identity string) {
	h.deleted = append(h.deleted, identity)
}

func (h *recordingHandler) OnTick() { h.ticks++ }

func newTestWatcher(t *testing.T) (*Watcher, *recordingHandler, string) {
	t.Helper()
	root := t.TempDir()
	h := newRecordingHandler()
	w := New(root, time.Minute, h)
	w.logf = t.Logf
	return w, h, root
}

func TestHandleEvent_WriteForwardsContent(t *testing.T) {
	w, h, root := newTestWatcher(t)

	path := filepath.Join(root, "notes", "a.md")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("the cat sat"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	w.handleEvent(nil, fsnotify.Event{Name: path, Op: fsnotify.Write})

	if len(h.changed) != 1 || h.changed[0] != "notes/a.md" {
		t.Fatalf("changed = %v, want [notes/a.md]", h.changed)
	}
	if h.content["notes/a.md"] != "the cat sat" {
		t.Errorf("content = %q", h.content["notes/a.md"])
	}
}

func TestHandleEvent_RemoveForwardsDeletion(t *testing.T) {
	w, h, root := newTestWatcher(t)
	path := filepath.Join(root, "a.md")

	w.handleEvent(nil, fsnotify.Event{Name: path, Op: fsnotify.Remove})

	if len(h.deleted) != 1 || h.deleted[0] != "a.md" {
		t.Errorf("deleted = %v, want [a.md]", h.deleted)
	}
}

func TestHandleEvent_SkipsOwnArtifacts(t *testing.T) {
	w, h, root := newTestWatcher(t)

	for _, name := range []string{"WordScraper-2026-08-31.md", "WordScraper-2026-08-31.json"} {
		path := filepath.Join(root, name)
		if err := os.WriteFile(path, []byte("cat: 1\n"), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
		w.handleEvent(nil, fsnotify.Event{Name: path, Op: fsnotify.Write})
	}

	if len(h.changed) != 0 {
		t.Errorf("ledger artifacts fed back into the tally: %v", h.changed)
	}
}

func TestHandleEvent_SkipsUntrackedKinds(t *testing.T) {
	w, h, root := newTestWatcher(t)

	files := map[string]string{
		"image.png":  "binary",
		".hidden.md": "secret",
		"draft.tmp":  "temp",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		w.handleEvent(nil, fsnotify.Event{Name: path, Op: fsnotify.Write})
	}

	// Hidden directory components are skipped too.
	hidden := filepath.Join(root, ".obsidian", "workspace.md")
	if err := os.MkdirAll(filepath.Dir(hidden), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(hidden, []byte("internal"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.handleEvent(nil, fsnotify.Event{Name: hidden, Op: fsnotify.Write})

	if len(h.changed) != 0 {
		t.Errorf("untracked files forwarded: %v", h.changed)
	}
}

func TestHandleEvent_OutsideRootIgnored(t *testing.T) {
	w, h, _ := newTestWatcher(t)
	w.handleEvent(nil, fsnotify.Event{Name: "/elsewhere/a.md", Op: fsnotify.Remove})
	if len(h.deleted) != 0 {
		t.Errorf("event outside root forwarded: %v", h.deleted)
	}
}

func TestTrackable(t *testing.T) {
	yes := []string{"a.md", "B.MD", "note.markdown", "plain.txt", "x.text"}
	no := []string{"a.png", "a.pdf", "a", "a.json", "a.db"}
	for _, n := range yes {
		if !trackable(n) {
			t.Errorf("trackable(%q) = false, want true", n)
		}
	}
	for _, n := range no {
		if trackable(n) {
			t.Errorf("trackable(%q) = true, want false", n)
		}
	}
}
