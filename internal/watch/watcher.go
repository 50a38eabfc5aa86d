// Package watch adapts filesystem events into the engine's inbound
// notification interface: every save of a tracked file becomes an
// editor-change notification carrying the file's full content.
package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hpungsan/wordscraper/internal/ledger"
)

// Handler is the inbound event interface the engine exposes.
type Handler interface {
	OnContentChanged(identity, content string)
	OnDocumentDeleted(identity string)
	OnTick()
}

// MaxFileBytes caps how much of a changed file is read. Files beyond the
// cap are skipped rather than truncated; a truncated snapshot would
// produce a bogus mass-deletion delta on the next full read.
const MaxFileBytes = 8 << 20

// trackedExts lists the file extensions treated as editable text.
var trackedExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".text":     true,
}

// Watcher tails a folder tree and forwards change notifications.
type Watcher struct {
	root    string
	tick    time.Duration
	handler Handler
	logf    func(format string, args ...any)
}

// New creates a watcher over root. tick drives the handler's OnTick
// (rollover polling).
func New(root string, tick time.Duration, handler Handler) *Watcher {
	if tick <= 0 {
		tick = 30 * time.Second
	}
	return &Watcher{root: root, tick: tick, handler: handler, logf: log.Printf}
}

// Run watches until the context is cancelled. Subdirectories present at
// start or created later are added to the watch set.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.handler.OnTick()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logf("watch error: %v", err)
		}
	}
}

// handleEvent maps one fsnotify event onto the handler interface.
func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) {
	identity := w.identity(ev.Name)
	if identity == "" {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil {
			// Raced with a delete; the Remove event will follow.
			return
		}
		if info.IsDir() {
			if ev.Op.Has(fsnotify.Create) && fw != nil {
				if err := w.addTree(fw, ev.Name); err != nil {
					w.logf("watch add %s: %v", ev.Name, err)
				}
			}
			return
		}
		if !trackable(ev.Name) {
			return
		}
		if info.Size() > MaxFileBytes {
			w.logf("skipping oversized file %s (%d bytes)", identity, info.Size())
			return
		}
		data, err := os.ReadFile(ev.Name)
		if err != nil {
			w.logf("read %s: %v", identity, err)
			return
		}
		w.handler.OnContentChanged(identity, string(data))

	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		if !trackable(ev.Name) {
			return
		}
		w.handler.OnDocumentDeleted(identity)
	}
}

// identity derives the document identity: the slash-separated path
// relative to the watch root. Returns "" for paths that must not feed the
// tally (the tool's own artifacts, hidden files, temp files).
func (w *Watcher) identity(name string) string {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	rel = filepath.ToSlash(rel)

	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") {
		return ""
	}
	if ledger.IsArtifact(base) {
		return ""
	}
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return ""
		}
	}
	return rel
}

// trackable reports whether the file extension is editable text.
func trackable(name string) bool {
	return trackedExts[strings.ToLower(filepath.Ext(name))]
}

// addTree registers dir and all its subdirectories, skipping hidden ones.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
