// Package watcher reports saves of exercise files.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/work"
)

// DefaultDebounce is used when New is given zero.
const DefaultDebounce = 500 * time.Millisecond

// Watcher is a unit of work sending one FileSaved event per burst of writes
// to a single file.
type Watcher struct {
	path     string
	debounce time.Duration
}

func New(path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: filepath.Clean(path), debounce: debounce}
}

func (w *Watcher) Kind() work.Kind { return work.KindFileWatch }

// Run watches the parent directory of the file, since most editors save by
// writing a temporary file and renaming it over the original.
func (w *Watcher) Run(ctx context.Context, events work.Sink) bool {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		events.Send(ctx, model.WatcherFailed{Path: w.path, Err: err.Error()})
		return false
	}
	defer func() {
		if err := fw.Close(); err != nil {
			slog.WarnContext(ctx, "closing file watcher", "path", w.path, "error", err)
		}
	}()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		slog.WarnContext(ctx, "watching file failed", "path", w.path, "error", err)
		events.Send(ctx, model.WatcherFailed{Path: w.path, Err: err.Error()})
		return false
	}
	slog.DebugContext(ctx, "watching file", "path", w.path, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return true
		case ev, ok := <-fw.Events:
			if !ok {
				return true
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return true
			}
			slog.WarnContext(ctx, "file watcher error", "path", w.path, "error", err)
		case <-timer.C:
			slog.DebugContext(ctx, "file saved", "path", w.path)
			events.Send(ctx, model.FileSaved{Path: w.path})
		}
	}
}
