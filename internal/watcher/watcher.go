// Package watcher turns file system changes to the dashboard inputs into
// debounced re-render notifications.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Sources reported to the callback.
const (
	SourceReminders = "reminders"
	SourceArtwork   = "artwork"
	SourceConfig    = "config"
)

// DefaultDebounce coalesces editor save bursts into one notification.
const DefaultDebounce = 500 * time.Millisecond

// Target is one watched input. A file target is watched through its parent
// directory so atomic replace-by-rename saves are seen. A directory target
// is watched recursively.
type Target struct {
	Source string
	Path   string
	Dir    bool
	// Match filters directory entries by base name. Nil accepts all.
	Match func(name string) bool
}

// Callback is called once per debounced burst with the source and the last
// changed path.
type Callback func(source, path string)

// Watcher watches a set of targets.
type Watcher struct {
	targets  []Target
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(targets []Target, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{targets: targets, debounce: debounce, logger: logger}
}

// Run processes events until ctx is cancelled. Targets whose path does not
// exist yet are skipped with a warning.
func (w *Watcher) Run(ctx context.Context, cb Callback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fw.Close()

	for i, t := range w.targets {
		abs, err := filepath.Abs(t.Path)
		if err != nil {
			return fmt.Errorf("watcher: resolve %s: %w", t.Path, err)
		}
		w.targets[i].Path = abs
		if t.Dir {
			err = addDirsRecursive(fw, abs)
		} else {
			err = fw.Add(filepath.Dir(abs))
		}
		if err != nil {
			w.logger.Warn("watcher: target not watched",
				slog.String("source", t.Source),
				slog.String("path", abs),
				slog.String("error", err.Error()))
		}
	}

	w.logger.Info("watcher: started", slog.Int("targets", len(w.targets)))

	fired := make(chan string)
	timers := make(map[string]*time.Timer)
	last := make(map[string]string)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	schedule := func(source string) {
		if t, ok := timers[source]; ok {
			t.Reset(w.debounce)
			return
		}
		timers[source] = time.AfterFunc(w.debounce, func() {
			select {
			case fired <- source:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher: stopped")
			return nil

		case source := <-fired:
			path := last[source]
			w.logger.Debug("watcher: change", slog.String("source", source), slog.String("path", path))
			if cb != nil {
				cb(source, path)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if w.underDirTarget(ev.Name) {
						if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
							w.logger.Warn("watcher: add new dir failed",
								slog.String("path", ev.Name),
								slog.String("error", addErr.Error()))
						}
					}
					continue
				}
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			t, ok := w.match(ev.Name)
			if !ok {
				continue
			}
			last[t.Source] = ev.Name
			schedule(t.Source)

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// match returns the target a changed path belongs to.
func (w *Watcher) match(path string) (Target, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return Target{}, false
	}
	for _, t := range w.targets {
		if t.Dir {
			if !within(t.Path, path) {
				continue
			}
			if t.Match == nil || t.Match(name) {
				return t, true
			}
			continue
		}
		if path == t.Path {
			return t, true
		}
	}
	return Target{}, false
}

func (w *Watcher) underDirTarget(path string) bool {
	for _, t := range w.targets {
		if t.Dir && within(t.Path, path) {
			return true
		}
	}
	return false
}

func within(root, path string) bool {
	return strings.HasPrefix(path, root+string(os.PathSeparator))
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
