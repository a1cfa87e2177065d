// Package watch reports corpus documents as they change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zohar-ui/ParserZamaActive/internal/corpus"
)

// DefaultDebounce is the quiet period before changed files are reported.
const DefaultDebounce = 100 * time.Millisecond

// Handler receives the documents changed since the last call. Calls never
// overlap.
type Handler func(ctx context.Context, changed []corpus.Entry)

// Watcher watches a corpus directory tree.
type Watcher struct {
	Dir      string
	Patterns []string
	Exclude  []string
	Debounce time.Duration
	Logger   *slog.Logger
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

// Run watches until ctx is cancelled. Writes and creates of matching
// documents are collected and passed to h once no further event arrived
// for the debounce period.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	log := w.logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		pending       = make(map[string]corpus.Entry)
		debounceTimer *time.Timer
		fire          = make(chan struct{}, 1)
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDirRecursive(watcher, event.Name); err != nil {
						log.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}

			entry, ok := corpus.Match(event.Name, w.Patterns, w.Exclude)
			if !ok {
				continue
			}

			pending[entry.Path] = entry

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			changed := make([]corpus.Entry, 0, len(pending))
			for _, e := range pending {
				changed = append(changed, e)
			}
			clear(pending)

			if len(changed) == 0 {
				continue
			}
			slices.SortFunc(changed, func(a, b corpus.Entry) int { return strings.Compare(a.Path, b.Path) })
			log.Debug("documents changed", "count", len(changed))
			h(ctx, changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all non-hidden subdirectories to
// the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
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
		return watcher.Add(path)
	})
}
