// Package watcher turns filesystem change notifications under the
// collection roots into debounced, scoped scan triggers.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"romdex/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of changes to
// settle before triggering. Copying a large set produces hundreds of events;
// one scan should cover them all.
const DefaultDebounce = 2 * time.Second

// TriggerFunc receives one root and the relative sub-paths that changed
// under it. A sub-path of "." means changes directly at the root.
type TriggerFunc func(ctx context.Context, root string, subs []string)

// Watcher observes the collection roots recursively. New directories are
// picked up as they appear.
type Watcher struct {
	roots    []string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher over the given roots.
func New(roots []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		roots:    roots,
		debounce: debounce,
		logger:   logging.WithComponent(logger, "watcher"),
	}
}

// Run watches until the context ends. The trigger is invoked from the watch
// loop, so a long-running trigger delays, but never loses, later events.
func (w *Watcher) Run(ctx context.Context, trigger TriggerFunc) error {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer notifier.Close()

	for _, root := range w.roots {
		if err := watchTree(notifier, root); err != nil {
			return err
		}
	}

	// pending maps root to the set of changed relative sub-paths.
	pending := make(map[string]map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-notifier.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchTree(notifier, event.Name); err != nil {
						w.logger.Warn("watch new directory", logging.String("path", event.Name), logging.Error(err))
					}
				}
			}
			root, sub := w.locate(event.Name)
			if root == "" {
				continue
			}
			set, ok := pending[root]
			if !ok {
				set = make(map[string]struct{})
				pending[root] = set
			}
			set[sub] = struct{}{}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			timer = nil
			batch := pending
			pending = make(map[string]map[string]struct{})
			for root, set := range batch {
				subs := make([]string, 0, len(set))
				for sub := range set {
					subs = append(subs, sub)
				}
				sort.Strings(subs)
				w.logger.Info("changes settled",
					logging.String("root", root),
					logging.Int("paths", len(subs)))
				trigger(ctx, root, subs)
			}

		case watchErr, ok := <-notifier.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(watchErr))
		}
	}
}

// locate maps an event path to its root and the relative sub-path of the
// directory holding the change. Removed files resolve to their parent, so a
// re-scan of the parent covers the survivors.
func (w *Watcher) locate(path string) (root, sub string) {
	for _, candidate := range w.roots {
		if path != candidate && !strings.HasPrefix(path, candidate+string(filepath.Separator)) {
			continue
		}
		rel, err := filepath.Rel(candidate, filepath.Dir(path))
		if err != nil {
			return "", ""
		}
		return candidate, rel
	}
	return "", ""
}

// watchTree registers a directory and all of its descendants.
func watchTree(notifier *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The directory may have vanished between the event and the walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := notifier.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
