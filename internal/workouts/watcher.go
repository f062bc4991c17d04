package workouts

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lowaak/smart-trainer/tabata-app/internal/go_func_utils"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a Store whenever its file is changed by another process,
// e.g. the `tabata workouts` subcommands while the UI is open.
type Watcher struct {
	store *Store

	mu       sync.Mutex
	debounce *time.Timer
}

func NewWatcher(store *Store) *Watcher {
	return &Watcher{store: store}
}

// Run watches the directory holding the store file until ctx is done.
// Editors and our own writes replace the file, so the directory is watched
// rather than the file itself.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create workouts watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.store.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.store.logger.Printf("WorkoutWatcher: Watching %s", w.store.Path())

	target := filepath.Base(w.store.Path())
	for {
		select {
		case <-ctx.Done():
			w.stopDebounce()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debounceReload(reloadDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.store.logger.Printf("WorkoutWatcher: Error: %v", err)
		}
	}
}

func (w *Watcher) debounceReload(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = go_func_utils.SafeAfterFunc(w.store.logger, delay, func() {
		if err := w.store.Reload(); err != nil {
			w.store.logger.Printf("WorkoutWatcher: Reload failed: %v", err)
		}
	})
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}
