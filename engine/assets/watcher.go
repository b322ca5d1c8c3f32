package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/passgraph/engine/assets/loaders"
	"github.com/spaghettifunk/passgraph/engine/core"
)

/** @brief A pass library file that changed on disk. */
type LibraryChange struct {
	Path string
	Op   fsnotify.Op
}

// Removed reports whether the file is gone.
func (c LibraryChange) Removed() bool {
	return c.Op&(fsnotify.Remove|fsnotify.Rename) != 0
}

/**
 * @brief Watches a pass library directory (recursively) and reports the
 * library files that changed. Bursts of events on the same file are merged
 * into a single change.
 */
type LibraryWatcher struct {
	fsnotify *fsnotify.Watcher
	debounce time.Duration

	changes chan LibraryChange
	done    chan struct{}

	mutex    sync.Mutex
	isClosed bool
}

func NewLibraryWatcher(dir string, debounce time.Duration) (*LibraryWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	lw := &LibraryWatcher{
		fsnotify: fsWatch,
		debounce: debounce,
		changes:  make(chan LibraryChange, 64),
		done:     make(chan struct{}),
	}
	if err := lw.watchRecursive(dir); err != nil {
		fsWatch.Close()
		return nil, err
	}
	go lw.start()
	return lw, nil
}

// Changes delivers the merged changes. It is closed by Close.
func (lw *LibraryWatcher) Changes() <-chan LibraryChange {
	return lw.changes
}

func (lw *LibraryWatcher) Close() error {
	lw.mutex.Lock()
	defer lw.mutex.Unlock()
	if lw.isClosed {
		return errors.New("library watcher already closed")
	}
	lw.isClosed = true
	close(lw.done)
	return lw.fsnotify.Close()
}

func (lw *LibraryWatcher) start() {
	defer close(lw.changes)

	timer := time.NewTimer(lw.debounce)
	timer.Stop()
	pending := make(map[string]fsnotify.Op)

	for {
		select {
		case e, ok := <-lw.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := lw.watchRecursive(e.Name); err != nil {
						core.LogError("library watcher: failed to watch %s: %s", e.Name, err)
					}
					continue
				}
			}
			if !loaders.IsLibraryFile(e.Name) || e.Op == fsnotify.Chmod {
				continue
			}
			pending[e.Name] |= e.Op
			timer.Reset(lw.debounce)

		case err, ok := <-lw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("library watcher: %s", err)

		case <-timer.C:
			if !lw.flush(pending) {
				return
			}
			clear(pending)

		case <-lw.done:
			return
		}
	}
}

// flush sends the pending changes in path order. It returns false once the
// watcher is closed.
func (lw *LibraryWatcher) flush(pending map[string]fsnotify.Op) bool {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	for _, p := range paths {
		select {
		case lw.changes <- LibraryChange{Path: p, Op: pending[p]}:
		case <-lw.done:
			return false
		}
	}
	return true
}

// watchRecursive adds the directory and all its sub-directories to the watch list.
func (lw *LibraryWatcher) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return lw.fsnotify.Add(path)
		}
		return nil
	})
}
