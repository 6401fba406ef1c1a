package engine

import (
	"github.com/fsnotify/fsnotify"

	"github.com/ren/shuttle/internal/log"
)

// originWatcher flags a completed scan as stale when the origin root
// changes on disk. It watches the root directory only (not recursively);
// that is enough to catch the common case of media being added to or
// removed from a card. Failure to establish a watch is logged and
// ignored - staleness detection is best-effort.
type originWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// watchOrigin starts watching root and invokes onChange (once per
// change event) from the watcher goroutine. Returns nil when the watch
// could not be established.
func watchOrigin(root string, onChange func()) *originWatcher {
	logger := log.WithComponent("watcher")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("staleness watcher unavailable", "error", err)
		return nil
	}

	err = fsw.Add(root)
	if err != nil {
		logger.Warn("cannot watch origin root", "path", root, "error", err)
		_ = fsw.Close()

		return nil
	}

	w := &originWatcher{watcher: fsw, done: make(chan struct{})}

	go func() {
		for {
			select {
			case <-w.done:
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					onChange()
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}

				logger.Warn("staleness watcher error", "path", root, "error", err)
			}
		}
	}()

	return w
}

// stop tears the watch down. Safe on a nil receiver.
func (w *originWatcher) stop() {
	if w == nil {
		return
	}

	close(w.done)
	_ = w.watcher.Close()
}
