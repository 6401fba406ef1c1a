package filesystem

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/kr/fs"
)

// Entry contains metadata about one discovered tree entry.
// This is our own type (not os.FileInfo) to make it easier to work with.
type Entry struct {
	// Path is the entry's location, rooted at the walk root
	Path string

	// Basename is the final path segment (filename with extension)
	Basename string

	// IsDir indicates if this is a directory
	IsDir bool

	// CreatedAt is the creation (birth) time, nil when the platform or
	// filesystem cannot supply one
	CreatedAt *time.Time
}

// Walker is a lazy iterator over the entries of a directory tree.
// It provides a simple Next pattern for traversing tree contents.
type Walker interface {
	// Next advances to the next entry and returns its info.
	// Returns (Entry{}, false) when the walk is exhausted or cancelled.
	Next() (Entry, bool)

	// Err returns any error that terminated the walk outright.
	// Per-entry enumeration errors are logged and skipped, never returned.
	Err() error
}

// realWalker implements Walker on top of kr/fs, which steps one entry at
// a time. Stepping lazily gives us a cancellation poll point between
// entries and lets a single unreadable entry be skipped without
// abandoning the rest of the tree.
type realWalker struct {
	root   string
	walker *fs.Walker
	cancel <-chan struct{}
}

func newRealWalker(root string, cancel <-chan struct{}) *realWalker {
	return &realWalker{
		root:   root,
		walker: fs.Walk(root),
		cancel: cancel,
	}
}

// Next advances to the next visible entry. Hidden entries (dot-prefixed
// basenames) are skipped; hidden directories are pruned whole.
func (w *realWalker) Next() (Entry, bool) {
	for {
		if w.cancelled() {
			return Entry{}, false
		}

		if !w.walker.Step() {
			return Entry{}, false
		}

		path := w.walker.Path()

		err := w.walker.Err()
		if err != nil {
			// One bad entry never aborts the walk
			slog.Warn("skipping unreadable entry", "path", path, "error", err)
			continue
		}

		// Skip the root directory itself
		if path == w.root {
			continue
		}

		info := w.walker.Stat()

		basename := filepath.Base(path)
		if strings.HasPrefix(basename, ".") {
			if info.IsDir() {
				w.walker.SkipDir()
			}

			continue
		}

		return Entry{
			Path:      path,
			Basename:  basename,
			IsDir:     info.IsDir(),
			CreatedAt: birthTime(path, info),
		}, true
	}
}

// Err returns nil: enumeration errors are skipped, and cancellation ends
// the sequence without error.
func (w *realWalker) Err() error {
	return nil
}

func (w *realWalker) cancelled() bool {
	if w.cancel == nil {
		return false
	}

	select {
	case <-w.cancel:
		return true
	default:
		return false
	}
}
