package engine

import (
	"github.com/ren/shuttle/pkg/filesystem"
)

// Differ builds the comparison data for one scan: a complete basename
// membership set from the destination tree, then a streaming pass over
// the origin tree producing one Record per non-directory entry.
//
// Membership is by exact basename, flat across the whole destination
// tree: two origin files sharing a basename in different subdirectories
// get the same verdict if that basename exists anywhere under the
// destination root. Intentional, if surprising, for flat media libraries.
type Differ struct {
	fs filesystem.FileSystem
}

// NewDiffer creates a Differ over the given filesystem.
func NewDiffer(fs filesystem.FileSystem) *Differ {
	return &Differ{fs: fs}
}

// CollectDestinationBasenames fully drains a walk of the destination
// root, collecting the basenames of its non-directory entries. The
// membership set must be complete before origin comparison begins, so a
// cancellation mid-drain returns ok=false and the caller must not start
// the origin pass.
func (d *Differ) CollectDestinationBasenames(root string, cancel <-chan struct{}) (map[string]struct{}, bool) {
	names := make(map[string]struct{})

	walker := d.fs.Walk(root, cancel)
	for {
		entry, more := walker.Next()
		if !more {
			break
		}

		if entry.IsDir {
			continue
		}

		names[entry.Basename] = struct{}{}
	}

	select {
	case <-cancel:
		return nil, false
	default:
		return names, true
	}
}

// RecordFor tags one origin entry with its destination membership,
// assigning a fresh process-local id.
func (d *Differ) RecordFor(entry filesystem.Entry, destNames map[string]struct{}) Record {
	_, exists := destNames[entry.Basename]

	return Record{
		ID:                  newRecordID(),
		Path:                entry.Path,
		Basename:            entry.Basename,
		CreatedAt:           entry.CreatedAt,
		ExistsInDestination: exists,
	}
}
