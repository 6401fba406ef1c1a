// Package engine implements the scan/diff and copy machinery: walking the
// origin and destination trees, tagging origin files with transfer status,
// and copying a selected subset with progress reporting.
package engine

import (
	"time"

	"github.com/google/uuid"
)

// Record is one discovered, non-directory origin entry. Its identity is a
// process-local unique id, stable for UI binding; two records may share a
// basename, so the id is never derived from the path.
type Record struct {
	// ID is the process-local unique identifier
	ID string

	// Path is the absolute location in the origin tree
	Path string

	// Basename is the final path segment (filename with extension)
	Basename string

	// CreatedAt is the file creation time, nil when unavailable
	CreatedAt *time.Time

	// ExistsInDestination is true iff some entry anywhere in the
	// destination tree has the same basename. Fixed at scan time for
	// the record's generation.
	ExistsInDestination bool

	// Selected marks user intent to copy; mutated only via the
	// coordinator's selection methods
	Selected bool
}

// newRecordID returns a fresh process-local record id.
func newRecordID() string {
	return uuid.NewString()
}

// Eligible reports whether the record qualifies for a copy batch.
func (r Record) Eligible() bool {
	return r.Selected && !r.ExistsInDestination
}
