package engine

import (
	"path/filepath"
	"sort"
	"strings"
)

// Query holds the user-controlled filter and sort settings for the
// result-set projection.
type Query struct {
	// SearchText keeps records whose basename contains it,
	// case-insensitively. Empty keeps everything.
	SearchText string

	// ShowOnlyUntransferred drops records already in the destination.
	ShowOnlyUntransferred bool

	// SortByFileType orders by extension instead of basename.
	SortByFileType bool

	// SortAscending flips the sort direction.
	SortAscending bool
}

// Project derives the filtered, ordered projection of records for the
// given query. Pure and side-effect-free, so it can run on every
// keystroke or toggle without triggering I/O. Ties sort by basename,
// then path, so repeated calls give a stable order.
func Project(records []Record, query Query) []Record {
	search := strings.ToLower(query.SearchText)

	projected := make([]Record, 0, len(records))

	for _, record := range records {
		if query.ShowOnlyUntransferred && record.ExistsInDestination {
			continue
		}

		if search != "" && !strings.Contains(strings.ToLower(record.Basename), search) {
			continue
		}

		projected = append(projected, record)
	}

	sort.SliceStable(projected, func(i, j int) bool {
		less := recordLess(projected[i], projected[j], query.SortByFileType)
		if query.SortAscending {
			return less
		}

		return recordLess(projected[j], projected[i], query.SortByFileType)
	})

	return projected
}

// recordLess compares two records under the current sort key.
func recordLess(a, b Record, byFileType bool) bool {
	if byFileType {
		extA := strings.ToLower(filepath.Ext(a.Basename))
		extB := strings.ToLower(filepath.Ext(b.Basename))

		if extA != extB {
			return extA < extB
		}
	}

	nameA := strings.ToLower(a.Basename)
	nameB := strings.ToLower(b.Basename)

	if nameA != nameB {
		return nameA < nameB
	}

	return a.Path < b.Path
}
