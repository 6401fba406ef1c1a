package engine

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobFilter restricts scans to origin files whose basename matches a
// glob pattern. An empty pattern matches all files.
type GlobFilter struct {
	normalizedPattern string
	isEmpty           bool
}

// NewGlobFilter creates a new GlobFilter with the given pattern
func NewGlobFilter(pattern string) *GlobFilter {
	return &GlobFilter{
		normalizedPattern: strings.ToLower(pattern),
		isEmpty:           pattern == "",
	}
}

// ShouldInclude returns true if the basename matches the glob pattern.
// Matching is case-insensitive.
func (f *GlobFilter) ShouldInclude(basename string) bool {
	if f.isEmpty {
		return true
	}

	matched, err := doublestar.Match(f.normalizedPattern, strings.ToLower(basename))
	if err != nil {
		// If pattern is invalid, don't match
		return false
	}

	return matched
}
