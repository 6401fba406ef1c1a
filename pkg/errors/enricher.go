package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Enricher enriches standard errors with actionable suggestions.
type Enricher interface {
	Enrich(err error, affectedPath string) error
}

// NewEnricher creates a new Enricher with the default category patterns.
func NewEnricher() Enricher {
	return &enricher{
		patterns: map[ErrorCategory][]string{
			CategoryAccess: {
				"permission denied",
				"access denied",
				"operation not permitted",
			},
			CategoryDiskSpace: {
				"no space left on device",
				"disk full",
				"quota exceeded",
			},
			CategoryPath: {
				"no such file or directory",
				"file not found",
				"not a directory",
			},
			CategoryGrant: {
				"grant",
				"stale token",
			},
			CategoryCopy: {
				"short write",
				"input/output error",
				"i/o error",
			},
		},
	}
}

// enricher is the concrete implementation of Enricher.
type enricher struct {
	patterns map[ErrorCategory][]string
}

// Enrich takes a standard error and enriches it with a category and
// actionable suggestions. If the error is already an ActionableError, it
// is returned unchanged.
func (e *enricher) Enrich(err error, affectedPath string) error {
	var actionableErr ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr
	}

	errMsg := err.Error()
	category := e.match(errMsg)

	return NewActionableError(
		errMsg,
		category,
		suggestionsFor(category, affectedPath),
		affectedPath,
	)
}

// match returns the error category based on substring matching.
func (e *enricher) match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for category, patterns := range e.patterns {
		for _, pattern := range patterns {
			if strings.Contains(lowerMsg, pattern) {
				return category
			}
		}
	}

	return CategoryUnknown
}

// suggestionsFor returns user guidance for the given category.
func suggestionsFor(category ErrorCategory, path string) []string {
	switch category {
	case CategoryAccess:
		suggestions := []string{
			"Ensure you have read permissions for the chosen folder",
		}
		if path != "" {
			suggestions = append(suggestions, fmt.Sprintf("Check permissions with 'ls -la %s'", path))
		}

		return append(suggestions, "Re-select the folder to refresh its access grant")
	case CategoryGrant:
		return []string{
			"The saved folder authorization could not be restored",
			"Re-select the folder from the picker to store a fresh grant",
		}
	case CategoryDiskSpace:
		suggestions := []string{
			"Free up space on the destination device",
			"Check available space with 'df -h'",
		}
		if path != "" {
			suggestions = append(suggestions, "Verify disk usage for the filesystem containing "+path)
		}

		return suggestions
	case CategoryPath:
		suggestions := []string{
			"Verify the path exists and is spelled correctly",
		}
		if path != "" {
			suggestions = append(suggestions, "Check if the path exists: "+path)
		}

		return suggestions
	case CategoryCopy:
		return []string{
			"Check if there is sufficient disk space on the destination",
			"Verify the origin and destination media are functioning correctly",
			"Try the copy again - this may be a transient I/O error",
		}
	default:
		suggestions := []string{
			"Check the error message for more details",
			"Verify file and directory permissions",
		}
		if path != "" {
			suggestions = append(suggestions, "Verify the path is accessible: "+path)
		}

		return suggestions
	}
}
