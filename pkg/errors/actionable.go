// Package errors provides actionable error handling with context-aware
// suggestions. It enriches standard Go errors with a category and
// user-facing guidance, so the presentation layer can show more than a
// raw errno string when a root is unreadable or a copy fails.
package errors

import "strings"

// Exported constants.
const (
	CategoryAccess    ErrorCategory = "access"
	CategoryCopy      ErrorCategory = "copy"
	CategoryDiskSpace ErrorCategory = "disk_space"
	CategoryGrant     ErrorCategory = "grant"
	CategoryPath      ErrorCategory = "path"
	CategoryUnknown   ErrorCategory = "unknown"
)

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	OriginalError() string
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError creates a new ActionableError with the given details.
func NewActionableError(
	originalError string,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		originalError: originalError,
		category:      category,
		suggestions:   suggestions,
		affectedPath:  affectedPath,
	}
}

// FormatSuggestions formats the suggestions from an ActionableError as a
// bulleted list for display. Returns empty string if the error is nil or
// has no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError)
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	originalError string
	category      ErrorCategory
	suggestions   []string
	affectedPath  string
}

// AffectedPath returns the file path affected by this error.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Error implements the error interface.
func (e *actionableError) Error() string {
	return e.originalError
}

// OriginalError returns the original error message.
func (e *actionableError) OriginalError() string {
	return e.originalError
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}
