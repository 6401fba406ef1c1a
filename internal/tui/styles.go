package tui

import "github.com/charmbracelet/lipgloss"

const (
	// visibleRows is how many records the list shows at once.
	visibleRows = 15

	accentColorCode = "205"
	dimColorCode    = "240"
	errorColorCode  = "196"
	okColorCode     = "42"
	staleColorCode  = "214"
)

// AccentColor is the highlight color used across the UI.
func AccentColor() lipgloss.Color { return lipgloss.Color(accentColorCode) }

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(AccentColor())
}

func dimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(dimColorCode))
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(errorColorCode))
}

func transferredStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(okColorCode))
}

func staleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(staleColorCode))
}

func cursorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(AccentColor())
}

func boxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AccentColor()).
		Padding(0, 1)
}
