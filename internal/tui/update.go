package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ren/shuttle/internal/engine"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scanProgress.Width = clampProgressWidth(msg.Width)
		m.copyProgress.Width = clampProgressWidth(msg.Width)

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EngineEventMsg:
		m.refresh()
		return m, m.bridge.ListenCmd()

	case TickMsg:
		m.refresh()
		return m, TickCmd()

	case progress.FrameMsg:
		scanModel, scanCmd := m.scanProgress.Update(msg)
		m.scanProgress = scanModel.(progress.Model)
		copyModel, copyCmd := m.copyProgress.Update(msg)
		m.copyProgress = copyModel.(progress.Model)

		return m, tea.Batch(scanCmd, copyCmd)

	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)

		return m, cmd
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// While the search field is focused every other key feeds it.
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}

	case "down", "j":
		if m.cursor < len(m.records)-1 {
			m.cursor++
			m.clampOffset()
		}

	case " ":
		if record, ok := m.selectedRecord(); ok {
			m.controller.ToggleSelected(record.ID)
			m.refresh()
		}

	case "a":
		m.controller.SelectAllUntransferred()
		m.refresh()

	case "/":
		m.searching = true
		return m, m.search.Focus()

	case "u":
		m.controller.SetShowOnlyUntransferred(!m.controller.Query().ShowOnlyUntransferred)
		m.refresh()

	case "t":
		m.controller.SetSortByFileType(!m.controller.Query().SortByFileType)
		m.refresh()

	case "o":
		m.controller.SetSortAscending(!m.controller.Query().SortAscending)
		m.refresh()

	case "d":
		m.controller.SetDatedSubfolders(!m.controller.DatedSubfolders())

	case "s":
		m.controller.StartScan()

	case "x":
		m.controller.CancelScan()
		m.refresh()

	case "c":
		m.controller.StartCopy()
	}

	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()

		return m, nil

	case "enter":
		m.searching = false
		m.search.Blur()
		m.controller.SetSearchText(m.search.Value())
		m.refresh()

		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	// Live filtering: the projection tracks every keystroke.
	m.controller.SetSearchText(m.search.Value())
	m.refresh()

	return m, cmd
}

// scanRunning reports whether a scan is currently in flight.
func (m *Model) scanRunning() bool {
	return m.controller.ScanState().Status == engine.StatusRunning
}

func clampProgressWidth(width int) int {
	const margin = 10

	w := width - margin
	if w < 10 {
		w = 10
	}

	if w > 60 {
		w = 60
	}

	return w
}
