// Package tui renders the interactive terminal UI: the record list with
// transfer markers, scan and copy progress, and the keybindings that
// drive the app controller.
package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ren/shuttle/internal/app"
	"github.com/ren/shuttle/internal/engine"
)

// Model is the top-level bubbletea model. All domain state lives in the
// app controller; the model only holds presentation state and the last
// projection snapshot.
type Model struct {
	controller *app.App
	bridge     *EventBridge

	scanProgress progress.Model
	copyProgress progress.Model
	spin         spinner.Model
	search       textinput.Model

	records   []engine.Record
	cursor    int
	offset    int
	searching bool
	width     int
	height    int
	quitting  bool
}

// NewModel creates the TUI model and registers its event bridge with the
// controller.
func NewModel(controller *app.App) *Model {
	bridge := NewEventBridge()
	controller.SetEventEmitter(bridge)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = titleStyle()

	search := textinput.New()
	search.Placeholder = "search basenames"
	search.Prompt = "/ "
	search.CharLimit = 80

	return &Model{
		controller:   controller,
		bridge:       bridge,
		scanProgress: progress.New(progress.WithDefaultGradient()),
		copyProgress: progress.New(progress.WithDefaultGradient()),
		spin:         spin,
		search:       search,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.bridge.ListenCmd(), TickCmd(), m.spin.Tick)
}

// refresh re-derives the projection snapshot and clamps the cursor.
func (m *Model) refresh() {
	m.records = m.controller.Projection()

	if m.cursor >= len(m.records) {
		m.cursor = len(m.records) - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}

	m.clampOffset()
}

// clampOffset keeps the cursor inside the visible window.
func (m *Model) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}

	if m.cursor >= m.offset+visibleRows {
		m.offset = m.cursor - visibleRows + 1
	}

	if m.offset < 0 {
		m.offset = 0
	}
}

// selectedRecord returns the record under the cursor, ok=false when the
// list is empty.
func (m *Model) selectedRecord() (engine.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.records) {
		return engine.Record{}, false
	}

	return m.records[m.cursor], true
}
