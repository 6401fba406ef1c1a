package tui

import (
	"fmt"
	"strings"

	"github.com/ren/shuttle/internal/engine"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle().Render("shuttle"))
	b.WriteString("\n")
	b.WriteString(m.viewPaths())
	b.WriteString("\n")

	if message := m.controller.ErrorMessage(); message != "" {
		b.WriteString(errorStyle().Render(message))
		b.WriteString("\n")
	}

	b.WriteString(m.viewScanStatus())
	b.WriteString(m.viewCopyStatus())
	b.WriteString(boxStyle().Render(m.viewList()))
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	b.WriteString(m.viewHelp())

	return b.String()
}

func (m *Model) viewPaths() string {
	origin := m.controller.OriginPath()
	if origin == "" {
		origin = "(origin not set)"
	}

	dest := m.controller.DestPath()
	if dest == "" {
		dest = "(destination not set)"
	}

	line := fmt.Sprintf("%s -> %s", origin, dest)
	if m.controller.DatedSubfolders() {
		line += "  [dated subfolders]"
	}

	return dimStyle().Render(line)
}

func (m *Model) viewScanStatus() string {
	state := m.controller.ScanState()

	switch state.Status {
	case engine.StatusIdle:
		return dimStyle().Render("press s to scan") + "\n"

	case engine.StatusRunning:
		counts := fmt.Sprintf(" %d/%d", state.Progress.ScannedCount, state.Progress.TotalCount)
		return m.spin.View() + " scanning " +
			m.scanProgress.ViewAs(state.Progress.Ratio) + counts + "\n"

	case engine.StatusCancelled:
		return dimStyle().Render("scan cancelled") + "\n"

	case engine.StatusFailed:
		return errorStyle().Render("scan failed") + "\n"

	case engine.StatusCompleted:
		line := fmt.Sprintf("scanned %d files", state.Progress.ScannedCount)
		if state.Stale {
			line += staleStyle().Render("  (origin changed, press s to rescan)")
		}

		return line + "\n"
	}

	return ""
}

func (m *Model) viewCopyStatus() string {
	state := m.controller.CopyState()
	if state.Status != engine.CopyRunning {
		return ""
	}

	return fmt.Sprintf("copying %s %d/%d\n",
		m.copyProgress.ViewAs(state.Progress), state.CopiedCount, state.TotalToCopy)
}

func (m *Model) viewList() string {
	if len(m.records) == 0 {
		return dimStyle().Render("no files")
	}

	var b strings.Builder

	end := m.offset + visibleRows
	if end > len(m.records) {
		end = len(m.records)
	}

	for i := m.offset; i < end; i++ {
		record := m.records[i]

		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle().Render("> ")
		}

		check := "[ ]"
		if record.Selected {
			check = "[x]"
		}

		marker := "  "
		if record.ExistsInDestination {
			marker = transferredStyle().Render("✓ ")
		}

		b.WriteString(cursor + check + " " + marker + record.Basename)

		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if end < len(m.records) {
		b.WriteString("\n")
		b.WriteString(dimStyle().Render(fmt.Sprintf("… %d more", len(m.records)-end)))
	}

	return b.String()
}

func (m *Model) viewHelp() string {
	keys := "space select · a all · / search · u untransferred · t type · o order · d dated · s scan · x cancel · c copy · q quit"
	if m.scanRunning() {
		keys = "x cancel · q quit"
	}

	return dimStyle().Render(keys)
}
