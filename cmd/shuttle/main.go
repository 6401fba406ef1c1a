// Package main is the entry point for the shuttle application.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/ren/shuttle/internal/app"
	"github.com/ren/shuttle/internal/authstore"
	"github.com/ren/shuttle/internal/config"
	"github.com/ren/shuttle/internal/history"
	"github.com/ren/shuttle/internal/log"
	"github.com/ren/shuttle/internal/tui"
	"github.com/ren/shuttle/pkg/filesystem"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Setup(cfg.LogLevel)
	logger := log.WithComponent("main")

	// Grants and the journal are best-effort: the app runs without
	// persistence if the state directory is unusable.
	store, err := authstore.Open(cfg.StateDir)
	if err != nil {
		logger.Warn("folder grants unavailable", "error", err)
	}

	journal, err := history.Open(cfg.StateDir)
	if err != nil {
		logger.Warn("transfer journal unavailable", "error", err)
	}

	defer journal.Close() //nolint:errcheck // best-effort shutdown

	controller := app.New(filesystem.NewRealFileSystem(), store, journal)
	defer controller.Close()

	controller.SetDatedSubfolders(cfg.DatedSubfolders)

	if cfg.Pattern != "" {
		controller.SetScanFilter(cfg.Pattern)
	}

	if cfg.OriginPath != "" {
		controller.SelectOrigin(func() (string, bool) { return cfg.OriginPath, true })
	}

	if cfg.DestPath != "" {
		controller.SelectDestination(func() (string, bool) { return cfg.DestPath, true })
	}

	// Fill whichever roles the flags left unset from persisted grants.
	controller.RestoreGrants()

	model := tui.NewModel(controller)

	// Only use alt screen if stdout is a TTY
	var opts []tea.ProgramOption
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, tea.WithAltScreen())
	}

	p := tea.NewProgram(model, opts...)

	_, err = p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
