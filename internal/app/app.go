// Package app wires the pieces together: it owns the folder grants, the
// scan coordinator, the copy engine, and the view query, and exposes the
// operations the presentation layer calls. All methods are safe for
// concurrent use.
package app

import (
	stderrors "errors"
	"sync"

	"github.com/ren/shuttle/internal/authstore"
	"github.com/ren/shuttle/internal/engine"
	"github.com/ren/shuttle/internal/history"
	"github.com/ren/shuttle/internal/log"
	"github.com/ren/shuttle/pkg/errors"
	"github.com/ren/shuttle/pkg/fileops"
	"github.com/ren/shuttle/pkg/filesystem"
)

// FolderChooser asks the user to pick a folder. It reports ok=false
// when the user picked nothing, which callers treat as a silent no-op.
type FolderChooser func() (path string, ok bool)

// App is the session controller.
type App struct {
	store       *authstore.Store
	journal     *history.Journal
	coordinator *engine.Coordinator
	copier      *engine.Copier
	enricher    errors.Enricher
	downstream  engine.EventEmitter

	mu              sync.Mutex
	originPath      string
	destPath        string
	originHandle    *authstore.Handle
	destHandle      *authstore.Handle
	datedSubfolders bool
	query           engine.Query
	errorMessage    string

	closeOnce sync.Once
}

// New creates the controller. store and journal may be nil, in which
// case grants are not persisted and copies are not journaled.
func New(fs filesystem.FileSystem, store *authstore.Store, journal *history.Journal) *App {
	a := &App{
		store:       store,
		journal:     journal,
		coordinator: engine.NewCoordinator(fs),
		enricher:    errors.NewEnricher(),
		query:       engine.Query{SortAscending: true},
	}

	a.copier = engine.NewCopier(fileops.NewFileOps(fs), journal, a.StartScan)
	a.coordinator.SetEventEmitter(a)
	a.copier.SetEventEmitter(a)

	return a
}

// SetEventEmitter forwards engine events to the presentation layer.
func (a *App) SetEventEmitter(emitter engine.EventEmitter) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.downstream = emitter
}

// Emit intercepts engine events to maintain the user-facing error slot,
// then forwards them downstream. Implements engine.EventEmitter.
func (a *App) Emit(event engine.Event) {
	switch e := event.(type) {
	case engine.ScanStarted:
		a.mu.Lock()
		a.errorMessage = ""
		a.mu.Unlock()
	case engine.ScanFinished:
		if e.State.Status == engine.StatusFailed {
			a.mu.Lock()
			enriched := a.enricher.Enrich(stderrors.New(e.State.Message), a.originPath)
			a.errorMessage = enriched.Error()

			if suggestions := errors.FormatSuggestions(enriched); suggestions != "" {
				a.errorMessage += "\n" + suggestions
			}
			a.mu.Unlock()
		}
	}

	a.mu.Lock()
	downstream := a.downstream
	a.mu.Unlock()

	if downstream != nil {
		downstream.Emit(event)
	}
}

// RestoreGrants resolves persisted folder grants for any role not
// already set (an explicit selection wins over a restored grant) and,
// when both roles end up known, starts the initial scan.
func (a *App) RestoreGrants() {
	if a.store == nil {
		return
	}

	a.mu.Lock()

	if a.originPath == "" {
		if handle := a.store.Resolve(authstore.RoleOrigin); handle != nil {
			a.originHandle = handle
			a.originPath = handle.Path()
		}
	}

	if a.destPath == "" {
		if handle := a.store.Resolve(authstore.RoleDestination); handle != nil {
			a.destHandle = handle
			a.destPath = handle.Path()
		}
	}

	ready := a.originPath != "" && a.destPath != ""
	a.mu.Unlock()

	if ready {
		a.StartScan()
	}
}

// SelectOrigin asks the chooser for an origin folder. Choosing nothing
// leaves the current selection untouched. A new choice is granted,
// persisted, and triggers a rescan when the destination is also known.
func (a *App) SelectOrigin(choose FolderChooser) {
	a.selectFolder(choose, authstore.RoleOrigin)
}

// SelectDestination is the destination counterpart of SelectOrigin.
func (a *App) SelectDestination(choose FolderChooser) {
	a.selectFolder(choose, authstore.RoleDestination)
}

func (a *App) selectFolder(choose FolderChooser, role authstore.Role) {
	path, ok := choose()
	if !ok {
		return
	}

	if a.store != nil {
		err := a.store.Grant(role, path)
		if err != nil {
			log.WithComponent("app").Warn("failed to persist folder grant", "role", role, "error", err)
		}
	}

	a.mu.Lock()

	if role == authstore.RoleOrigin {
		if a.originHandle != nil {
			a.originHandle.Release()
			a.originHandle = nil
		}

		a.originPath = path
	} else {
		if a.destHandle != nil {
			a.destHandle.Release()
			a.destHandle = nil
		}

		a.destPath = path
	}

	ready := a.originPath != "" && a.destPath != ""
	a.mu.Unlock()

	if ready {
		a.StartScan()
	}
}

// OriginPath returns the current origin folder, empty when unset.
func (a *App) OriginPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.originPath
}

// DestPath returns the current destination folder, empty when unset.
func (a *App) DestPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.destPath
}

// StartScan begins a new scan generation over the selected folders.
// A no-op until both folders are set.
func (a *App) StartScan() {
	a.mu.Lock()
	origin, dest := a.originPath, a.destPath
	a.mu.Unlock()

	if origin == "" || dest == "" {
		return
	}

	a.coordinator.Start(origin, dest)
}

// CancelScan cancels the running scan, if any.
func (a *App) CancelScan() {
	a.coordinator.Cancel()
}

// StartCopy launches a copy batch over the currently eligible records.
// The batch runs in the background; its completion chains a rescan.
func (a *App) StartCopy() {
	a.mu.Lock()
	dest := a.destPath
	dated := a.datedSubfolders
	a.mu.Unlock()

	if dest == "" {
		return
	}

	records := a.coordinator.Records()

	go a.copier.Run(records, dest, dated)
}

// SetDatedSubfolders toggles date-bucketed destination subfolders for
// subsequent copy batches.
func (a *App) SetDatedSubfolders(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.datedSubfolders = enabled
}

// DatedSubfolders reports the current subfolder setting.
func (a *App) DatedSubfolders() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.datedSubfolders
}

// SetScanFilter restricts subsequent scans to basenames matching the
// glob pattern.
func (a *App) SetScanFilter(pattern string) {
	a.coordinator.SetFilter(pattern)
}

// ToggleSelected flips one record's selection and returns the new value.
func (a *App) ToggleSelected(id string) bool {
	return a.coordinator.ToggleSelected(id)
}

// SelectAllUntransferred selects everything not yet in the destination
// and returns how many records are now selected.
func (a *App) SelectAllUntransferred() int {
	return a.coordinator.SelectAllUntransferred()
}

// SetSearchText updates the projection's basename search.
func (a *App) SetSearchText(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.query.SearchText = text
}

// SetShowOnlyUntransferred toggles hiding of already-transferred records.
func (a *App) SetShowOnlyUntransferred(only bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.query.ShowOnlyUntransferred = only
}

// SetSortByFileType toggles extension-grouped ordering.
func (a *App) SetSortByFileType(byType bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.query.SortByFileType = byType
}

// SetSortAscending sets the sort direction.
func (a *App) SetSortAscending(ascending bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.query.SortAscending = ascending
}

// Query returns a copy of the current view query.
func (a *App) Query() engine.Query {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.query
}

// Projection returns the records filtered and ordered under the current
// query. Pure over the coordinator's snapshot, so it is cheap to call
// on every UI refresh.
func (a *App) Projection() []engine.Record {
	a.mu.Lock()
	query := a.query
	a.mu.Unlock()

	return engine.Project(a.coordinator.Records(), query)
}

// ScanState returns the current scan state.
func (a *App) ScanState() engine.ScanState {
	return a.coordinator.State()
}

// CopyState returns the current copy batch state.
func (a *App) CopyState() engine.CopyState {
	return a.copier.State()
}

// ErrorMessage returns the user-facing error from the last failed scan,
// empty when the last scan start cleared it.
func (a *App) ErrorMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.errorMessage
}

// RecentTransfers lists the latest journaled copies, newest first.
func (a *App) RecentTransfers(limit int) ([]history.Transfer, error) {
	return a.journal.Recent(limit)
}

// Close releases all folder grants and stops background work. Safe to
// call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.coordinator.Close()

		if a.store != nil {
			a.store.ReleaseAll()
		}
	})
}
