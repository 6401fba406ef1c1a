package engine

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/ren/shuttle/internal/log"
	"github.com/ren/shuttle/pkg/fileops"
)

// DatedSubfolderLayout formats a creation time as MM-DD-YYYY for the
// optional date-bucketed destination subfolder.
const DatedSubfolderLayout = "01-02-2006"

// CopyStatus is the lifecycle state of one copy batch.
type CopyStatus int

const (
	// CopyIdle - no batch in flight
	CopyIdle CopyStatus = iota
	// CopyRunning - a batch is transferring
	CopyRunning
	// CopyCompleted - the batch finished (possibly with skipped files)
	CopyCompleted
)

// String returns the string representation of CopyStatus.
func (s CopyStatus) String() string {
	switch s {
	case CopyIdle:
		return "idle"
	case CopyRunning:
		return "running"
	case CopyCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// CopyState describes one in-flight or completed copy batch.
// CopiedCount only counts successful copies; failed files are skipped.
type CopyState struct {
	Status      CopyStatus
	TotalToCopy int
	CopiedCount int
	Progress    float64
}

// Journal records successful copies for the transfer history. A nil
// Journal is valid and records nothing.
type Journal interface {
	RecordCopy(originPath, basename, destPath string, bytes int64, copiedAt time.Time)
}

// Copier transfers a caller-selected subset of scan records into the
// destination root, optionally routed into date-named subfolders. A
// batch is not cancellable once started; on completion the onComplete
// hook must trigger a fresh scan so transfer flags reflect the new
// state.
type Copier struct {
	ops      *fileops.FileOps
	journal  Journal
	throttle time.Duration

	// onComplete is invoked after every finished batch; the owner wires
	// it to a coordinator rescan. Required, not optional.
	onComplete func()

	mu      sync.Mutex
	emitter EventEmitter
	state   CopyState
}

// NewCopier creates a copy engine. journal may be nil; onComplete must
// trigger a rescan of the same origin/destination pair.
func NewCopier(ops *fileops.FileOps, journal Journal, onComplete func()) *Copier {
	return &Copier{
		ops:        ops,
		journal:    journal,
		throttle:   DefaultThrottleInterval,
		onComplete: onComplete,
	}
}

// SetEventEmitter sets the event emitter for presentation-layer
// communication. Optional - if nil, no events are emitted. Safe to
// swap while a batch is running.
func (c *Copier) SetEventEmitter(emitter EventEmitter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.emitter = emitter
}

// SetThrottle overrides the progress publication interval.
func (c *Copier) SetThrottle(interval time.Duration) {
	c.throttle = interval
}

// State returns a copy of the current batch state.
func (c *Copier) State() CopyState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Run copies the eligible subset of records under destRoot, blocking
// until the batch finishes. Records are defensively re-filtered to
// selected && !existsInDestination even if the caller already filtered.
// Copy failures for individual files are logged and skipped; the batch
// continues. An empty eligible set is a no-op (no events, no rescan),
// and so is a Run while another batch is still transferring.
func (c *Copier) Run(records []Record, destRoot string, datedSubfolders bool) {
	logger := log.WithComponent("copy")

	eligible := make([]Record, 0, len(records))
	for _, record := range records {
		if record.Eligible() {
			eligible = append(eligible, record)
		}
	}

	if len(eligible) == 0 {
		return
	}

	c.mu.Lock()

	// One batch at a time: a second Run while a batch is transferring
	// would copy the same stale records twice and clobber the state.
	if c.state.Status == CopyRunning {
		c.mu.Unlock()
		logger.Warn("copy batch already running, ignoring request")

		return
	}

	c.state = CopyState{Status: CopyRunning, TotalToCopy: len(eligible)}
	c.mu.Unlock()

	c.emit(CopyStarted{TotalToCopy: len(eligible)})

	var lastPublish time.Time

	for _, record := range eligible {
		dst := c.destinationFor(record, destRoot, datedSubfolders)

		written, err := c.ops.CopyFile(record.Path, dst, nil)
		if err != nil {
			// Continue-on-error: one failed file never aborts the batch
			logger.Warn("copy failed, skipping", "path", record.Path, "error", err)
			continue
		}

		if c.journal != nil {
			c.journal.RecordCopy(record.Path, record.Basename, dst, written, time.Now())
		}

		c.mu.Lock()
		c.state.CopiedCount++
		c.state.Progress = float64(c.state.CopiedCount) / float64(c.state.TotalToCopy)
		state := c.state
		c.mu.Unlock()

		if time.Since(lastPublish) >= c.throttle {
			c.emit(CopyProgress{State: state})
			lastPublish = time.Now()
		}
	}

	c.mu.Lock()
	c.state.Status = CopyCompleted
	c.state.Progress = 1.0
	final := c.state
	// The batch state is reset once it finishes; the chained rescan
	// refreshes the transfer flags.
	c.state = CopyState{Status: CopyIdle}
	c.mu.Unlock()

	c.emit(CopyFinished{State: final})

	if c.onComplete != nil {
		c.onComplete()
	}
}

// destinationFor computes the target path for one record. With dated
// subfolders enabled and a known creation time, the file lands under
// <destRoot>/MM-DD-YYYY/<basename>; otherwise directly under destRoot.
func (c *Copier) destinationFor(record Record, destRoot string, datedSubfolders bool) string {
	if datedSubfolders && record.CreatedAt != nil {
		bucket := record.CreatedAt.Format(DatedSubfolderLayout)
		return filepath.Join(destRoot, bucket, record.Basename)
	}

	return filepath.Join(destRoot, record.Basename)
}

// emit sends an event if an emitter is configured.
func (c *Copier) emit(event Event) {
	c.mu.Lock()
	emitter := c.emitter
	c.mu.Unlock()

	if emitter != nil {
		emitter.Emit(event)
	}
}
