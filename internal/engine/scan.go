package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ren/shuttle/internal/log"
	"github.com/ren/shuttle/pkg/filesystem"
)

// Exported constants.
const (
	// DefaultThrottleInterval is the minimum spacing between progress
	// publications during a scan or copy.
	DefaultThrottleInterval = 150 * time.Millisecond
	// EntryBufferSize is the buffer between the origin discovery walk
	// and the membership-tagging consumer.
	EntryBufferSize = 256
)

// ScanStatus is the lifecycle state of one scan generation.
type ScanStatus int

const (
	// StatusIdle - no scan has been requested yet
	StatusIdle ScanStatus = iota
	// StatusRunning - the walk is in flight
	StatusRunning
	// StatusCancelled - the scan was cancelled or superseded
	StatusCancelled
	// StatusFailed - a root was unreadable at scan start
	StatusFailed
	// StatusCompleted - the scan drained the origin tree
	StatusCompleted
)

// String returns the string representation of ScanStatus.
func (s ScanStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Progress is a best-effort completion estimate. TotalCount is the
// running count of origin entries discovered so far, not a precomputed
// total, so early ratios are provisional and may appear to reset upward
// as discovery outpaces tagging. That is expected, not a bug; the
// published ratio itself is clamped so consumers never see it regress
// within a generation.
type Progress struct {
	Ratio        float64
	ScannedCount int
	TotalCount   int
}

// ScanState describes one in-flight or finished scan generation.
type ScanState struct {
	// Generation increases monotonically; a new scan invalidates the
	// previous generation and its cancellation token.
	Generation uint64
	Status     ScanStatus
	Progress   Progress
	// Message carries the user-facing failure reason when Status is
	// StatusFailed, empty otherwise.
	Message string
	// Stale is set when the origin tree changed after completion.
	Stale bool
}

// Coordinator owns the cancellable scan task: it drives the Differ,
// throttles progress emission, and publishes the accumulating result set
// and terminal state. The result set is exclusively mutated here; other
// components only read snapshots.
type Coordinator struct {
	fs       filesystem.FileSystem
	differ   *Differ
	filter   *GlobFilter
	throttle time.Duration

	mu         sync.Mutex
	emitter    EventEmitter
	generation uint64
	cancel     chan struct{}
	state      ScanState
	records    map[string]*Record
	order      []string
	watcher    *originWatcher
}

// NewCoordinator creates a coordinator over the given filesystem.
func NewCoordinator(fs filesystem.FileSystem) *Coordinator {
	return &Coordinator{
		fs:       fs,
		differ:   NewDiffer(fs),
		filter:   NewGlobFilter(""),
		throttle: DefaultThrottleInterval,
		state:    ScanState{Status: StatusIdle},
		records:  make(map[string]*Record),
	}
}

// SetEventEmitter sets the event emitter for presentation-layer
// communication. The emitter is optional - if nil, no events are
// emitted. Safe to swap while a scan is running.
func (c *Coordinator) SetEventEmitter(emitter EventEmitter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.emitter = emitter
}

// SetFilter restricts scans to origin basenames matching the glob
// pattern. An empty pattern matches everything.
func (c *Coordinator) SetFilter(pattern string) {
	c.filter = NewGlobFilter(pattern)
}

// SetThrottle overrides the progress publication interval.
func (c *Coordinator) SetThrottle(interval time.Duration) {
	c.throttle = interval
}

// Start begins a new scan generation over the given roots. A running
// scan is superseded: its cancellation token is flipped and no update
// from it is published once the new generation has started. Returns the
// new generation number.
func (c *Coordinator) Start(origin, dest string) uint64 {
	c.mu.Lock()

	if c.state.Status == StatusRunning && c.cancel != nil {
		close(c.cancel)
	}

	c.stopWatcherLocked()

	c.generation++
	gen := c.generation
	c.cancel = make(chan struct{})
	cancel := c.cancel
	c.records = make(map[string]*Record)
	c.order = nil
	c.state = ScanState{Generation: gen, Status: StatusRunning}

	c.mu.Unlock()

	c.emit(ScanStarted{Generation: gen})

	go c.run(gen, origin, dest, cancel)

	return gen
}

// Cancel flips the current cancellation token, synchronously resets the
// published progress to zero, and publishes the terminal Cancelled
// snapshot. Safe to call when no scan is running (no-op).
func (c *Coordinator) Cancel() {
	c.mu.Lock()

	if c.state.Status != StatusRunning {
		c.mu.Unlock()
		return
	}

	close(c.cancel)
	c.state.Status = StatusCancelled
	c.state.Progress = Progress{}
	state := c.state
	records := c.snapshotLocked()

	c.mu.Unlock()

	c.emit(ScanFinished{Generation: state.Generation, State: state, Records: records})
}

// State returns a copy of the current scan state.
func (c *Coordinator) State() ScanState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Records returns a copy of the current result set in discovery order.
func (c *Coordinator) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// SetSelected sets the selection flag on one record by id. Unknown ids
// are ignored.
func (c *Coordinator) SetSelected(id string, selected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if record, ok := c.records[id]; ok {
		record.Selected = selected
	}
}

// ToggleSelected flips the selection flag on one record by id and
// returns the new value.
func (c *Coordinator) ToggleSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.records[id]
	if !ok {
		return false
	}

	record.Selected = !record.Selected

	return record.Selected
}

// SelectAllUntransferred selects every record not yet present in the
// destination and returns how many are now selected.
func (c *Coordinator) SelectAllUntransferred() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	selected := 0

	for _, id := range c.order {
		record := c.records[id]
		if !record.ExistsInDestination {
			record.Selected = true
			selected++
		}
	}

	return selected
}

// Close stops the staleness watcher and cancels any running scan.
func (c *Coordinator) Close() {
	c.Cancel()

	c.mu.Lock()
	c.stopWatcherLocked()
	c.mu.Unlock()
}

// run performs one scan generation: access precheck, destination drain,
// then a pipelined origin pass. Discovery runs ahead of tagging through
// a buffered channel, so TotalCount can grow past ScannedCount while the
// walk proceeds.
func (c *Coordinator) run(gen uint64, origin, dest string, cancel chan struct{}) {
	err := c.checkRoot(origin)
	if err != nil {
		c.fail(gen, fmt.Sprintf("cannot access origin folder: %v", err))
		return
	}

	err = c.checkRoot(dest)
	if err != nil {
		c.fail(gen, fmt.Sprintf("cannot access destination folder: %v", err))
		return
	}

	// Membership is evaluated against the complete destination set, so
	// this drain must finish (or be cancelled) before origin comparison.
	destNames, ok := c.differ.CollectDestinationBasenames(dest, cancel)
	if !ok {
		c.finishCancelled(gen)
		return
	}

	entries := make(chan filesystem.Entry, EntryBufferSize)

	var discovered atomic.Int64

	go func() {
		defer close(entries)

		walker := c.fs.Walk(origin, cancel)

		for {
			entry, more := walker.Next()
			if !more {
				return
			}

			if entry.IsDir {
				continue
			}

			if !c.filter.ShouldInclude(entry.Basename) {
				continue
			}

			discovered.Add(1)

			select {
			case entries <- entry:
			case <-cancel:
				return
			}
		}
	}()

	scanned := 0

	var lastPublish time.Time

	for entry := range entries {
		if isClosed(cancel) {
			break
		}

		record := c.differ.RecordFor(entry, destNames)
		if !c.addRecord(gen, record) {
			// Superseded by a newer generation
			return
		}

		scanned++

		if time.Since(lastPublish) >= c.throttle {
			c.publishRunning(gen, scanned, int(discovered.Load()))
			lastPublish = time.Now()
		}
	}

	if isClosed(cancel) {
		c.finishCancelled(gen)
		return
	}

	c.complete(gen, origin, scanned)
}

// checkRoot verifies the root is a readable directory before any walk.
func (c *Coordinator) checkRoot(root string) error {
	info, err := c.fs.Stat(root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	return nil
}

// addRecord appends one record to the result set, unless the generation
// has been superseded or already published its terminal snapshot. The
// status check keeps a worker that raced past the cancel poll from
// growing the result set after Cancel() emitted the final counts.
func (c *Coordinator) addRecord(gen uint64, record Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state.Status != StatusRunning {
		return false
	}

	stored := record
	c.records[record.ID] = &stored
	c.order = append(c.order, record.ID)

	return true
}

// publishRunning emits a throttled snapshot. Discarded when the
// generation has been superseded or already terminated.
func (c *Coordinator) publishRunning(gen uint64, scanned, total int) {
	c.mu.Lock()

	if gen != c.generation || c.state.Status != StatusRunning {
		c.mu.Unlock()
		return
	}

	ratio := 0.0
	if total > 0 {
		ratio = float64(scanned) / float64(total)
	}
	// Never let the published ratio regress within a generation
	if ratio < c.state.Progress.Ratio {
		ratio = c.state.Progress.Ratio
	}

	c.state.Progress = Progress{Ratio: ratio, ScannedCount: scanned, TotalCount: total}
	state := c.state
	records := c.snapshotLocked()

	c.mu.Unlock()

	c.emit(ScanSnapshot{Generation: gen, State: state, Records: records})
}

// complete publishes the terminal Completed snapshot with the true
// counts and arms the origin staleness watcher.
func (c *Coordinator) complete(gen uint64, origin string, scanned int) {
	c.mu.Lock()

	if gen != c.generation || c.state.Status != StatusRunning {
		c.mu.Unlock()
		return
	}

	c.state.Status = StatusCompleted
	c.state.Progress = Progress{Ratio: 1.0, ScannedCount: scanned, TotalCount: scanned}
	state := c.state
	records := c.snapshotLocked()
	c.watcher = watchOrigin(origin, func() { c.markStale(gen) })

	c.mu.Unlock()

	c.emit(ScanFinished{Generation: gen, State: state, Records: records})
}

// finishCancelled publishes the terminal Cancelled snapshot, unless
// Cancel() already did or a newer generation took over.
func (c *Coordinator) finishCancelled(gen uint64) {
	c.mu.Lock()

	if gen != c.generation || c.state.Status != StatusRunning {
		c.mu.Unlock()
		return
	}

	c.state.Status = StatusCancelled
	c.state.Progress = Progress{}
	state := c.state
	records := c.snapshotLocked()

	c.mu.Unlock()

	c.emit(ScanFinished{Generation: gen, State: state, Records: records})
}

// fail publishes the terminal Failed snapshot with a user-facing reason.
func (c *Coordinator) fail(gen uint64, message string) {
	log.WithComponent("scan").Warn("scan failed", "generation", gen, "reason", message)

	c.mu.Lock()

	if gen != c.generation || c.state.Status != StatusRunning {
		c.mu.Unlock()
		return
	}

	c.state.Status = StatusFailed
	c.state.Message = message
	c.state.Progress = Progress{}
	state := c.state

	c.mu.Unlock()

	c.emit(ScanFinished{Generation: gen, State: state})
}

// markStale flags a completed generation whose origin tree has changed.
func (c *Coordinator) markStale(gen uint64) {
	c.mu.Lock()

	if gen != c.generation || c.state.Status != StatusCompleted || c.state.Stale {
		c.mu.Unlock()
		return
	}

	c.state.Stale = true

	c.mu.Unlock()

	c.emit(ResultsStale{Generation: gen})
}

// snapshotLocked copies the result set in discovery order. Callers hold c.mu.
func (c *Coordinator) snapshotLocked() []Record {
	records := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		records = append(records, *c.records[id])
	}

	return records
}

func (c *Coordinator) stopWatcherLocked() {
	if c.watcher != nil {
		c.watcher.stop()
		c.watcher = nil
	}
}

// emit sends an event if an emitter is configured.
// Safe to call even when emitter is nil.
func (c *Coordinator) emit(event Event) {
	c.mu.Lock()
	emitter := c.emitter
	c.mu.Unlock()

	if emitter != nil {
		emitter.Emit(event)
	}
}

func isClosed(cancel <-chan struct{}) bool {
	select {
	case <-cancel:
		return true
	default:
		return false
	}
}
