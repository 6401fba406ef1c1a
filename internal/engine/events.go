package engine

// Event is the interface implemented by all engine events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// Scan events

// ScanStarted is emitted when a new scan generation begins.
type ScanStarted struct {
	Generation uint64
}

func (ScanStarted) isEvent() {}

// ScanSnapshot is emitted at most once per throttle interval while a
// scan is running, carrying the accumulated result set so far.
type ScanSnapshot struct {
	Generation uint64
	State      ScanState
	Records    []Record
}

func (ScanSnapshot) isEvent() {}

// ScanFinished is emitted exactly once per generation with the terminal
// state (Completed, Cancelled, or Failed) and final counts.
type ScanFinished struct {
	Generation uint64
	State      ScanState
	Records    []Record
}

func (ScanFinished) isEvent() {}

// ResultsStale is emitted when the origin tree changes after a completed
// scan, signalling that the result set no longer reflects the disk.
type ResultsStale struct {
	Generation uint64
}

func (ResultsStale) isEvent() {}

// Copy events

// CopyStarted is emitted when a copy batch begins.
type CopyStarted struct {
	TotalToCopy int
}

func (CopyStarted) isEvent() {}

// CopyProgress is emitted at most once per throttle interval while a
// batch is running.
type CopyProgress struct {
	State CopyState
}

func (CopyProgress) isEvent() {}

// CopyFinished is emitted exactly once per batch with the final counts.
type CopyFinished struct {
	State CopyState
}

func (CopyFinished) isEvent() {}
