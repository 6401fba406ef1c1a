package engine_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/ren/shuttle/internal/engine"
	"github.com/ren/shuttle/pkg/filesystem"
)

// testEmitter captures events for assertions. Emit is called from the
// scan goroutine, so access is mutex-guarded.
type testEmitter struct {
	mu     sync.Mutex
	events []engine.Event
}

func (e *testEmitter) Emit(event engine.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = append(e.events, event)
}

func (e *testEmitter) all() []engine.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]engine.Event, len(e.events))
	copy(out, e.events)

	return out
}

// slowFS delays each walker step so tests can cancel or supersede a
// scan while it is still in flight.
type slowFS struct {
	filesystem.FileSystem
	delay time.Duration
}

func (s *slowFS) Walk(root string, cancel <-chan struct{}) filesystem.Walker {
	return &slowWalker{inner: s.FileSystem.Walk(root, cancel), delay: s.delay}
}

type slowWalker struct {
	inner filesystem.Walker
	delay time.Duration
}

func (w *slowWalker) Next() (filesystem.Entry, bool) {
	time.Sleep(w.delay)
	return w.inner.Next()
}

func (w *slowWalker) Err() error { return w.inner.Err() }

func populatedMockFS() *filesystem.MockFileSystem {
	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddDir("origin", time.Now())
	mockFS.AddDir("dest", time.Now())
	mockFS.AddFile("origin/already.jpg", []byte("a"), time.Now())
	mockFS.AddFile("origin/new.jpg", []byte("b"), time.Now())
	mockFS.AddFile("origin/sub/fresh.raw", []byte("c"), time.Now())
	mockFS.AddFile("dest/elsewhere/already.jpg", []byte("a"), time.Now())

	return mockFS
}

func waitForStatus(g *WithT, coordinator *engine.Coordinator, status engine.ScanStatus) {
	g.Eventually(func() engine.ScanStatus {
		return coordinator.State().Status
	}).WithTimeout(3 * time.Second).Should(Equal(status))
}

func TestScanCompletesWithMembershipFlags(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	coordinator := engine.NewCoordinator(populatedMockFS())
	defer coordinator.Close()

	gen := coordinator.Start("origin", "dest")
	g.Expect(gen).To(Equal(uint64(1)))

	waitForStatus(g, coordinator, engine.StatusCompleted)

	records := coordinator.Records()
	g.Expect(records).To(HaveLen(3))

	byName := map[string]engine.Record{}
	for _, record := range records {
		byName[record.Basename] = record
	}

	g.Expect(byName["already.jpg"].ExistsInDestination).To(BeTrue())
	g.Expect(byName["new.jpg"].ExistsInDestination).To(BeFalse())
	g.Expect(byName["fresh.raw"].ExistsInDestination).To(BeFalse())
}

func TestScanTerminalSnapshotHasConsistentCounts(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	emitter := &testEmitter{}
	coordinator := engine.NewCoordinator(populatedMockFS())
	coordinator.SetEventEmitter(emitter)

	defer coordinator.Close()

	coordinator.Start("origin", "dest")
	waitForStatus(g, coordinator, engine.StatusCompleted)

	state := coordinator.State()
	g.Expect(state.Progress.Ratio).To(Equal(1.0))
	g.Expect(state.Progress.ScannedCount).To(Equal(3))
	g.Expect(state.Progress.TotalCount).To(Equal(state.Progress.ScannedCount))

	// Exactly one terminal event, carrying the full result set.
	finished := []engine.ScanFinished{}

	for _, event := range emitter.all() {
		if f, ok := event.(engine.ScanFinished); ok {
			finished = append(finished, f)
		}
	}

	g.Expect(finished).To(HaveLen(1))
	g.Expect(finished[0].State.Status).To(Equal(engine.StatusCompleted))
	g.Expect(finished[0].Records).To(HaveLen(3))
}

func TestScanFailsWhenOriginUnreadable(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddDir("dest", time.Now())

	coordinator := engine.NewCoordinator(mockFS)
	defer coordinator.Close()

	coordinator.Start("missing", "dest")
	waitForStatus(g, coordinator, engine.StatusFailed)

	state := coordinator.State()
	g.Expect(state.Message).To(ContainSubstring("cannot access origin folder"))
	g.Expect(state.Progress).To(Equal(engine.Progress{}))
	g.Expect(coordinator.Records()).To(BeEmpty())
}

func TestScanFailsWhenDestinationUnreadable(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddDir("origin", time.Now())
	mockFS.AddFile("origin/a.jpg", []byte("a"), time.Now())

	coordinator := engine.NewCoordinator(mockFS)
	defer coordinator.Close()

	coordinator.Start("origin", "missing")
	waitForStatus(g, coordinator, engine.StatusFailed)

	g.Expect(coordinator.State().Message).To(ContainSubstring("cannot access destination folder"))
}

func TestCancelResetsPublishedProgress(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	slow := &slowFS{FileSystem: populatedMockFS(), delay: 20 * time.Millisecond}
	coordinator := engine.NewCoordinator(slow)
	coordinator.SetThrottle(time.Millisecond)

	defer coordinator.Close()

	coordinator.Start("origin", "dest")

	// Wait until at least one record has been tagged, then cancel.
	g.Eventually(func() int {
		return len(coordinator.Records())
	}).WithTimeout(3 * time.Second).Should(BeNumerically(">=", 1))

	coordinator.Cancel()

	state := coordinator.State()
	g.Expect(state.Status).To(Equal(engine.StatusCancelled))
	g.Expect(state.Progress).To(Equal(engine.Progress{}))
}

func TestCancelWithoutRunningScanIsNoOp(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	coordinator := engine.NewCoordinator(filesystem.NewMockFileSystem())
	coordinator.Cancel()

	g.Expect(coordinator.State().Status).To(Equal(engine.StatusIdle))
}

func TestNewScanSupersedesRunningScan(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddDir("first", time.Now())
	mockFS.AddDir("second", time.Now())
	mockFS.AddDir("dest", time.Now())

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		mockFS.AddFile("first/"+name+".jpg", []byte(name), time.Now())
	}

	mockFS.AddFile("second/only.jpg", []byte("x"), time.Now())

	slow := &slowFS{FileSystem: mockFS, delay: 15 * time.Millisecond}
	coordinator := engine.NewCoordinator(slow)

	defer coordinator.Close()

	first := coordinator.Start("first", "dest")
	second := coordinator.Start("second", "dest")
	g.Expect(second).To(BeNumerically(">", first))

	waitForStatus(g, coordinator, engine.StatusCompleted)

	state := coordinator.State()
	g.Expect(state.Generation).To(Equal(second))

	// The superseded generation contributes nothing to the result set.
	records := coordinator.Records()
	g.Expect(records).To(HaveLen(1))
	g.Expect(records[0].Basename).To(Equal("only.jpg"))
}

func TestPublishedRatioNeverRegressesWithinGeneration(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddDir("origin", time.Now())
	mockFS.AddDir("dest", time.Now())

	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		mockFS.AddFile("origin/"+name+".jpg", []byte(name), time.Now())
	}

	emitter := &testEmitter{}
	slow := &slowFS{FileSystem: mockFS, delay: 10 * time.Millisecond}
	coordinator := engine.NewCoordinator(slow)
	coordinator.SetEventEmitter(emitter)
	coordinator.SetThrottle(time.Millisecond)

	defer coordinator.Close()

	coordinator.Start("origin", "dest")
	waitForStatus(g, coordinator, engine.StatusCompleted)

	lastRatio := 0.0

	for _, event := range emitter.all() {
		snapshot, ok := event.(engine.ScanSnapshot)
		if !ok {
			continue
		}

		g.Expect(snapshot.State.Progress.Ratio).To(BeNumerically(">=", lastRatio))
		lastRatio = snapshot.State.Progress.Ratio
	}
}

func TestEmitterSwapMidScanRoutesLaterEvents(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	slow := &slowFS{FileSystem: populatedMockFS(), delay: 20 * time.Millisecond}
	coordinator := engine.NewCoordinator(slow)
	coordinator.SetThrottle(time.Millisecond)

	defer coordinator.Close()

	first := &testEmitter{}
	coordinator.SetEventEmitter(first)

	coordinator.Start("origin", "dest")

	g.Eventually(func() int {
		return len(first.all())
	}).WithTimeout(3 * time.Second).Should(BeNumerically(">=", 1))

	second := &testEmitter{}
	coordinator.SetEventEmitter(second)

	waitForStatus(g, coordinator, engine.StatusCompleted)

	// The terminal snapshot lands on the replacement emitter.
	g.Eventually(func() bool {
		for _, event := range second.all() {
			if _, ok := event.(engine.ScanFinished); ok {
				return true
			}
		}

		return false
	}).WithTimeout(3 * time.Second).Should(BeTrue())
}

func TestScanFilterRestrictsByGlobPattern(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	coordinator := engine.NewCoordinator(populatedMockFS())
	coordinator.SetFilter("*.jpg")

	defer coordinator.Close()

	coordinator.Start("origin", "dest")
	waitForStatus(g, coordinator, engine.StatusCompleted)

	records := coordinator.Records()
	g.Expect(records).To(HaveLen(2))

	for _, record := range records {
		g.Expect(record.Basename).To(HaveSuffix(".jpg"))
	}
}

func TestSelectionHelpers(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	coordinator := engine.NewCoordinator(populatedMockFS())
	defer coordinator.Close()

	coordinator.Start("origin", "dest")
	waitForStatus(g, coordinator, engine.StatusCompleted)

	// Two of the three records are untransferred.
	g.Expect(coordinator.SelectAllUntransferred()).To(Equal(2))

	var transferred engine.Record

	for _, record := range coordinator.Records() {
		if record.ExistsInDestination {
			transferred = record
			g.Expect(record.Selected).To(BeFalse())
		} else {
			g.Expect(record.Selected).To(BeTrue())
		}
	}

	g.Expect(coordinator.ToggleSelected(transferred.ID)).To(BeTrue())
	g.Expect(coordinator.ToggleSelected(transferred.ID)).To(BeFalse())

	coordinator.SetSelected(transferred.ID, true)

	byID := map[string]engine.Record{}
	for _, record := range coordinator.Records() {
		byID[record.ID] = record
	}

	g.Expect(byID[transferred.ID].Selected).To(BeTrue())

	// Unknown ids are ignored.
	coordinator.SetSelected("nope", true)
	g.Expect(coordinator.ToggleSelected("nope")).To(BeFalse())
}

func TestCompletedResultsGoStaleWhenOriginChanges(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	origin := t.TempDir()
	dest := t.TempDir()
	g.Expect(os.WriteFile(filepath.Join(origin, "seed.jpg"), []byte("s"), 0o600)).To(Succeed())

	coordinator := engine.NewCoordinator(filesystem.NewRealFileSystem())
	defer coordinator.Close()

	coordinator.Start(origin, dest)
	waitForStatus(g, coordinator, engine.StatusCompleted)
	g.Expect(coordinator.State().Stale).To(BeFalse())

	g.Expect(os.WriteFile(filepath.Join(origin, "later.jpg"), []byte("l"), 0o600)).To(Succeed())

	g.Eventually(func() bool {
		return coordinator.State().Stale
	}).WithTimeout(3 * time.Second).Should(BeTrue())
}
