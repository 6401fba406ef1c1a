package engine

import (
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/ren/shuttle/pkg/filesystem"
)

func TestAddRecordAcceptsWhileRunning(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	c := NewCoordinator(filesystem.NewMockFileSystem())
	c.generation = 1
	c.state = ScanState{Generation: 1, Status: StatusRunning}

	g.Expect(c.addRecord(1, Record{ID: "r1", Basename: "a.jpg"})).To(BeTrue())
	g.Expect(c.Records()).To(HaveLen(1))
}

func TestAddRecordRejectedAfterTerminalSnapshot(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	c := NewCoordinator(filesystem.NewMockFileSystem())
	c.generation = 1

	// Cancel() published the terminal snapshot; a worker that raced
	// past the cancel poll must not grow the result set beyond it.
	c.state = ScanState{Generation: 1, Status: StatusCancelled}

	g.Expect(c.addRecord(1, Record{ID: "late", Basename: "late.jpg"})).To(BeFalse())
	g.Expect(c.Records()).To(BeEmpty())
}

func TestAddRecordRejectedForSupersededGeneration(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	c := NewCoordinator(filesystem.NewMockFileSystem())
	c.generation = 2
	c.state = ScanState{Generation: 2, Status: StatusRunning}

	g.Expect(c.addRecord(1, Record{ID: "old", Basename: "old.jpg"})).To(BeFalse())
	g.Expect(c.Records()).To(BeEmpty())
}
