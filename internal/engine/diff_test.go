package engine_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/ren/shuttle/internal/engine"
	"github.com/ren/shuttle/pkg/filesystem"
)

func TestCollectDestinationBasenamesIgnoresDirectoriesAndSubpaths(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddDir("dest", time.Now())
	mockFS.AddFile("dest/a.jpg", []byte("a"), time.Now())
	mockFS.AddFile("dest/deep/nested/b.jpg", []byte("b"), time.Now())
	mockFS.AddDir("dest/emptydir", time.Now())

	differ := engine.NewDiffer(mockFS)

	names, ok := differ.CollectDestinationBasenames("dest", make(chan struct{}))
	g.Expect(ok).To(BeTrue())
	g.Expect(names).To(HaveLen(2))
	g.Expect(names).To(HaveKey("a.jpg"))
	g.Expect(names).To(HaveKey("b.jpg"))
}

func TestCollectDestinationBasenamesCancelledDrainReportsIncomplete(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddDir("dest", time.Now())
	mockFS.AddFile("dest/a.jpg", []byte("a"), time.Now())

	cancel := make(chan struct{})
	close(cancel)

	differ := engine.NewDiffer(mockFS)

	names, ok := differ.CollectDestinationBasenames("dest", cancel)
	g.Expect(ok).To(BeFalse())
	g.Expect(names).To(BeNil())
}

func TestRecordForTagsMembershipByBasenameOnly(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	differ := engine.NewDiffer(filesystem.NewMockFileSystem())
	destNames := map[string]struct{}{"match.raw": {}}

	// Membership is flat: the origin subdirectory is irrelevant,
	// only the basename matters.
	created := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	matched := differ.RecordFor(filesystem.Entry{
		Path:      "origin/some/deep/dir/match.raw",
		Basename:  "match.raw",
		CreatedAt: &created,
	}, destNames)
	unmatched := differ.RecordFor(filesystem.Entry{
		Path:     "origin/other.raw",
		Basename: "other.raw",
	}, destNames)

	g.Expect(matched.ExistsInDestination).To(BeTrue())
	g.Expect(unmatched.ExistsInDestination).To(BeFalse())
	g.Expect(matched.CreatedAt).To(Equal(&created))
	g.Expect(matched.ID).NotTo(BeEmpty())
	g.Expect(matched.ID).NotTo(Equal(unmatched.ID))
	g.Expect(matched.Selected).To(BeFalse())
}

func TestRecordForIsCaseSensitive(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	differ := engine.NewDiffer(filesystem.NewMockFileSystem())
	destNames := map[string]struct{}{"Photo.JPG": {}}

	record := differ.RecordFor(filesystem.Entry{
		Path:     "origin/photo.jpg",
		Basename: "photo.jpg",
	}, destNames)

	// Comparison is exact-string, case-sensitive as provided by the
	// filesystem.
	g.Expect(record.ExistsInDestination).To(BeFalse())
}
