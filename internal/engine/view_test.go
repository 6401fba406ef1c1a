package engine_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // Dot import is idiomatic for Ginkgo
	. "github.com/onsi/gomega"    //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/ren/shuttle/internal/engine"
)

func TestViewQuery(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ViewQuery Suite")
}

func viewRecord(path, basename string, transferred bool) engine.Record {
	return engine.Record{
		ID:                  path,
		Path:                path,
		Basename:            basename,
		ExistsInDestination: transferred,
	}
}

func basenames(records []engine.Record) []string {
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Basename)
	}

	return names
}

var _ = Describe("Project", func() {
	var records []engine.Record

	BeforeEach(func() {
		records = []engine.Record{
			viewRecord("origin/beach.jpg", "beach.jpg", true),
			viewRecord("origin/Alps.RAW", "Alps.RAW", false),
			viewRecord("origin/castle.raw", "castle.raw", false),
			viewRecord("origin/dunes.jpg", "dunes.jpg", false),
		}
	})

	It("keeps everything with an empty query", func() {
		projected := engine.Project(records, engine.Query{SortAscending: true})
		Expect(projected).To(HaveLen(4))
	})

	It("never mutates the input slice", func() {
		engine.Project(records, engine.Query{SortByFileType: true})
		Expect(records[0].Basename).To(Equal("beach.jpg"))
		Expect(records[3].Basename).To(Equal("dunes.jpg"))
	})

	Describe("filtering", func() {
		It("drops transferred records when ShowOnlyUntransferred is set", func() {
			projected := engine.Project(records, engine.Query{
				ShowOnlyUntransferred: true,
				SortAscending:         true,
			})
			Expect(basenames(projected)).NotTo(ContainElement("beach.jpg"))
			Expect(projected).To(HaveLen(3))
		})

		It("matches search text case-insensitively against basenames", func() {
			projected := engine.Project(records, engine.Query{
				SearchText:    "ALPS",
				SortAscending: true,
			})
			Expect(basenames(projected)).To(Equal([]string{"Alps.RAW"}))
		})

		It("applies search and transfer filters together", func() {
			projected := engine.Project(records, engine.Query{
				SearchText:            ".jpg",
				ShowOnlyUntransferred: true,
				SortAscending:         true,
			})
			Expect(basenames(projected)).To(Equal([]string{"dunes.jpg"}))
		})

		It("returns empty for a search matching nothing", func() {
			projected := engine.Project(records, engine.Query{SearchText: "zzz"})
			Expect(projected).To(BeEmpty())
		})
	})

	Describe("sorting", func() {
		It("orders by basename ascending, case-insensitively", func() {
			projected := engine.Project(records, engine.Query{SortAscending: true})
			Expect(basenames(projected)).To(Equal([]string{
				"Alps.RAW", "beach.jpg", "castle.raw", "dunes.jpg",
			}))
		})

		It("orders by basename descending when SortAscending is off", func() {
			projected := engine.Project(records, engine.Query{})
			Expect(basenames(projected)).To(Equal([]string{
				"dunes.jpg", "castle.raw", "beach.jpg", "Alps.RAW",
			}))
		})

		It("groups by extension when SortByFileType is set", func() {
			projected := engine.Project(records, engine.Query{
				SortByFileType: true,
				SortAscending:  true,
			})
			Expect(basenames(projected)).To(Equal([]string{
				"beach.jpg", "dunes.jpg", "Alps.RAW", "castle.raw",
			}))
		})

		It("breaks basename ties by path", func() {
			tied := []engine.Record{
				viewRecord("origin/b/same.jpg", "same.jpg", false),
				viewRecord("origin/a/same.jpg", "same.jpg", false),
			}
			projected := engine.Project(tied, engine.Query{SortAscending: true})
			Expect(projected[0].Path).To(Equal("origin/a/same.jpg"))
			Expect(projected[1].Path).To(Equal("origin/b/same.jpg"))
		})
	})
})
