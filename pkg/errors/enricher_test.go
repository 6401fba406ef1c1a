package errors_test

import (
	stderrors "errors"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/ren/shuttle/pkg/errors"
)

func TestEnrichCategorizesAccessErrors(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	enricher := errors.NewEnricher()

	err := enricher.Enrich(stderrors.New("open /media/card: permission denied"), "/media/card")

	actionable, ok := err.(errors.ActionableError)
	g.Expect(ok).To(BeTrue())
	g.Expect(actionable.Category()).To(Equal(errors.CategoryAccess))
	g.Expect(actionable.AffectedPath()).To(Equal("/media/card"))
	g.Expect(actionable.Suggestions()).NotTo(BeEmpty())
}

func TestEnrichCategorizesGrantErrors(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	enricher := errors.NewEnricher()

	err := enricher.Enrich(stderrors.New("stale token for role origin"), "")

	actionable, ok := err.(errors.ActionableError)
	g.Expect(ok).To(BeTrue())
	g.Expect(actionable.Category()).To(Equal(errors.CategoryGrant))
}

func TestEnrichUnknownFallsBack(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	enricher := errors.NewEnricher()

	err := enricher.Enrich(stderrors.New("something odd happened"), "")

	actionable, ok := err.(errors.ActionableError)
	g.Expect(ok).To(BeTrue())
	g.Expect(actionable.Category()).To(Equal(errors.CategoryUnknown))
}

func TestEnrichIsIdempotent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	enricher := errors.NewEnricher()

	first := enricher.Enrich(stderrors.New("i/o error"), "/dst")
	second := enricher.Enrich(first, "/other")

	g.Expect(second).To(BeIdenticalTo(first))
}

func TestFormatSuggestions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	err := errors.NewActionableError("boom", errors.CategoryCopy, []string{"one", "two"}, "")

	g.Expect(errors.FormatSuggestions(err)).To(Equal("  • one\n  • two"))
	g.Expect(errors.FormatSuggestions(nil)).To(Equal(""))
	g.Expect(errors.FormatSuggestions(stderrors.New("plain"))).To(Equal(""))
}
