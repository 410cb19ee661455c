package document

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

func testProject() models.Project {
	sections := []models.Section{
		{
			ID:      "sec-hero",
			Type:    models.SectionHero,
			Variant: models.VariantModern,
			Content: models.NewLanguageContent("en", models.SectionContent{Headline: "Hello"}).
				With("es", models.SectionContent{Headline: "Hola"}),
			Styles: models.SectionStyles{BackgroundColor: "bg-white", TextColor: "text-slate-900", Padding: "py-20", Align: models.AlignCenter},
		},
		{
			ID:      "sec-features",
			Type:    models.SectionFeatures,
			Variant: models.VariantDefault,
			Content: models.NewLanguageContent("en", models.SectionContent{
				Headline: "Features",
				Items:    []models.SectionItem{{Title: "Fast", Desc: "Really fast"}},
			}),
			Styles: models.SectionStyles{Align: models.AlignLeft},
		},
		{
			ID:      "sec-cta",
			Type:    models.SectionCTA,
			Variant: models.VariantBold,
			Content: models.NewLanguageContent("en", models.SectionContent{Headline: "Go"}),
			Styles:  models.SectionStyles{Align: models.AlignCenter},
		},
	}
	return models.Project{
		ID:              "proj-1",
		Name:            "Test Site",
		DefaultLanguage: "en",
		ActiveLanguage:  "en",
		DraftSections:   sections,
	}
}

func sectionIDs(sections []models.Section) []string {
	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	return ids
}

func TestReorderSectionsIsAPermutation(t *testing.T) {
	p := testProject()
	for from := 0; from < len(p.DraftSections); from++ {
		for to := 0; to < len(p.DraftSections); to++ {
			got := ReorderSections(p, from, to)

			want := sectionIDs(p.DraftSections)
			have := sectionIDs(got.DraftSections)
			sort.Strings(want)
			sort.Strings(have)
			assert.Equal(t, want, have, "from=%d to=%d", from, to)
		}
	}
}

func TestReorderSectionsMovesSection(t *testing.T) {
	p := testProject()
	got := ReorderSections(p, 0, 2)
	assert.Equal(t, []string{"sec-features", "sec-cta", "sec-hero"}, sectionIDs(got.DraftSections))

	// Input untouched.
	assert.Equal(t, []string{"sec-hero", "sec-features", "sec-cta"}, sectionIDs(p.DraftSections))
}

func TestReorderSectionsPanicsOutOfRange(t *testing.T) {
	p := testProject()
	assert.Panics(t, func() { ReorderSections(p, -1, 0) })
	assert.Panics(t, func() { ReorderSections(p, 0, 3) })
}

func TestSetSectionVariantMissingIDIsNoop(t *testing.T) {
	p := testProject()
	got := SetSectionVariant(p, "sec-gone", models.VariantMinimal)
	assert.Equal(t, p, got)
}

func TestMergeSectionStylesIsShallow(t *testing.T) {
	p := testProject()
	bg := "bg-slate-950"
	got := MergeSectionStyles(p, "sec-hero", models.SectionStylesPatch{BackgroundColor: &bg})

	s, ok := FindSection(got, "sec-hero")
	require.True(t, ok)
	assert.Equal(t, "bg-slate-950", s.Styles.BackgroundColor)
	// Untouched fields survive the merge.
	assert.Equal(t, "text-slate-900", s.Styles.TextColor)
	assert.Equal(t, models.AlignCenter, s.Styles.Align)

	// Original unchanged.
	orig, _ := FindSection(p, "sec-hero")
	assert.Equal(t, "bg-white", orig.Styles.BackgroundColor)
}

func TestSetContentForLanguageLeavesOtherLanguagesAlone(t *testing.T) {
	p := testProject()
	got := SetSectionContentForLanguage(p, "sec-hero", "es", models.SectionContent{Headline: "Nuevo"})

	s, ok := FindSection(got, "sec-hero")
	require.True(t, ok)
	es, ok := s.Content.Get("es")
	require.True(t, ok)
	assert.Equal(t, "Nuevo", es.Headline)

	en, ok := s.Content.Get("en")
	require.True(t, ok)
	assert.Equal(t, "Hello", en.Headline, "en content must be unchanged")

	// Insertion order keeps en first.
	assert.Equal(t, []string{"en", "es"}, s.Content.Languages())
}

func TestUpdateSectionImageRequiresContentEntry(t *testing.T) {
	p := testProject()

	got := UpdateSectionImage(p, "sec-features", "en", "https://cdn.example.com/a.png")
	s, _ := FindSection(got, "sec-features")
	c, _ := s.Content.Get("en")
	assert.Equal(t, "https://cdn.example.com/a.png", c.ImageURL)

	// No entry for fr: the write is a no-op.
	got = UpdateSectionImage(p, "sec-features", "fr", "https://cdn.example.com/b.png")
	s, _ = FindSection(got, "sec-features")
	assert.False(t, s.Content.Has("fr"))
}

func TestSnapshotPublishIsolation(t *testing.T) {
	p := testProject()
	published := SnapshotPublish(p)
	snapshot := models.CloneSections(published.PublishedSections)

	// Mutate the draft afterwards: reorder plus a content overwrite.
	mutated := ReorderSections(published, 0, 2)
	mutated = SetSectionContentForLanguage(mutated, "sec-hero", "en", models.SectionContent{Headline: "Changed"})

	assert.Equal(t, snapshot, mutated.PublishedSections,
		"published sections must equal their value at publish time")
}

func TestRemoveSectionPreservesOrder(t *testing.T) {
	p := testProject()
	got := RemoveSection(p, "sec-features")
	assert.Equal(t, []string{"sec-hero", "sec-cta"}, sectionIDs(got.DraftSections))

	got = RemoveSection(p, "sec-gone")
	assert.Equal(t, sectionIDs(p.DraftSections), sectionIDs(got.DraftSections))
}

func TestDisplayContentFallsBackToFirstLanguage(t *testing.T) {
	p := testProject()
	p = SetActiveLanguage(p, "fr")
	assert.Equal(t, "fr", p.ActiveLanguage)

	s, _ := FindSection(p, "sec-hero")
	content, translated := DisplayContent(s, p.ActiveLanguage)
	assert.False(t, translated, "fr has no entry, must be flagged as missing translation")
	assert.Equal(t, "Hello", content.Headline, "falls back to the first language (en)")

	content, translated = DisplayContent(s, "es")
	assert.True(t, translated)
	assert.Equal(t, "Hola", content.Headline)
}
