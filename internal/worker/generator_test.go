package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

type stubGenerator struct {
	err   error
	calls []models.GenerationRequest
}

func (s *stubGenerator) GenerateSection(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return models.GenerationResult{}, s.err
	}
	return models.GenerationResult{
		Variant: models.VariantDefault,
		Content: models.SectionContent{Headline: "Generated " + string(req.Type)},
		Styles:  models.SectionStyles{BackgroundColor: "#ffffff", Align: models.AlignCenter},
	}, nil
}

func testPlan() models.GenerationPlan {
	return models.GenerationPlan{
		Profile: models.SiteProfile{
			SiteType:          models.SiteBusiness,
			BrandName:         "Acme",
			ColorScheme:       models.ColorVibrant,
			PreferredLanguage: "tr",
		},
		PlannedSections: []models.PlannedSection{
			{Type: models.SectionFooter, Purpose: "contact info", Priority: 3},
			{Type: models.SectionHero, Purpose: "first impression", Priority: 1},
			{Type: models.SectionFeatures, Purpose: "key offerings", Priority: 2},
		},
		DesignDirection: "clean and confident",
		ContentStrategy: "benefit-led copy",
	}
}

func TestGenerateSiteOrdersSectionsByPriority(t *testing.T) {
	gen := &stubGenerator{}
	g := NewSiteGenerator(gen, nil, nil, nil)

	project, err := g.GenerateSite(context.Background(), "user-1", testPlan(), false)
	require.NoError(t, err)

	require.Len(t, project.DraftSections, 3)
	assert.Equal(t, models.SectionHero, project.DraftSections[0].Type)
	assert.Equal(t, models.SectionFeatures, project.DraftSections[1].Type)
	assert.Equal(t, models.SectionFooter, project.DraftSections[2].Type)
	assert.Equal(t, "Acme Website", project.Name)
}

func TestGenerateSiteKeysContentByPreferredLanguage(t *testing.T) {
	gen := &stubGenerator{}
	g := NewSiteGenerator(gen, nil, nil, nil)

	project, err := g.GenerateSite(context.Background(), "user-1", testPlan(), false)
	require.NoError(t, err)

	assert.Equal(t, "tr", project.DefaultLanguage)
	assert.Equal(t, "tr", project.ActiveLanguage)
	for _, sec := range project.DraftSections {
		assert.Equal(t, []string{"tr"}, sec.Content.Languages())
		content, ok := sec.Content.Get("tr")
		require.True(t, ok)
		assert.Equal(t, "Generated "+string(sec.Type), content.Headline)
	}
	for _, req := range gen.calls {
		assert.Equal(t, "tr", req.Language)
	}
}

func TestGenerateSiteDefaultsToEnglish(t *testing.T) {
	gen := &stubGenerator{}
	g := NewSiteGenerator(gen, nil, nil, nil)

	plan := testPlan()
	plan.Profile.PreferredLanguage = ""

	project, err := g.GenerateSite(context.Background(), "user-1", plan, false)
	require.NoError(t, err)
	assert.Equal(t, "en", project.DefaultLanguage)
}

func TestGenerateSiteFailsWholeJobOnSectionError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model overloaded")}
	g := NewSiteGenerator(gen, nil, nil, nil)

	_, err := g.GenerateSite(context.Background(), "user-1", testPlan(), false)
	require.Error(t, err)
	assert.Len(t, gen.calls, 1)
}

func TestThemeForColorScheme(t *testing.T) {
	theme := themeFor(models.SiteProfile{SiteType: models.SiteBusiness, ColorScheme: models.ColorVibrant})
	assert.Equal(t, "#ec4899", theme.PrimaryColor)
	assert.Equal(t, models.FontClassic, theme.FontPairing)

	theme = themeFor(models.SiteProfile{SiteType: models.SitePortfolio, ColorScheme: models.ColorDark})
	assert.Equal(t, "#8b5cf6", theme.PrimaryColor)
	assert.Equal(t, models.FontModern, theme.FontPairing)
}

func TestThemeForCustomColor(t *testing.T) {
	theme := themeFor(models.SiteProfile{ColorScheme: models.ColorCustom, PrimaryColor: "#123456"})
	assert.Equal(t, "#123456", theme.PrimaryColor)

	theme = themeFor(models.SiteProfile{ColorScheme: models.ColorCustom})
	assert.Equal(t, "#4f46e5", theme.PrimaryColor)
}
