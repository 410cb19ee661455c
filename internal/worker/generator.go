package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aetherbuildapp/aetherbuild/internal/engine"
	"github.com/aetherbuildapp/aetherbuild/internal/models"
	"github.com/aetherbuildapp/aetherbuild/internal/services"
)

// themeColors maps the onboarding color scheme onto the theme primary.
var themeColors = map[models.ColorScheme]string{
	models.ColorProfessional: "#4f46e5",
	models.ColorVibrant:      "#ec4899",
	models.ColorMinimal:      "#0ea5e9",
	models.ColorDark:         "#8b5cf6",
}

// SiteGenerator assembles the initial site document from a generation plan:
// one Generator call per planned section, progress published over Redis for
// the SSE stream, and the finished document saved before hand-off to the
// builder.
type SiteGenerator struct {
	Generator   engine.Generator
	ImageGen    engine.ImageGenerator
	Projects    *services.ProjectService
	RedisClient *redis.Client
}

func NewSiteGenerator(generator engine.Generator, imageGen engine.ImageGenerator, projects *services.ProjectService, redisClient *redis.Client) *SiteGenerator {
	return &SiteGenerator{
		Generator:   generator,
		ImageGen:    imageGen,
		Projects:    projects,
		RedisClient: redisClient,
	}
}

// GenerateSite builds the full document for the plan. Sections are generated
// in priority order; a single failing section fails the whole job so the user
// never lands in a half-built editor.
func (g *SiteGenerator) GenerateSite(ctx context.Context, userID string, plan models.GenerationPlan, pro bool) (models.Project, error) {
	projectID := "proj-" + uuid.New().String()
	log.Printf("[SiteGenerator] Starting generation for user %s, project %s", userID, projectID)

	g.sendProgress(projectID, "planning", "Preparing section outline...")

	planned := make([]models.PlannedSection, len(plan.PlannedSections))
	copy(planned, plan.PlannedSections)
	sort.SliceStable(planned, func(i, j int) bool { return planned[i].Priority < planned[j].Priority })

	lang := plan.Profile.PreferredLanguage
	if lang == "" {
		lang = "en"
	}

	sections := make([]models.Section, 0, len(planned))
	for i, ps := range planned {
		g.sendProgress(projectID, "generating", fmt.Sprintf("Generating section %d/%d (%s)...", i+1, len(planned), ps.Type))

		result, err := g.Generator.GenerateSection(ctx, models.GenerationRequest{
			Type:       ps.Type,
			UserPrompt: sectionPrompt(plan, ps, i),
			Language:   lang,
			BrandTone:  string(plan.Profile.SiteType),
			Pro:        pro,
		})
		if err != nil {
			g.sendProgress(projectID, "failed", fmt.Sprintf("Section %s failed", ps.Type))
			return models.Project{}, fmt.Errorf("failed to generate %s section: %w", ps.Type, err)
		}

		sections = append(sections, models.Section{
			ID:      "sec-" + uuid.New().String(),
			Type:    ps.Type,
			Variant: result.Variant,
			Content: models.NewLanguageContent(lang, result.Content),
			Styles:  result.Styles,
		})
	}

	project := models.Project{
		ID:              projectID,
		Name:            plan.Profile.BrandName + " Website",
		DefaultLanguage: lang,
		ActiveLanguage:  lang,
		DraftSections:   sections,
		Theme:           themeFor(plan.Profile),
	}

	if g.Projects != nil {
		if err := g.Projects.Save(ctx, userID, project); err != nil {
			// The document is still usable in memory; persistence catches up
			// on the next auto-save.
			log.Printf("[SiteGenerator] Failed to save project %s: %v", projectID, err)
		}
	}

	g.sendProgress(projectID, "completed", "Your site is ready")
	log.Printf("[SiteGenerator] ✅ Generated %d sections for project %s", len(sections), projectID)
	return project, nil
}

// GenerateBrandLogo produces an AI logo for profiles that requested one.
func (g *SiteGenerator) GenerateBrandLogo(ctx context.Context, profile models.SiteProfile) (string, error) {
	if g.ImageGen == nil {
		return "", fmt.Errorf("image generation not configured")
	}
	prompt := fmt.Sprintf(`Create a modern, professional logo for "%s".
Industry: %s
Style: Minimalist, scalable, memorable`, profile.BrandName, profile.SiteType)
	return g.ImageGen.GenerateImage(ctx, models.ImageRequest{
		Prompt:      prompt,
		AspectRatio: "1:1",
		Size:        "1K",
	})
}

func sectionPrompt(plan models.GenerationPlan, ps models.PlannedSection, index int) string {
	return fmt.Sprintf(`You are generating content for a %s website.

WEBSITE CONTEXT:
- Brand: %s
- Purpose: %s
- Target Audience: %s
- Design Direction: %s
- Content Strategy: %s

SECTION TO GENERATE:
- Type: %s
- Purpose: %s
- Position: Section #%d

REQUIREMENTS:
1. Create professional, engaging copy appropriate for the target audience
2. For FEATURES sections: include 3-4 key features
3. Use the brand name naturally in the content
4. Keep headlines punchy and under 60 characters
5. Make CTAs clear and action-oriented`,
		plan.Profile.SiteType, plan.Profile.BrandName, plan.Profile.SitePurpose,
		plan.Profile.TargetAudience, plan.DesignDirection, plan.ContentStrategy,
		ps.Type, ps.Purpose, index+1)
}

func themeFor(profile models.SiteProfile) models.Theme {
	primary, ok := themeColors[profile.ColorScheme]
	if !ok || profile.ColorScheme == models.ColorCustom {
		primary = profile.PrimaryColor
		if primary == "" {
			primary = themeColors[models.ColorProfessional]
		}
	}
	font := models.FontModern
	if profile.SiteType == models.SiteBusiness {
		font = models.FontClassic
	}
	return models.Theme{PrimaryColor: primary, FontPairing: font}
}

func (g *SiteGenerator) sendProgress(projectID, status, message string) {
	if g.RedisClient == nil {
		return
	}

	progress := models.GenerateProgress{
		JobID:     projectID,
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(progress)
	if err != nil {
		log.Printf("[Redis] Failed to marshal progress: %v", err)
		return
	}

	channel := fmt.Sprintf("generate:progress:%s", projectID)
	if err := g.RedisClient.Publish(context.Background(), channel, data).Err(); err != nil {
		log.Printf("[Redis] Failed to publish progress: %v", err)
	}
}
