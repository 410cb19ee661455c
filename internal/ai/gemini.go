// Package ai implements the generation collaborators on top of the Gemini
// API. The engines only see typed results or typed failures; prompts, models
// and retry policy live here.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/aetherbuildapp/aetherbuild/config"
	"github.com/aetherbuildapp/aetherbuild/internal/engine"
	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

const maxAttempts = 3

// GeminiClient implements the Planner, Generator, Translator and
// ImageGenerator interfaces of the engine package.
type GeminiClient struct {
	cli        *genai.Client
	textModel  string
	proModel   string
	imageModel string
}

func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		cli:        cli,
		textModel:  cfg.GeminiTextModel,
		proModel:   "gemini-2.5-pro",
		imageModel: cfg.GeminiImageModel,
	}, nil
}

// Plan turns a completed site profile into an ordered section outline.
func (g *GeminiClient) Plan(ctx context.Context, profile models.SiteProfile) (models.GenerationPlan, error) {
	features := "Not specified"
	if len(profile.KeyFeatures) > 0 {
		features = strings.Join(profile.KeyFeatures, ", ")
	}
	notes := profile.AdditionalNotes
	if notes == "" {
		notes = "None"
	}

	prompt := fmt.Sprintf(`You are an expert web designer and UX strategist. Based on the following client profile, create a comprehensive website plan.

CLIENT PROFILE:
- Site Type: %s
- Brand Name: %s
- Purpose: %s
- Target Audience: %s
- Color Scheme: %s
- Key Features/Services: %s
- Additional Notes: %s

TASK:
Create a strategic plan for this website including:
1. Which sections to include and in what order (types: HERO, FEATURES, CONTENT, PRICING, CTA, GALLERY, FOOTER)
2. The purpose of each section
3. Overall design direction
4. Content strategy

Consider best practices for %s websites and the target audience.

Respond with JSON: {"planned_sections": [{"type", "purpose", "priority"}], "design_direction", "content_strategy"}`,
		profile.SiteType, profile.BrandName, profile.SitePurpose, profile.TargetAudience,
		profile.ColorScheme, features, notes, profile.SiteType)

	var plan models.GenerationPlan
	if err := g.generateJSON(ctx, g.proModel, prompt, &plan); err != nil {
		return models.GenerationPlan{}, err
	}
	plan.Profile = profile
	return plan, nil
}

// GenerateSection produces content, styles and a variant for one section.
func (g *GeminiClient) GenerateSection(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	model := g.textModel
	if req.Pro {
		model = g.proModel
	}

	intent := req.UserPrompt
	if intent == "" {
		intent = "High conversion, clean design."
	}

	prompt := fmt.Sprintf(`You are an expert UI/UX Designer.
Task: Generate a JSON configuration for a website section.

Context:
- Type: %s
- Language: %s
- Brand Tone: %s
- User Intent: %s

Rules:
- variant is one of: default, modern, minimal, bold
- styles.align is one of: left, center, right
- styles colors are Tailwind utility classes (e.g. "bg-white", "text-slate-900")
- For FEATURES sections include 3-4 items with title and desc
- Copy must be written in the requested language

Respond with JSON: {"variant", "content": {"headline", "subheadline", "body", "button_text", "items"}, "styles": {"align", "background_color", "text_color"}}`,
		req.Type, req.Language, req.BrandTone, intent)

	var result models.GenerationResult
	if err := g.generateJSON(ctx, model, prompt, &result); err != nil {
		return models.GenerationResult{}, err
	}
	return result, nil
}

// Translate rewrites one language's section content into another.
func (g *GeminiClient) Translate(ctx context.Context, req models.TranslationRequest) (models.SectionContent, error) {
	source, err := json.Marshal(req.Content)
	if err != nil {
		return models.SectionContent{}, fmt.Errorf("failed to marshal translation source: %w", err)
	}

	prompt := fmt.Sprintf(`Translate the following website content from %s to %s.
Maintain the tone, length constraints, and marketing impact.
Respond with the same JSON shape.

Input JSON: %s`, req.SourceLanguage, req.TargetLanguage, source)

	var content models.SectionContent
	if err := g.generateJSON(ctx, g.textModel, prompt, &content); err != nil {
		return models.SectionContent{}, err
	}
	return content, nil
}

// GenerateImage produces an inline data URL for the generated image.
func (g *GeminiClient) GenerateImage(ctx context.Context, req models.ImageRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: req.AspectRatio,
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.imageModel,
			[]*genai.Content{{Parts: []*genai.Part{{Text: req.Prompt}}}}, cfg)
		if err != nil {
			lastErr = classify(err)
			if lastErr != err && lastErr != nil {
				// Quota and credential failures never heal on retry.
				return "", lastErr
			}
		} else {
			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if part.InlineData != nil && len(part.InlineData.Data) > 0 {
						return inlineDataURL(part.InlineData), nil
					}
				}
			}
			lastErr = fmt.Errorf("no image in response")
		}
		backoff(ctx, attempt)
	}
	return "", fmt.Errorf("image generation failed: %w", lastErr)
}

// GenerateLogo renders a brand mark as a 1:1 image.
func (g *GeminiClient) GenerateLogo(ctx context.Context, brandName, industry string) (string, error) {
	prompt := fmt.Sprintf(`Create a modern, professional logo for "%s".`, brandName)
	if industry != "" {
		prompt += fmt.Sprintf("\nIndustry: %s", industry)
	}
	prompt += "\nStyle: Minimalist, scalable, memorable\nFormat: Simple icon or lettermark that works well at small sizes"

	return g.GenerateImage(ctx, models.ImageRequest{
		Prompt:      prompt,
		AspectRatio: "1:1",
		Size:        "1K",
	})
}

// generateJSON sends the prompt in JSON response mode and decodes the first
// candidate into out, retrying transient failures with backoff.
func (g *GeminiClient) generateJSON(ctx context.Context, model, prompt string, out any) error {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, cfg)
		switch {
		case err != nil:
			lastErr = classify(err)
			if lastErr != err && lastErr != nil {
				return lastErr
			}
			log.Printf("[Gemini] %s attempt %d failed: %v", model, attempt+1, err)
		case len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0:
			lastErr = fmt.Errorf("empty response from model")
		default:
			text := resp.Candidates[0].Content.Parts[0].Text
			if err := json.Unmarshal([]byte(text), out); err != nil {
				lastErr = fmt.Errorf("invalid JSON from model: %w", err)
			} else {
				return nil
			}
		}
		backoff(ctx, attempt)
	}
	return lastErr
}

func backoff(ctx context.Context, attempt int) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
	}
}

// classify maps API failures onto the engine's error taxonomy. Quota and
// credential problems are surfaced distinctly so the UI can message them;
// anything else is left for the engine to fold into its generic failure.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota") || strings.Contains(msg, "429"):
		return engine.ErrQuotaExceeded
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthenticated") || strings.Contains(msg, "permission_denied"):
		return engine.ErrInvalidCredentials
	}
	return err
}

func inlineDataURL(blob *genai.Blob) string {
	mimeType := blob.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(blob.Data)
}
