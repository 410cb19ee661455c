package engine

import (
	"context"

	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

// The engines treat everything that leaves the process as an abstract
// collaborator: given a request, they eventually get a typed result or a
// typed failure. Transport and prompt content live behind these interfaces.

// Planner turns a completed site profile into a generation plan.
type Planner interface {
	Plan(ctx context.Context, profile models.SiteProfile) (models.GenerationPlan, error)
}

// Generator produces content, styles and a variant for a single section.
type Generator interface {
	GenerateSection(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error)
}

// Translator translates one language's section content into another.
type Translator interface {
	Translate(ctx context.Context, req models.TranslationRequest) (models.SectionContent, error)
}

// ImageGenerator produces an image URL (or data URL) from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req models.ImageRequest) (string, error)
}

// Uploader stores a user-provided file and returns a URL for it.
// Implementations degrade to an inline data URL rather than losing the
// image when the backing store is unavailable.
type Uploader interface {
	Store(ctx context.Context, filename string, data []byte) (string, error)
}

// ProjectStore persists site documents. Auto-save is fire-and-forget; a
// failing Save is logged and never surfaced to the editor.
type ProjectStore interface {
	Save(ctx context.Context, userID string, project models.Project) error
	LoadCurrent(ctx context.Context, userID string) (*models.Project, error)
	Delete(ctx context.Context, userID, projectID string) error
}

// Session carries the authenticated caller's identity into an engine
// instance. It is passed explicitly at construction; the engines never read
// ambient user state.
type Session struct {
	UserID string
	Email  string
	Pro    bool
}
