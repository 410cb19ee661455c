package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aetherbuildapp/aetherbuild/internal/document"
	"github.com/aetherbuildapp/aetherbuild/internal/history"
	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

// Token costs per AI-backed operation. A mutation whose cost exceeds the
// current balance is rejected before any collaborator call is made.
const (
	CostGenerateSection  = 10
	CostRollSection      = 5
	CostTranslateSection = 2
	CostGenerateImage    = 25
)

// DefaultAutosaveDebounce is the quiet window after the last commit before
// the document is written to the project store.
const DefaultAutosaveDebounce = 3 * time.Second

const defaultBrandTone = "Professional"

// Builder owns one site document wrapped in an undo/redo history, the token
// ledger for AI-backed operations, and the single-slot in-flight gate for
// generation requests. Every mutation the editor UI can perform goes through
// here and lands as exactly one atomic, undoable commit.
//
// The token ledger and the document are owned exclusively by this instance;
// the only hand-off from onboarding is the generated Project passed to
// NewBuilder or ResetProject.
type Builder struct {
	mu      sync.Mutex
	session Session

	history *history.Store[models.Project]
	tokens  int

	generating bool
	epoch      uint64 // bumped when a different document is loaded

	generator  Generator
	translator Translator
	imageGen   ImageGenerator

	store     ProjectStore
	saveTimer *time.Timer
	saveDelay time.Duration
}

// NewBuilder wraps the given project for editing. The store may be nil, in
// which case auto-save is disabled.
func NewBuilder(session Session, project models.Project, tokens int, generator Generator, translator Translator, imageGen ImageGenerator, store ProjectStore) *Builder {
	return &Builder{
		session:    session,
		history:    history.New(project),
		tokens:     tokens,
		generator:  generator,
		translator: translator,
		imageGen:   imageGen,
		store:      store,
		saveDelay:  DefaultAutosaveDebounce,
	}
}

// Project returns the current document.
func (b *Builder) Project() models.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.Present()
}

// Tokens returns the remaining token balance.
func (b *Builder) Tokens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens
}

// IsGenerating reports whether a generation-class request is in flight.
func (b *Builder) IsGenerating() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generating
}

func (b *Builder) CanUndo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanUndo()
}

func (b *Builder) CanRedo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanRedo()
}

// Undo steps the document one commit back. No-op on empty history.
func (b *Builder) Undo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.history.Undo() {
		return false
	}
	b.scheduleSaveLocked()
	return true
}

// Redo re-applies the most recently undone commit. No-op when nothing was
// undone since the last commit.
func (b *Builder) Redo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.history.Redo() {
		return false
	}
	b.scheduleSaveLocked()
	return true
}

// ResetProject replaces the document with a freshly loaded one, dropping all
// undo/redo history. Any generation result still in flight for the previous
// document is discarded when it arrives.
func (b *Builder) ResetProject(project models.Project) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.epoch++
	b.history.Reset(project)
}

// SetLanguage switches the active editing language as one undoable commit.
func (b *Builder) SetLanguage(lang string) {
	b.commit(func(p models.Project) models.Project {
		return document.SetActiveLanguage(p, lang)
	})
}

// ReorderSections moves a draft section. Out-of-range indices are rejected
// with an error before the pure transform runs.
func (b *Builder) ReorderSections(from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.history.Present().DraftSections)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("reorder indices out of range: from=%d to=%d len=%d", from, to, n)
	}
	b.history.Update(func(p models.Project) models.Project {
		return document.ReorderSections(p, from, to)
	})
	b.scheduleSaveLocked()
	return nil
}

// ChangeVariant sets a section's layout variant. A missing section id is a
// benign no-op.
func (b *Builder) ChangeVariant(sectionID string, variant models.SectionVariant) {
	b.commit(func(p models.Project) models.Project {
		return document.SetSectionVariant(p, sectionID, variant)
	})
}

// RemoveSection deletes a section from the draft. Missing id is a benign
// no-op; the commit is still recorded.
func (b *Builder) RemoveSection(sectionID string) {
	b.commit(func(p models.Project) models.Project {
		return document.RemoveSection(p, sectionID)
	})
}

// UpdateStyles merges a partial style patch into a section.
func (b *Builder) UpdateStyles(sectionID string, patch models.SectionStylesPatch) {
	b.commit(func(p models.Project) models.Project {
		return document.MergeSectionStyles(p, sectionID, patch)
	})
}

// AddSection generates a new section via the Generator collaborator and
// appends it to the draft. The new section's content is keyed only under the
// current active language. On failure the document and the balance are
// untouched and no partial section is ever committed.
func (b *Builder) AddSection(ctx context.Context, sectionType models.SectionType, prompt string) (models.Section, error) {
	b.mu.Lock()
	if b.generating {
		b.mu.Unlock()
		return models.Section{}, ErrBusy
	}
	if b.tokens < CostGenerateSection {
		b.mu.Unlock()
		return models.Section{}, ErrInsufficientTokens
	}
	b.generating = true
	epoch := b.epoch
	req := models.GenerationRequest{
		Type:       sectionType,
		UserPrompt: prompt,
		Language:   b.history.Present().ActiveLanguage,
		BrandTone:  defaultBrandTone,
		Pro:        b.session.Pro,
	}
	b.mu.Unlock()

	result, err := b.generator.GenerateSection(ctx, req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generating = false
	if err != nil {
		return models.Section{}, classifyGenerationError(err)
	}
	if epoch != b.epoch {
		return models.Section{}, ErrStaleResult
	}

	section := models.Section{
		ID:      "sec-" + uuid.New().String(),
		Type:    sectionType,
		Variant: result.Variant,
		Content: models.NewLanguageContent(req.Language, result.Content),
		Styles:  result.Styles,
	}
	b.history.Update(func(p models.Project) models.Project {
		return document.AppendSection(p, section)
	})
	b.tokens -= CostGenerateSection
	b.scheduleSaveLocked()
	return section, nil
}

// RollSection regenerates a section in place: content for the active
// language, variant and styles are replaced atomically in one commit while
// every other language entry is preserved. A missing section id is a silent
// no-op (the UI may race a deletion).
func (b *Builder) RollSection(ctx context.Context, sectionID string) error {
	b.mu.Lock()
	if b.generating {
		b.mu.Unlock()
		return ErrBusy
	}
	section, ok := document.FindSection(b.history.Present(), sectionID)
	if !ok {
		b.mu.Unlock()
		return nil
	}
	if b.tokens < CostRollSection {
		b.mu.Unlock()
		return ErrInsufficientTokens
	}
	b.generating = true
	epoch := b.epoch
	req := models.GenerationRequest{
		Type:       section.Type,
		UserPrompt: "Give me a creative variation",
		Language:   b.history.Present().ActiveLanguage,
		BrandTone:  defaultBrandTone,
		Pro:        b.session.Pro,
	}
	b.mu.Unlock()

	result, err := b.generator.GenerateSection(ctx, req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generating = false
	if err != nil {
		return classifyGenerationError(err)
	}
	if epoch != b.epoch {
		return ErrStaleResult
	}

	b.history.Update(func(p models.Project) models.Project {
		return document.ApplyGeneration(p, sectionID, p.ActiveLanguage, result)
	})
	b.tokens -= CostRollSection
	b.scheduleSaveLocked()
	return nil
}

// TranslateMissing fills the active language's content for a section by
// translating from the section's first (oldest) language entry. The source
// entry is never overwritten; when the active language already is the
// source, there is nothing to do.
func (b *Builder) TranslateMissing(ctx context.Context, sectionID string) error {
	b.mu.Lock()
	if b.generating {
		b.mu.Unlock()
		return ErrBusy
	}
	project := b.history.Present()
	section, ok := document.FindSection(project, sectionID)
	if !ok {
		b.mu.Unlock()
		return nil
	}
	sourceLang, ok := section.Content.FirstLanguage()
	if !ok {
		b.mu.Unlock()
		panic(fmt.Sprintf("engine: section %s has an empty content mapping", sectionID))
	}
	if sourceLang == project.ActiveLanguage {
		b.mu.Unlock()
		return nil
	}
	if b.tokens < CostTranslateSection {
		b.mu.Unlock()
		return ErrInsufficientTokens
	}
	b.generating = true
	epoch := b.epoch
	sourceContent, _ := section.Content.Get(sourceLang)
	req := models.TranslationRequest{
		Content:        sourceContent,
		SourceLanguage: sourceLang,
		TargetLanguage: project.ActiveLanguage,
	}
	b.mu.Unlock()

	translated, err := b.translator.Translate(ctx, req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generating = false
	if err != nil {
		return classifyGenerationError(err)
	}
	if epoch != b.epoch {
		return ErrStaleResult
	}

	b.history.Update(func(p models.Project) models.Project {
		return document.SetSectionContentForLanguage(p, sectionID, p.ActiveLanguage, translated)
	})
	b.tokens -= CostTranslateSection
	b.scheduleSaveLocked()
	return nil
}

// GenerateImage produces an AI image for the section and attaches it to the
// active language's content entry as one commit, debiting the image cost. It
// runs under the same single-in-flight gate as the other generation requests.
// A missing section or a missing content entry is a no-op: no collaborator
// call is made and nothing is debited.
func (b *Builder) GenerateImage(ctx context.Context, sectionID, prompt, aspectRatio string) (string, error) {
	b.mu.Lock()
	if b.generating {
		b.mu.Unlock()
		return "", ErrBusy
	}
	project := b.history.Present()
	section, ok := document.FindSection(project, sectionID)
	if !ok || !section.Content.Has(project.ActiveLanguage) {
		b.mu.Unlock()
		return "", nil
	}
	if b.tokens < CostGenerateImage {
		b.mu.Unlock()
		return "", ErrInsufficientTokens
	}
	b.generating = true
	epoch := b.epoch
	req := models.ImageRequest{
		Prompt:      prompt,
		AspectRatio: aspectRatio,
		Size:        "1K",
	}
	b.mu.Unlock()

	imageURL, err := b.imageGen.GenerateImage(ctx, req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generating = false
	if err != nil {
		return "", classifyGenerationError(err)
	}
	if epoch != b.epoch {
		return "", ErrStaleResult
	}

	b.history.Update(func(p models.Project) models.Project {
		return document.UpdateSectionImage(p, sectionID, p.ActiveLanguage, imageURL)
	})
	b.tokens -= CostGenerateImage
	b.scheduleSaveLocked()
	return imageURL, nil
}

// SetSectionImage writes an image URL into the section's content entry for
// the current active language and debits cost (0 for user uploads, the
// image-generation price for AI images). When the active language has no
// content entry yet the call is a no-op and nothing is debited: an image
// cannot be attached to content that does not exist.
func (b *Builder) SetSectionImage(sectionID, imageURL string, cost int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tokens < cost {
		return ErrInsufficientTokens
	}
	project := b.history.Present()
	section, ok := document.FindSection(project, sectionID)
	if !ok {
		return nil
	}
	if !section.Content.Has(project.ActiveLanguage) {
		return nil
	}
	b.history.Update(func(p models.Project) models.Project {
		return document.UpdateSectionImage(p, sectionID, p.ActiveLanguage, imageURL)
	})
	b.tokens -= cost
	b.scheduleSaveLocked()
	return nil
}

// Publish snapshots the draft into the published sections as one commit.
// Publishing twice without edits in between produces two history entries
// with identical published content.
func (b *Builder) Publish() models.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.Update(document.SnapshotPublish)
	b.scheduleSaveLocked()
	return b.history.Present()
}

// Close stops the pending auto-save timer, if any.
func (b *Builder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveTimer != nil {
		b.saveTimer.Stop()
		b.saveTimer = nil
	}
}

// commit runs one pure transform as a single undoable history entry.
func (b *Builder) commit(fn func(models.Project) models.Project) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.Update(fn)
	b.scheduleSaveLocked()
}

// scheduleSaveLocked (re)arms the debounced fire-and-forget auto-save with a
// snapshot of the present document. Failures are logged, never surfaced.
func (b *Builder) scheduleSaveLocked() {
	if b.store == nil {
		return
	}
	if b.saveTimer != nil {
		b.saveTimer.Stop()
	}
	project := b.history.Present()
	userID := b.session.UserID
	b.saveTimer = time.AfterFunc(b.saveDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.store.Save(ctx, userID, project); err != nil {
			log.Printf("[Builder] Auto-save failed for project %s: %v", project.ID, err)
		}
	})
}
