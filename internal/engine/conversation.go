package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

// Timer delays between a user's answer and the assistant's next question.
// Zero delays apply the transition synchronously.
const (
	DefaultAdvanceDelay = 500 * time.Millisecond
	DefaultSkipDelay    = 300 * time.Millisecond
	DefaultUploadDelay  = 1500 * time.Millisecond
)

const defaultPreferredLanguage = "tr"

// stepFrame is one entry of the back-navigation stack: the step we were on
// and how long the message log was before the answer that left it.
type stepFrame struct {
	step   models.OnboardingStep
	msgLen int
}

// Conversation drives the guided onboarding dialogue: an append-only message
// log, a cursor into the step graph, and the site profile being accumulated.
// All methods are safe for concurrent use; at most one assistant-advance
// timer is armed at any time, and every user action supersedes it.
type Conversation struct {
	mu       sync.Mutex
	session  Session
	planner  Planner
	uploader Uploader

	step        models.OnboardingStep
	stepHistory []stepFrame
	messages    []models.ConversationMessage
	profile     models.SiteProfile
	plan        *models.GenerationPlan

	generating bool
	editMode   bool

	timer   *time.Timer
	seq     uint64 // bumped by every state-changing user action; a fired timer checks it first
	planSeq uint64 // seq of the planner call that owns the generating flag

	advanceDelay time.Duration
	skipDelay    time.Duration
	uploadDelay  time.Duration
}

// NewConversation starts a fresh dialogue at the welcome step with the
// greeting already in the log.
func NewConversation(session Session, planner Planner, uploader Uploader) *Conversation {
	c := &Conversation{
		session:      session,
		planner:      planner,
		uploader:     uploader,
		advanceDelay: DefaultAdvanceDelay,
		skipDelay:    DefaultSkipDelay,
		uploadDelay:  DefaultUploadDelay,
	}
	c.restartLocked()
	return c
}

// Step returns the current onboarding step.
func (c *Conversation) Step() models.OnboardingStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Messages returns a copy of the dialogue log.
func (c *Conversation) Messages() []models.ConversationMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ConversationMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Profile returns the profile collected so far.
func (c *Conversation) Profile() models.SiteProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.profile
	if p.KeyFeatures != nil {
		p.KeyFeatures = append([]string(nil), p.KeyFeatures...)
	}
	return p
}

// Plan returns the generation plan once StartGeneration has succeeded.
func (c *Conversation) Plan() (models.GenerationPlan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plan == nil {
		return models.GenerationPlan{}, false
	}
	return *c.plan, true
}

// IsGenerating reports whether the planner call is in flight.
func (c *Conversation) IsGenerating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generating
}

// IsEditMode reports whether the next answer returns straight to review.
func (c *Conversation) IsEditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editMode
}

// SubmitFreeText records a typed answer, writes the profile field the current
// question asked for, and advances to the next step.
func (c *Conversation) SubmitFreeText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == models.StepGenerating || c.step == models.StepEditMenu {
		return
	}
	c.beginActionLocked()

	msgLen := len(c.messages)
	c.appendMessageLocked(models.RoleUser, text, nil)
	c.applyAnswerLocked(text)

	if c.editMode {
		c.advanceLocked(models.StepReview, c.advanceDelay, msgLen)
		return
	}
	if cfg, ok := conversationFlow[c.step]; ok && cfg.next != "" {
		c.advanceLocked(cfg.next, c.advanceDelay, msgLen)
	}
}

// applyAnswerLocked writes the typed answer into the profile field owned by
// the question asked when entering the current step.
func (c *Conversation) applyAnswerLocked(text string) {
	switch c.step {
	case models.StepSiteType:
		c.profile.SitePurpose = text
	case models.StepSitePurpose:
		c.profile.TargetAudience = text
	case models.StepTargetAudience:
		c.profile.BrandName = text
	case models.StepBrandInfo:
		c.profile.BrandTagline = text
	case models.StepContentDetails:
		features := strings.Split(text, ",")
		trimmed := make([]string, 0, len(features))
		for _, f := range features {
			if f = strings.TrimSpace(f); f != "" {
				trimmed = append(trimmed, f)
			}
		}
		c.profile.KeyFeatures = trimmed
	case models.StepReview:
		c.profile.AdditionalNotes = text
	}
}

// SubmitChoice records a selected option. On most steps this fills a profile
// field and advances; on REVIEW and EDIT_MENU it navigates instead. The
// confirm option on REVIEW starts generation and blocks until the planner
// answers.
func (c *Conversation) SubmitChoice(ctx context.Context, option string) error {
	c.mu.Lock()
	if c.step == models.StepGenerating {
		c.mu.Unlock()
		return nil
	}
	c.beginActionLocked()

	if c.step == models.StepReview {
		switch {
		case strings.Contains(option, "Baştan başla"):
			c.restartLocked()
			c.mu.Unlock()
			return nil
		case strings.Contains(option, "Bilgileri düzenle"):
			c.enterEditMenuLocked()
			c.mu.Unlock()
			return nil
		case strings.Contains(option, "oluştur"):
			c.mu.Unlock()
			_, err := c.StartGeneration(ctx)
			return err
		}
	}

	if c.step == models.StepEditMenu {
		defer c.mu.Unlock()
		if strings.Contains(option, "Vazgeç") {
			c.goBackLocked()
			return nil
		}
		target, ok := editTargetFor(option)
		if !ok {
			return fmt.Errorf("unknown edit option: %q", option)
		}
		c.editMode = true
		c.stepHistory = append(c.stepHistory, stepFrame{step: c.step, msgLen: len(c.messages)})
		c.step = target
		if cfg, ok := conversationFlow[target]; ok {
			c.appendMessageLocked(models.RoleAssistant, cfg.question, cfg.options)
		}
		return nil
	}

	defer c.mu.Unlock()
	msgLen := len(c.messages)
	c.appendMessageLocked(models.RoleUser, option, nil)

	switch c.step {
	case models.StepWelcome:
		if kind, ok := siteTypeChoices[option]; ok {
			c.profile.SiteType = kind
		}
	case models.StepLogoUpload:
		switch {
		case strings.Contains(option, "logomu yükleyeceğim"):
			// Stay put until UploadLogo arrives.
			return nil
		case strings.Contains(option, "AI ile oluştur"):
			c.profile.LogoURL = models.LogoAIGenerated
		case strings.Contains(option, "atla"):
			c.profile.LogoURL = ""
		}
	case models.StepColorPreference:
		if scheme, ok := colorChoices[option]; ok {
			c.profile.ColorScheme = scheme
		}
	}

	if c.editMode {
		c.advanceLocked(models.StepReview, c.advanceDelay, msgLen)
		return nil
	}
	if cfg, ok := conversationFlow[c.step]; ok && cfg.next != "" {
		c.advanceLocked(cfg.next, c.advanceDelay, msgLen)
	}
	return nil
}

// Skip passes over an optional question without writing anything to the
// profile. Non-optional steps ignore it.
func (c *Conversation) Skip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := conversationFlow[c.step]
	if !ok || !cfg.optional {
		return
	}
	c.beginActionLocked()
	msgLen := len(c.messages)
	c.appendMessageLocked(models.RoleUser, "⏭️ Atla", nil)
	next := cfg.next
	if c.editMode {
		next = models.StepReview
	}
	c.advanceLocked(next, c.skipDelay, msgLen)
}

// GoBack returns to the previous step and truncates the message log to
// exactly the length it had before that step was answered. Profile fields
// already captured stay intact. With an empty history it does nothing, so
// repeated calls at the welcome step are safe.
func (c *Conversation) GoBack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beginActionLocked()
	c.goBackLocked()
}

func (c *Conversation) goBackLocked() {
	if len(c.stepHistory) == 0 {
		return
	}
	frame := c.stepHistory[len(c.stepHistory)-1]
	c.stepHistory = c.stepHistory[:len(c.stepHistory)-1]
	if frame.msgLen < len(c.messages) {
		c.messages = c.messages[:frame.msgLen]
	}
	c.step = frame.step
	if frame.step == models.StepReview {
		// The review bubble was truncated away with everything after it.
		c.editMode = false
		c.showReviewLocked()
	}
}

// Restart throws the whole dialogue away and begins again at the greeting.
// Only the preferred language survives.
func (c *Conversation) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beginActionLocked()
	c.restartLocked()
}

func (c *Conversation) restartLocked() {
	lang := c.profile.PreferredLanguage
	if lang == "" {
		lang = defaultPreferredLanguage
	}
	c.step = models.StepWelcome
	c.stepHistory = nil
	c.messages = nil
	c.profile = models.SiteProfile{PreferredLanguage: lang}
	c.plan = nil
	c.generating = false
	c.editMode = false
	c.appendMessageLocked(models.RoleAssistant, greetingText, greetingOptions)
}

// UploadLogo stores the user's logo file and advances past the logo step.
// The stock uploader degrades to an inline data URL instead of failing; the
// error branch below exists for Uploader implementations without that
// fallback. If the user navigated elsewhere while the upload was in flight,
// the result is discarded.
func (c *Conversation) UploadLogo(ctx context.Context, filename string, data []byte) error {
	c.mu.Lock()
	c.beginActionLocked()
	seq := c.seq
	c.mu.Unlock()

	url, err := c.uploader.Store(ctx, filename, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != seq {
		return ErrStaleResult
	}
	if err != nil {
		c.appendMessageLocked(models.RoleAssistant, "❌ Logo yüklenirken bir hata oluştu. Lütfen tekrar deneyin.", nil)
		return errors.Join(ErrUploadFailed, err)
	}
	c.profile.LogoURL = url

	msgLen := len(c.messages)
	c.appendMessageLocked(models.RoleUser, "✅ Logo başarıyla yüklendi", nil)
	next := models.StepReview
	if !c.editMode {
		cfg, ok := conversationFlow[c.step]
		if !ok || cfg.next == "" {
			return nil
		}
		next = cfg.next
	}
	c.advanceLocked(next, c.uploadDelay, msgLen)
	return nil
}

// StartGeneration hands the completed profile to the planner. It is only
// reachable from the review step. On failure the dialogue returns to review
// so the user can retry; on success the plan is retained and the dialogue
// stays on GENERATING for the hand-off to the builder.
func (c *Conversation) StartGeneration(ctx context.Context) (models.GenerationPlan, error) {
	c.mu.Lock()
	if c.step != models.StepReview {
		c.mu.Unlock()
		return models.GenerationPlan{}, fmt.Errorf("generation can only start from the review step, not %s", c.step)
	}
	c.beginActionLocked()
	c.generating = true
	c.stepHistory = append(c.stepHistory, stepFrame{step: c.step, msgLen: len(c.messages)})
	c.step = models.StepGenerating
	c.appendMessageLocked(models.RoleAssistant, "🎨 Harika! Şimdi size özel web sitenizi oluşturuyorum...", nil)
	profile := c.profile
	seq := c.seq
	c.planSeq = seq
	c.mu.Unlock()

	plan, err := c.planner.Plan(ctx, profile)

	c.mu.Lock()
	defer c.mu.Unlock()
	// The busy flag clears even when the result is discarded; only a newer
	// planner call may keep it on.
	if c.planSeq == seq {
		c.generating = false
	}
	if c.seq != seq {
		return models.GenerationPlan{}, ErrStaleResult
	}
	if err != nil {
		// Return to review so the user can retry instead of dead-ending in
		// GENERATING. The error message stays in the log.
		c.appendMessageLocked(models.RoleAssistant, "❌ Oluşturma sırasında hata oluştu. Lütfen tekrar deneyin.", nil)
		if n := len(c.stepHistory); n > 0 {
			c.stepHistory = c.stepHistory[:n-1]
		}
		c.step = models.StepReview
		c.showReviewLocked()
		return models.GenerationPlan{}, classifyGenerationError(err)
	}
	c.plan = &plan
	c.appendMessageLocked(models.RoleAssistant, "✅ Siteniz hazır! Builder moduna geçiliyor...", nil)
	return plan, nil
}

// beginActionLocked supersedes any pending assistant-advance timer and marks
// in-flight collaborator results stale. Only state-changing entry points call
// it; guarded no-ops return before reaching it so idle chatter cannot
// invalidate a planner or upload result.
func (c *Conversation) beginActionLocked() {
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// advanceLocked schedules the transition to next after delay. msgLen is the
// log length before the user's answer; it is what GoBack truncates to. A zero
// delay applies the transition immediately.
func (c *Conversation) advanceLocked(next models.OnboardingStep, delay time.Duration, msgLen int) {
	if delay <= 0 {
		c.applyAdvanceLocked(next, msgLen)
		return
	}
	seq := c.seq
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.seq != seq {
			return
		}
		c.timer = nil
		c.applyAdvanceLocked(next, msgLen)
	})
}

func (c *Conversation) applyAdvanceLocked(next models.OnboardingStep, msgLen int) {
	// Returning to review out of an edit detour is not recorded: going back
	// from review should unwind the forward flow, not replay the detour.
	if next != models.StepReview || !c.editMode {
		c.stepHistory = append(c.stepHistory, stepFrame{step: c.step, msgLen: msgLen})
	}
	c.step = next
	if next == models.StepReview {
		c.editMode = false
		c.showReviewLocked()
		return
	}
	if cfg, ok := conversationFlow[next]; ok {
		c.appendMessageLocked(models.RoleAssistant, cfg.question, cfg.options)
	}
}

// enterEditMenuLocked swaps the review options bubble for the edit menu.
func (c *Conversation) enterEditMenuLocked() {
	if len(c.messages) > 0 {
		c.messages = c.messages[:len(c.messages)-1]
	}
	c.stepHistory = append(c.stepHistory, stepFrame{step: c.step, msgLen: len(c.messages)})
	c.step = models.StepEditMenu
	cfg := conversationFlow[models.StepEditMenu]
	c.appendMessageLocked(models.RoleAssistant, cfg.question, cfg.options)
}

func (c *Conversation) showReviewLocked() {
	c.appendMessageLocked(models.RoleAssistant, reviewSummary(c.profile), reviewOptions)
}

func (c *Conversation) appendMessageLocked(role models.MessageRole, text string, options []string) {
	c.messages = append(c.messages, models.ConversationMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
		Options:   options,
		Step:      c.step,
	})
}
