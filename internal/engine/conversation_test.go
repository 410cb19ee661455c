package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

// newTestConversation builds an engine with synchronous step advancement so
// tests never have to wait for assistant-typing timers.
func newTestConversation(planner Planner, uploader Uploader) *Conversation {
	c := NewConversation(Session{UserID: "user-1"}, planner, uploader)
	c.advanceDelay = 0
	c.skipDelay = 0
	c.uploadDelay = 0
	return c
}

// walkToReview answers every onboarding question in order.
func walkToReview(t *testing.T, c *Conversation) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, c.SubmitChoice(ctx, "🏢 İşletme/Kurumsal"))
	require.Equal(t, models.StepSiteType, c.Step())

	c.SubmitFreeText("Danışmanlık hizmetlerimi tanıtmak")
	require.Equal(t, models.StepSitePurpose, c.Step())

	c.SubmitFreeText("KOBİ sahipleri")
	require.Equal(t, models.StepTargetAudience, c.Step())

	c.SubmitFreeText("Aether Danışmanlık")
	require.Equal(t, models.StepBrandInfo, c.Step())

	c.SubmitFreeText("Geleceği Tasarlıyoruz")
	require.Equal(t, models.StepLogoUpload, c.Step())

	require.NoError(t, c.SubmitChoice(ctx, "⏭️ Şimdilik logoyu atla"))
	require.Equal(t, models.StepColorPreference, c.Step())

	require.NoError(t, c.SubmitChoice(ctx, "💼 Profesyonel (Mavi tonları)"))
	require.Equal(t, models.StepContentDetails, c.Step())

	c.SubmitFreeText("SEO, Web Tasarım, Danışmanlık")
	require.Equal(t, models.StepReview, c.Step())
}

func TestGreetingOpensTheDialogue(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleAssistant, msgs[0].Role)
	assert.Contains(t, msgs[0].Text, "Merhaba")
	assert.Equal(t, greetingOptions, msgs[0].Options)
	assert.Equal(t, models.StepWelcome, c.Step())
}

func TestWelcomeChoiceSetsSiteTypeAndAdvances(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})

	require.NoError(t, c.SubmitChoice(context.Background(), "🏢 İşletme/Kurumsal"))

	assert.Equal(t, models.SiteBusiness, c.Profile().SiteType)
	assert.Equal(t, models.StepSiteType, c.Step())

	msgs := c.Messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, models.RoleAssistant, last.Role)
	assert.Equal(t, conversationFlow[models.StepSiteType].question, last.Text)
}

func TestFullFlowCollectsProfile(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})
	walkToReview(t, c)

	p := c.Profile()
	assert.Equal(t, models.SiteBusiness, p.SiteType)
	assert.Equal(t, "Danışmanlık hizmetlerimi tanıtmak", p.SitePurpose)
	assert.Equal(t, "KOBİ sahipleri", p.TargetAudience)
	assert.Equal(t, "Aether Danışmanlık", p.BrandName)
	assert.Equal(t, "Geleceği Tasarlıyoruz", p.BrandTagline)
	assert.Equal(t, models.ColorProfessional, p.ColorScheme)
	assert.Equal(t, []string{"SEO", "Web Tasarım", "Danışmanlık"}, p.KeyFeatures)
	assert.Equal(t, "tr", p.PreferredLanguage)

	msgs := c.Messages()
	last := msgs[len(msgs)-1]
	assert.Contains(t, last.Text, "Aether Danışmanlık")
	assert.Equal(t, reviewOptions, last.Options)
}

func TestSkipOnlyWorksOnOptionalSteps(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})

	require.NoError(t, c.SubmitChoice(context.Background(), "📝 Blog"))
	before := len(c.Messages())

	// SITE_TYPE is mandatory.
	c.Skip()
	assert.Equal(t, models.StepSiteType, c.Step())
	assert.Len(t, c.Messages(), before)

	c.SubmitFreeText("Yazılarımı paylaşmak")
	c.SubmitFreeText("Okurlar")
	require.Equal(t, models.StepTargetAudience, c.Step())

	// The question shown here is optional; skipping writes nothing.
	c.Skip()
	assert.Equal(t, models.StepBrandInfo, c.Step())
	assert.Empty(t, c.Profile().BrandName)
}

func TestGoBackTruncatesToExactLogLength(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})

	require.NoError(t, c.SubmitChoice(context.Background(), "🎨 Portfolio/Kişisel"))
	require.Equal(t, models.StepSiteType, c.Step())
	require.Len(t, c.Messages(), 3) // greeting, answer, next question

	c.GoBack()
	assert.Equal(t, models.StepWelcome, c.Step())
	assert.Len(t, c.Messages(), 1, "the answer and the follow-up question are unwound together")
	assert.Equal(t, models.SitePortfolio, c.Profile().SiteType, "captured fields survive going back")

	// Idempotent on an empty history.
	c.GoBack()
	assert.Equal(t, models.StepWelcome, c.Step())
	assert.Len(t, c.Messages(), 1)
}

func TestGoBackUnwindsMultiMessageSteps(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("bucket down")}
	c := newTestConversation(&fakePlanner{}, uploader)
	walkToLogoUpload(t, c)

	before := len(c.Messages())
	require.NoError(t, c.SubmitChoice(context.Background(), "✅ Evet, logomu yükleyeceğim"))
	err := c.UploadLogo(context.Background(), "logo.png", []byte{1})
	require.ErrorIs(t, err, ErrUploadFailed)
	require.Equal(t, models.StepLogoUpload, c.Step(), "a failed upload does not advance")
	require.Greater(t, len(c.Messages()), before)

	// The failed attempt left several messages; one goBack removes the whole
	// step's trail, not a fixed number of bubbles.
	c.GoBack()
	assert.Equal(t, models.StepBrandInfo, c.Step())
	for _, m := range c.Messages() {
		assert.NotContains(t, m.Text, "Logo yüklenirken")
	}
}

func walkToLogoUpload(t *testing.T, c *Conversation) {
	t.Helper()
	require.NoError(t, c.SubmitChoice(context.Background(), "🏢 İşletme/Kurumsal"))
	c.SubmitFreeText("Tanıtım")
	c.SubmitFreeText("Profesyoneller")
	c.SubmitFreeText("Aether")
	c.SubmitFreeText("Slogan")
	require.Equal(t, models.StepLogoUpload, c.Step())
}

func TestUploadLogoSuccessAdvances(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{url: "https://cdn.test/logo.png"})
	walkToLogoUpload(t, c)

	require.NoError(t, c.SubmitChoice(context.Background(), "✅ Evet, logomu yükleyeceğim"))
	require.Equal(t, models.StepLogoUpload, c.Step(), "engine waits for the upload")

	require.NoError(t, c.UploadLogo(context.Background(), "logo.png", []byte{1, 2}))
	assert.Equal(t, "https://cdn.test/logo.png", c.Profile().LogoURL)
	assert.Equal(t, models.StepColorPreference, c.Step())

	var confirmed bool
	for _, m := range c.Messages() {
		if strings.Contains(m.Text, "Logo başarıyla yüklendi") {
			confirmed = true
		}
	}
	assert.True(t, confirmed)
}

func TestEditBrandNameReturnsToReview(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})
	walkToReview(t, c)
	ctx := context.Background()

	require.NoError(t, c.SubmitChoice(ctx, "✏️ Bilgileri düzenle"))
	assert.Equal(t, models.StepEditMenu, c.Step())

	require.NoError(t, c.SubmitChoice(ctx, "🏷️ Marka Adı"))
	assert.Equal(t, models.StepTargetAudience, c.Step())
	assert.True(t, c.IsEditMode())

	c.SubmitFreeText("Yeni Marka")
	assert.Equal(t, models.StepReview, c.Step(), "an edited answer returns straight to review")
	assert.False(t, c.IsEditMode())
	assert.Equal(t, "Yeni Marka", c.Profile().BrandName)

	msgs := c.Messages()
	last := msgs[len(msgs)-1]
	assert.Contains(t, last.Text, "Yeni Marka", "the summary is re-rendered with the new value")
	assert.Equal(t, reviewOptions, last.Options)
}

func TestEditMenuCancelReturnsToReview(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})
	walkToReview(t, c)
	ctx := context.Background()

	require.NoError(t, c.SubmitChoice(ctx, "✏️ Bilgileri düzenle"))
	require.NoError(t, c.SubmitChoice(ctx, "↩️ Vazgeç (Geri Dön)"))

	assert.Equal(t, models.StepReview, c.Step())
	assert.False(t, c.IsEditMode())
	msgs := c.Messages()
	assert.Equal(t, reviewOptions, msgs[len(msgs)-1].Options)
}

func TestRestartKeepsOnlyPreferredLanguage(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})
	walkToReview(t, c)

	require.NoError(t, c.SubmitChoice(context.Background(), "🔄 Baştan başla"))

	assert.Equal(t, models.StepWelcome, c.Step())
	assert.Len(t, c.Messages(), 1)
	p := c.Profile()
	assert.Equal(t, models.SiteProfile{PreferredLanguage: "tr"}, p)
	_, ok := c.Plan()
	assert.False(t, ok)
}

func TestUserActionCancelsPendingAdvance(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})
	c.advanceDelay = 50 * time.Millisecond

	require.NoError(t, c.SubmitChoice(context.Background(), "📝 Blog"))
	c.GoBack() // supersedes the scheduled transition

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, models.StepWelcome, c.Step(), "a cancelled timer must not fire")
	assert.Len(t, c.Messages(), 2, "no assistant question may arrive after cancellation")
}

func TestStartGenerationSuccess(t *testing.T) {
	planner := &fakePlanner{plan: models.GenerationPlan{
		PlannedSections: []models.PlannedSection{{Type: models.SectionHero, Priority: 1}},
		DesignDirection: "clean",
	}}
	c := newTestConversation(planner, &fakeUploader{})
	walkToReview(t, c)

	plan, err := c.StartGeneration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "clean", plan.DesignDirection)
	assert.Equal(t, models.StepGenerating, c.Step())
	assert.False(t, c.IsGenerating())

	stored, ok := c.Plan()
	require.True(t, ok)
	assert.Equal(t, plan, stored)

	require.Len(t, planner.calls, 1)
	assert.Equal(t, "Aether Danışmanlık", planner.calls[0].BrandName)
}

func TestStartGenerationFailureReturnsToReview(t *testing.T) {
	planner := &fakePlanner{err: errors.New("planner unavailable")}
	c := newTestConversation(planner, &fakeUploader{})
	walkToReview(t, c)

	_, err := c.StartGeneration(context.Background())
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, models.StepReview, c.Step(), "failure must not dead-end in GENERATING")
	assert.False(t, c.IsGenerating())

	msgs := c.Messages()
	assert.Equal(t, reviewOptions, msgs[len(msgs)-1].Options, "the user can retry from review")

	var errored bool
	for _, m := range msgs {
		if strings.Contains(m.Text, "hata oluştu") {
			errored = true
		}
	}
	assert.True(t, errored)
}

func TestChatterDuringPlanningDoesNotDiscardPlan(t *testing.T) {
	planner := &fakePlanner{plan: models.GenerationPlan{DesignDirection: "clean"}}
	c := newTestConversation(planner, &fakeUploader{})
	walkToReview(t, c)

	// While the planner is in flight every one of these is a guarded no-op;
	// none of them may invalidate the pending result.
	planner.onCall = func() {
		c.SubmitFreeText("hala orada mısınız?")
		c.Skip()
		require.NoError(t, c.SubmitChoice(context.Background(), "✅ Evet, oluştur!"))
	}

	plan, err := c.StartGeneration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "clean", plan.DesignDirection)
	assert.Equal(t, models.StepGenerating, c.Step())
	assert.False(t, c.IsGenerating(), "the busy flag must clear once the planner answers")

	stored, ok := c.Plan()
	require.True(t, ok, "the plan must be kept")
	assert.Equal(t, plan, stored)

	require.Len(t, planner.calls, 1, "the rejected confirm click must not start a second plan")
	for _, m := range c.Messages() {
		assert.NotEqual(t, "hala orada mısınız?", m.Text)
	}
}

func TestGoBackDuringPlanningDiscardsResultCleanly(t *testing.T) {
	planner := &fakePlanner{plan: models.GenerationPlan{DesignDirection: "warm"}}
	c := newTestConversation(planner, &fakeUploader{})
	walkToReview(t, c)

	planner.onCall = func() { c.GoBack() }

	_, err := c.StartGeneration(context.Background())
	assert.ErrorIs(t, err, ErrStaleResult)
	assert.False(t, c.IsGenerating(), "a discarded result must still clear the busy flag")
	assert.Equal(t, models.StepReview, c.Step())

	_, ok := c.Plan()
	assert.False(t, ok, "a discarded plan must not be stored")

	msgs := c.Messages()
	assert.Equal(t, reviewOptions, msgs[len(msgs)-1].Options, "the user can retry from review")
}

func TestStartGenerationOnlyFromReview(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})

	_, err := c.StartGeneration(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.StepWelcome, c.Step())
}

func TestConfirmOptionStartsGeneration(t *testing.T) {
	planner := &fakePlanner{plan: models.GenerationPlan{DesignDirection: "warm"}}
	c := newTestConversation(planner, &fakeUploader{})
	walkToReview(t, c)

	require.NoError(t, c.SubmitChoice(context.Background(), "✅ Evet, oluştur!"))
	assert.Equal(t, models.StepGenerating, c.Step())
	require.Len(t, planner.calls, 1)
}

func TestFreeTextAtReviewStoresAdditionalNotes(t *testing.T) {
	c := newTestConversation(&fakePlanner{}, &fakeUploader{})
	walkToReview(t, c)

	c.SubmitFreeText("Referans: aether.dev")
	assert.Equal(t, "Referans: aether.dev", c.Profile().AdditionalNotes)
}
