package models

import "time"

// OnboardingStep identifies one state of the guided onboarding dialogue.
type OnboardingStep string

const (
	StepWelcome         OnboardingStep = "WELCOME"
	StepSiteType        OnboardingStep = "SITE_TYPE"
	StepSitePurpose     OnboardingStep = "SITE_PURPOSE"
	StepTargetAudience  OnboardingStep = "TARGET_AUDIENCE"
	StepBrandInfo       OnboardingStep = "BRAND_INFO"
	StepLogoUpload      OnboardingStep = "LOGO_UPLOAD"
	StepColorPreference OnboardingStep = "COLOR_PREFERENCE"
	StepContentDetails  OnboardingStep = "CONTENT_DETAILS"
	StepReview          OnboardingStep = "REVIEW"
	StepEditMenu        OnboardingStep = "EDIT_MENU"
	StepGenerating      OnboardingStep = "GENERATING"
)

type MessageRole string

const (
	RoleAssistant MessageRole = "assistant"
	RoleUser      MessageRole = "user"
)

// ConversationMessage is one entry of the append-only dialogue log. Messages
// are never mutated after creation; going back only truncates from the tail.
type ConversationMessage struct {
	ID        string         `json:"id"`
	Role      MessageRole    `json:"role"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Options   []string       `json:"options,omitempty"`
	Step      OnboardingStep `json:"step"`
}

type SiteKind string

const (
	SiteBusiness  SiteKind = "business"
	SitePortfolio SiteKind = "portfolio"
	SiteBlog      SiteKind = "blog"
	SiteEcommerce SiteKind = "ecommerce"
	SiteLanding   SiteKind = "landing"
	SiteOther     SiteKind = "other"
)

type ColorScheme string

const (
	ColorProfessional ColorScheme = "professional"
	ColorVibrant      ColorScheme = "vibrant"
	ColorMinimal      ColorScheme = "minimal"
	ColorDark         ColorScheme = "dark"
	ColorCustom       ColorScheme = "custom"
)

// LogoAIGenerated marks a profile whose logo should be produced by the image
// generator instead of an upload.
const LogoAIGenerated = "AI_GENERATED"

// SiteProfile is the structured record the onboarding dialogue accumulates,
// one field per completed step.
type SiteProfile struct {
	SiteType          SiteKind    `json:"site_type,omitempty"`
	SitePurpose       string      `json:"site_purpose,omitempty"`
	TargetAudience    string      `json:"target_audience,omitempty"`
	BrandName         string      `json:"brand_name,omitempty"`
	BrandTagline      string      `json:"brand_tagline,omitempty"`
	LogoURL           string      `json:"logo_url,omitempty"`
	ColorScheme       ColorScheme `json:"color_scheme,omitempty"`
	PrimaryColor      string      `json:"primary_color,omitempty"`
	KeyFeatures       []string    `json:"key_features,omitempty"`
	AdditionalNotes   string      `json:"additional_notes,omitempty"`
	PreferredLanguage string      `json:"preferred_language"`
}

// PlannedSection is one entry of the planner's proposed page outline.
type PlannedSection struct {
	Type     SectionType `json:"type"`
	Purpose  string      `json:"purpose"`
	Priority int         `json:"priority"`
}

// GenerationPlan is the planner's output: the ordered section outline plus
// the rationale used when generating content.
type GenerationPlan struct {
	Profile         SiteProfile      `json:"profile"`
	PlannedSections []PlannedSection `json:"planned_sections"`
	DesignDirection string           `json:"design_direction"`
	ContentStrategy string           `json:"content_strategy"`
}
