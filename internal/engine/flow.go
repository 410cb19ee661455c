package engine

import (
	"fmt"
	"strings"

	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

type inputKind int

const (
	inputFreeText inputKind = iota
	inputChoice
)

// stepConfig is one node of the static onboarding step graph. The graph is
// read-only at runtime; navigation state lives in the Conversation.
type stepConfig struct {
	next     models.OnboardingStep
	question string
	input    inputKind
	options  []string
	optional bool
}

const greetingText = "👋 Merhaba! Ben Aether AI, size harika bir web sitesi oluşturma konusunda yardımcı olacağım. Önce sizi biraz tanıyalım. Hangi tür bir web sitesi oluşturmak istiyorsunuz?"

var greetingOptions = []string{
	"🏢 İşletme/Kurumsal",
	"🎨 Portfolio/Kişisel",
	"📝 Blog",
	"🛍️ E-ticaret",
	"🚀 Landing Page",
	"💡 Diğer",
}

// conversationFlow maps each step to its question and forward pointer. The
// question stored at a step is what the assistant asks AFTER that step's
// answer arrives, so the profile field written at step N belongs to the
// question asked when entering step N.
var conversationFlow = map[models.OnboardingStep]stepConfig{
	models.StepWelcome: {
		next:     models.StepSiteType,
		question: "Harika! Şimdi biraz daha detaya girelim. Web sitenizin ana amacı nedir?",
		input:    inputFreeText,
	},
	models.StepSiteType: {
		next:     models.StepSitePurpose,
		question: "Mükemmel! Hedef kitleniz kimler?",
		input:    inputFreeText,
	},
	models.StepSitePurpose: {
		next:     models.StepTargetAudience,
		question: "Anladım. Markanızın adı nedir?",
		input:    inputFreeText,
	},
	models.StepTargetAudience: {
		next:     models.StepBrandInfo,
		question: "Harika! Markanızı özetleyen bir slogan/tagline var mı?",
		input:    inputFreeText,
		optional: true,
	},
	models.StepBrandInfo: {
		next:     models.StepLogoUpload,
		question: "Hazırda bir logonuz var mı?",
		input:    inputChoice,
		options: []string{
			"✅ Evet, logomu yükleyeceğim",
			"🎨 Hayır, AI ile oluşturulsun",
			"⏭️ Şimdilik logoyu atla",
		},
	},
	models.StepLogoUpload: {
		next:     models.StepColorPreference,
		question: "Renk tercihiniz nasıl olsun?",
		input:    inputChoice,
		options: []string{
			"💼 Profesyonel (Mavi tonları)",
			"🌈 Canlı ve Enerjik",
			"⚪ Minimal ve Sade",
			"🌙 Koyu Tema",
			"🎨 Özel renk seçeceğim",
		},
	},
	models.StepColorPreference: {
		next:     models.StepContentDetails,
		question: "Neredeyse hazırız! Sitede öne çıkarmak istediğiniz özellikler, hizmetler veya ürünler nelerdir?",
		input:    inputFreeText,
	},
	models.StepContentDetails: {
		next:     models.StepReview,
		question: "Mükemmel! Son olarak, eklemek istediğiniz başka bir şey var mı?",
		input:    inputFreeText,
		optional: true,
	},
	models.StepEditMenu: {
		// No static next pointer: the edit menu jumps directly to the step
		// that owns the selected field.
		question: "Hangi bilgiyi değiştirmek istersiniz?",
		input:    inputChoice,
		options: []string{
			"🏢 Site Türü",
			"🎯 Hedef & Amaç",
			"🏷️ Marka Adı",
			"🎨 Renk & Logo",
			"📝 İçerik Detayları",
			"↩️ Vazgeç (Geri Dön)",
		},
	},
}

var reviewOptions = []string{
	"✅ Evet, oluştur!",
	"✏️ Bilgileri düzenle",
	"🔄 Baştan başla",
}

// siteTypeChoices maps the welcome options onto the site kind enum.
var siteTypeChoices = map[string]models.SiteKind{
	"🏢 İşletme/Kurumsal":  models.SiteBusiness,
	"🎨 Portfolio/Kişisel": models.SitePortfolio,
	"📝 Blog":              models.SiteBlog,
	"🛍️ E-ticaret":         models.SiteEcommerce,
	"🚀 Landing Page":      models.SiteLanding,
	"💡 Diğer":             models.SiteOther,
}

// colorChoices maps the color preference options onto the scheme enum.
var colorChoices = map[string]models.ColorScheme{
	"💼 Profesyonel (Mavi tonları)": models.ColorProfessional,
	"🌈 Canlı ve Enerjik":           models.ColorVibrant,
	"⚪ Minimal ve Sade":             models.ColorMinimal,
	"🌙 Koyu Tema":                   models.ColorDark,
	"🎨 Özel renk seçeceğim":         models.ColorCustom,
}

// editTargetFor resolves an edit-menu selection to the step that owns the
// field. The jump lands on the step whose question captures the field: the
// brand name, for example, is answered while sitting on TARGET_AUDIENCE.
func editTargetFor(option string) (models.OnboardingStep, bool) {
	switch {
	case strings.Contains(option, "Site Türü"):
		return models.StepWelcome, true
	case strings.Contains(option, "Hedef"):
		return models.StepSiteType, true
	case strings.Contains(option, "Marka"):
		return models.StepTargetAudience, true
	case strings.Contains(option, "Renk"):
		return models.StepLogoUpload, true
	case strings.Contains(option, "İçerik"):
		return models.StepContentDetails, true
	}
	return "", false
}

// reviewSummary renders the collected profile for the review step.
func reviewSummary(p models.SiteProfile) string {
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	logo := "Yok"
	if p.LogoURL != "" {
		logo = "Yüklendi/Seçildi"
	}
	features := "Belirtilmedi"
	if len(p.KeyFeatures) > 0 {
		features = strings.Join(p.KeyFeatures, ", ")
	}

	return fmt.Sprintf(`Harika! İşte topladığım bilgiler:

📋 **Site Bilgileri**
• Tür: %s
• Marka: %s
• Amaç: %s
• Hedef Kitle: %s

🎨 **Tasarım**
• Renk Şeması: %s
• Logo: %s

✨ **İçerik**
• Özellikler: %s

Şimdi size tam bir web sitesi oluşturacağım.

Hazır mısınız? 🚀`,
		orDash(string(p.SiteType)),
		orDash(p.BrandName),
		orDash(p.SitePurpose),
		orDash(p.TargetAudience),
		orDash(string(p.ColorScheme)),
		logo,
		features,
	)
}
