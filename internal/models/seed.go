package models

// DemoProject returns the seed document used when a user has no stored
// project yet. The hero section ships with English and Spanish content so the
// language switcher has something to show out of the box.
func DemoProject() Project {
	hero := Section{
		ID:      "header-1",
		Type:    SectionHero,
		Variant: VariantModern,
		Content: NewLanguageContent("en", SectionContent{
			Headline:    "Build Faster with Aether",
			Subheadline: "The AI-powered platform for next-generation web creation.",
			Body:        "Create stunning, responsive websites in minutes using our advanced Gemini 3 models.",
			ButtonText:  "Get Started",
		}).With("es", SectionContent{
			Headline:    "Construye más rápido con Aether",
			Subheadline: "La plataforma impulsada por IA para la creación web de próxima generación.",
			Body:        "Cree sitios web impresionantes y responsivos en minutos utilizando nuestros modelos avanzados Gemini 3.",
			ButtonText:  "Empezar",
		}),
		Styles: SectionStyles{
			BackgroundColor: "bg-white",
			TextColor:       "text-slate-900",
			Padding:         "py-20",
			Align:           AlignCenter,
		},
	}

	return Project{
		ID:              "proj-demo",
		Name:            "My Awesome Site",
		DefaultLanguage: "en",
		ActiveLanguage:  "en",
		DraftSections:   []Section{hero},
		Theme: Theme{
			PrimaryColor: "#4f46e5",
			FontPairing:  FontModern,
		},
	}
}
