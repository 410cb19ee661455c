package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SectionType identifies one content block of a generated page.
type SectionType string

const (
	SectionHero      SectionType = "HERO"
	SectionFeatures  SectionType = "FEATURES"
	SectionTextBlock SectionType = "CONTENT"
	SectionPricing   SectionType = "PRICING"
	SectionCTA       SectionType = "CTA"
	SectionGallery   SectionType = "GALLERY"
	SectionFooter    SectionType = "FOOTER"
)

// SectionVariant selects one of the fixed layout renditions of a section.
type SectionVariant string

const (
	VariantDefault SectionVariant = "default"
	VariantModern  SectionVariant = "modern"
	VariantMinimal SectionVariant = "minimal"
	VariantBold    SectionVariant = "bold"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

type FontPairing string

const (
	FontModern  FontPairing = "modern"
	FontClassic FontPairing = "classic"
	FontTech    FontPairing = "tech"
)

// SectionItem is one entry of a list-style section (features, pricing tiers).
type SectionItem struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
	Icon  string `json:"icon,omitempty"`
}

// SectionContent is the text/image payload of a section for a single language.
// Entries are independently replaceable per language.
type SectionContent struct {
	Headline    string        `json:"headline"`
	Subheadline string        `json:"subheadline"`
	Body        string        `json:"body"`
	ButtonText  string        `json:"button_text,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
	Items       []SectionItem `json:"items,omitempty"`
}

// Clone returns a deep copy, including the items slice.
func (c SectionContent) Clone() SectionContent {
	out := c
	if c.Items != nil {
		out.Items = make([]SectionItem, len(c.Items))
		copy(out.Items, c.Items)
	}
	return out
}

type SectionStyles struct {
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	Padding         string `json:"padding"`
	Align           Align  `json:"align"`
}

// SectionStylesPatch carries a partial style update. Nil fields are left
// untouched; the merge is a shallow field-by-field overwrite.
type SectionStylesPatch struct {
	BackgroundColor *string `json:"background_color,omitempty"`
	TextColor       *string `json:"text_color,omitempty"`
	Padding         *string `json:"padding,omitempty"`
	Align           *Align  `json:"align,omitempty"`
}

// LanguageContent is an ordered language-code -> SectionContent mapping.
// Insertion order is preserved so that "the first language" is well defined;
// translation uses it as the source language. The zero value is empty, but a
// section with an empty mapping is invalid: every section is created with at
// least one language entry.
type LanguageContent struct {
	langs  []string
	byLang map[string]SectionContent
}

// NewLanguageContent builds a mapping with a single language entry.
func NewLanguageContent(lang string, content SectionContent) LanguageContent {
	return LanguageContent{
		langs:  []string{lang},
		byLang: map[string]SectionContent{lang: content},
	}
}

// Get returns the content for lang and whether the entry exists.
func (lc LanguageContent) Get(lang string) (SectionContent, bool) {
	c, ok := lc.byLang[lang]
	return c, ok
}

// Has reports whether a content entry exists for lang.
func (lc LanguageContent) Has(lang string) bool {
	_, ok := lc.byLang[lang]
	return ok
}

// Languages returns the language codes in insertion order.
func (lc LanguageContent) Languages() []string {
	out := make([]string, len(lc.langs))
	copy(out, lc.langs)
	return out
}

// FirstLanguage returns the oldest language entry, the translation source.
func (lc LanguageContent) FirstLanguage() (string, bool) {
	if len(lc.langs) == 0 {
		return "", false
	}
	return lc.langs[0], true
}

func (lc LanguageContent) Len() int { return len(lc.langs) }

// With returns a copy of the mapping with the entry for lang inserted or
// overwritten. The receiver is not modified.
func (lc LanguageContent) With(lang string, content SectionContent) LanguageContent {
	next := lc.Clone()
	if next.byLang == nil {
		next.byLang = make(map[string]SectionContent, 1)
	}
	if _, exists := next.byLang[lang]; !exists {
		next.langs = append(next.langs, lang)
	}
	next.byLang[lang] = content
	return next
}

// Clone returns a deep copy of the mapping and every content entry.
func (lc LanguageContent) Clone() LanguageContent {
	out := LanguageContent{}
	if len(lc.langs) == 0 {
		return out
	}
	out.langs = make([]string, len(lc.langs))
	copy(out.langs, lc.langs)
	out.byLang = make(map[string]SectionContent, len(lc.byLang))
	for lang, c := range lc.byLang {
		out.byLang[lang] = c.Clone()
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object with keys in insertion
// order, matching the stored document shape.
func (lc LanguageContent) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lang := range lc.langs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(lang)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(lc.byLang[lang])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving its key order.
func (lc *LanguageContent) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("language content: expected JSON object, got %v", tok)
	}

	out := LanguageContent{byLang: make(map[string]SectionContent)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		lang, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("language content: non-string key %v", keyTok)
		}
		var content SectionContent
		if err := dec.Decode(&content); err != nil {
			return err
		}
		if _, exists := out.byLang[lang]; !exists {
			out.langs = append(out.langs, lang)
		}
		out.byLang[lang] = content
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*lc = out
	return nil
}

// Section is one block of the page. IDs are unique within a project.
type Section struct {
	ID      string          `json:"id"`
	Type    SectionType     `json:"type"`
	Variant SectionVariant  `json:"variant"`
	Content LanguageContent `json:"content"`
	Styles  SectionStyles   `json:"styles"`
	Locked  bool            `json:"locked"`
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Content = s.Content.Clone()
	return out
}

// CloneSections deep-copies a section list.
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

type Theme struct {
	PrimaryColor string      `json:"primary_color"`
	FontPairing  FontPairing `json:"font_pairing"`
}

// Project is the site document the builder edits. PublishedSections is a
// value snapshot taken at publish time; it never aliases DraftSections.
// ActiveLanguage need not have content in every section: a missing
// translation is a valid, displayed state, not an error.
type Project struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	DefaultLanguage   string    `json:"default_language"`
	ActiveLanguage    string    `json:"active_language"`
	DraftSections     []Section `json:"draft_sections"`
	PublishedSections []Section `json:"published_sections"`
	Theme             Theme     `json:"theme"`
}

// GenerationRequest is the input to the section Generator collaborator.
type GenerationRequest struct {
	Type       SectionType `json:"type"`
	UserPrompt string      `json:"user_prompt,omitempty"`
	Language   string      `json:"language"`
	BrandTone  string      `json:"brand_tone"`
	Pro        bool        `json:"pro"`
}

// GenerationResult is what the Generator returns for one section.
type GenerationResult struct {
	Variant SectionVariant `json:"variant"`
	Content SectionContent `json:"content"`
	Styles  SectionStyles  `json:"styles"`
}

type TranslationRequest struct {
	Content        SectionContent `json:"content"`
	SourceLanguage string         `json:"source_language"`
	TargetLanguage string         `json:"target_language"`
}

type ImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"` // "1:1", "16:9", "4:3", "3:4", "9:16"
	Size        string `json:"size"`         // "1K" or "2K"
}

// GenerateProgress is one progress event of the site generation pipeline,
// published over Redis and streamed to clients via SSE.
type GenerateProgress struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"` // planning, generating, completed, failed
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Language is one entry of the supported-language catalog.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Languages is the catalog offered in the editor's language switcher.
var Languages = []Language{
	{Code: "en", Name: "English", Flag: "🇺🇸"},
	{Code: "es", Name: "Español", Flag: "🇪🇸"},
	{Code: "fr", Name: "Français", Flag: "🇫🇷"},
	{Code: "de", Name: "Deutsch", Flag: "🇩🇪"},
	{Code: "ja", Name: "日本語", Flag: "🇯🇵"},
}
