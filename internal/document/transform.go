// Package document holds the pure transformation functions over a site
// Project. Every function returns a new Project value; inputs are never
// mutated, which is what makes the history store's snapshots trustworthy.
package document

import (
	"fmt"

	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

// ReorderSections removes the draft section at from and reinserts it at to,
// preserving the relative order of everything else. Indices must be
// validated by the caller; out-of-range indices are a contract violation and
// panic rather than being silently clamped.
func ReorderSections(p models.Project, from, to int) models.Project {
	n := len(p.DraftSections)
	if from < 0 || from >= n || to < 0 || to >= n {
		panic(fmt.Sprintf("document: reorder indices out of range: from=%d to=%d len=%d", from, to, n))
	}

	next := make([]models.Section, 0, n)
	next = append(next, p.DraftSections[:from]...)
	next = append(next, p.DraftSections[from+1:]...)

	out := next[:to]
	rest := make([]models.Section, len(next[to:]))
	copy(rest, next[to:])

	reordered := make([]models.Section, 0, n)
	reordered = append(reordered, out...)
	reordered = append(reordered, p.DraftSections[from])
	reordered = append(reordered, rest...)

	p.DraftSections = reordered
	return p
}

// SetSectionVariant changes the variant of the section with the given id.
// A missing id returns the project unchanged: the UI may race a deletion,
// so this is a benign no-op rather than an error.
func SetSectionVariant(p models.Project, sectionID string, variant models.SectionVariant) models.Project {
	return replaceSection(p, sectionID, func(s models.Section) models.Section {
		s.Variant = variant
		return s
	})
}

// MergeSectionStyles applies a shallow field-by-field overwrite of the
// section's styles. Nil patch fields are left untouched. Missing id is a
// no-op.
func MergeSectionStyles(p models.Project, sectionID string, patch models.SectionStylesPatch) models.Project {
	return replaceSection(p, sectionID, func(s models.Section) models.Section {
		if patch.BackgroundColor != nil {
			s.Styles.BackgroundColor = *patch.BackgroundColor
		}
		if patch.TextColor != nil {
			s.Styles.TextColor = *patch.TextColor
		}
		if patch.Padding != nil {
			s.Styles.Padding = *patch.Padding
		}
		if patch.Align != nil {
			s.Styles.Align = *patch.Align
		}
		return s
	})
}

// SetActiveLanguage switches the language being edited. The language is not
// required to have content anywhere; rendering treats a missing translation
// as a display case, never an error.
func SetActiveLanguage(p models.Project, lang string) models.Project {
	p.ActiveLanguage = lang
	return p
}

// SetSectionContentForLanguage inserts or overwrites the content entry for
// lang in the section's language mapping. Other languages are untouched.
// Missing id is a no-op.
func SetSectionContentForLanguage(p models.Project, sectionID, lang string, content models.SectionContent) models.Project {
	return replaceSection(p, sectionID, func(s models.Section) models.Section {
		s.Content = s.Content.With(lang, content)
		return s
	})
}

// UpdateSectionImage writes imageURL into the section's content entry for
// lang. If that language has no content entry yet the section is returned
// unchanged: an image cannot be attached to content that does not exist.
func UpdateSectionImage(p models.Project, sectionID, lang, imageURL string) models.Project {
	return replaceSection(p, sectionID, func(s models.Section) models.Section {
		content, ok := s.Content.Get(lang)
		if !ok {
			return s
		}
		content = content.Clone()
		content.ImageURL = imageURL
		s.Content = s.Content.With(lang, content)
		return s
	})
}

// ApplyGeneration replaces a section's content for one language together
// with its variant and styles in a single step, as a regeneration ("roll")
// does. Content entries for other languages are preserved. Missing id is a
// no-op.
func ApplyGeneration(p models.Project, sectionID, lang string, result models.GenerationResult) models.Project {
	return replaceSection(p, sectionID, func(s models.Section) models.Section {
		s.Content = s.Content.With(lang, result.Content)
		s.Variant = result.Variant
		s.Styles = result.Styles
		return s
	})
}

// AppendSection adds a section to the end of the draft.
func AppendSection(p models.Project, section models.Section) models.Project {
	next := make([]models.Section, 0, len(p.DraftSections)+1)
	next = append(next, p.DraftSections...)
	next = append(next, section)
	p.DraftSections = next
	return p
}

// RemoveSection filters the section with the given id out of the draft,
// preserving the order of the remainder. Missing id is a no-op.
func RemoveSection(p models.Project, sectionID string) models.Project {
	next := make([]models.Section, 0, len(p.DraftSections))
	for _, s := range p.DraftSections {
		if s.ID != sectionID {
			next = append(next, s)
		}
	}
	p.DraftSections = next
	return p
}

// SnapshotPublish replaces PublishedSections with a deep, independent copy
// of the current draft. Later draft edits never retroactively change the
// published snapshot.
func SnapshotPublish(p models.Project) models.Project {
	p.PublishedSections = models.CloneSections(p.DraftSections)
	return p
}

// replaceSection rebuilds the draft slice with fn applied to the matching
// section. The untouched sections are shared; only the slice itself and the
// modified section are new values.
func replaceSection(p models.Project, sectionID string, fn func(models.Section) models.Section) models.Project {
	idx := -1
	for i, s := range p.DraftSections {
		if s.ID == sectionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p
	}

	next := make([]models.Section, len(p.DraftSections))
	copy(next, p.DraftSections)
	next[idx] = fn(next[idx])
	p.DraftSections = next
	return p
}

// FindSection returns the draft section with the given id.
func FindSection(p models.Project, sectionID string) (models.Section, bool) {
	for _, s := range p.DraftSections {
		if s.ID == sectionID {
			return s, true
		}
	}
	return models.Section{}, false
}

// DisplayContent resolves the content to render for a section in the given
// language. When the language has no entry, the first available language's
// content is returned with translated=false so the UI can flag the missing
// translation instead of failing.
func DisplayContent(s models.Section, lang string) (content models.SectionContent, translated bool) {
	if c, ok := s.Content.Get(lang); ok {
		return c, true
	}
	first, ok := s.Content.FirstLanguage()
	if !ok {
		// Sections are always created with at least one language entry.
		return models.SectionContent{}, false
	}
	c, _ := s.Content.Get(first)
	return c, false
}
