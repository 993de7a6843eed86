// Package evidence flattens structured resumes into attributable bullets.
package evidence

import (
	"github.com/jonathan/resume-fit/internal/types"
)

// Flatten walks the resume's sections in parse order and returns every bullet
// with its section and context. A nil or raw-text-only resume yields an empty slice.
func Flatten(resume *types.StructuredResume) []types.ResumeBullet {
	bullets := []types.ResumeBullet{}
	for _, section := range resume.Sections() {
		for _, entry := range section.Entries {
			for _, text := range entry.Bullets {
				bullets = append(bullets, types.ResumeBullet{
					Section: section.Name,
					Context: entry.Context,
					Text:    text,
				})
			}
		}
	}
	return bullets
}

// Regroup rebuilds the section view from flattened bullets. Consecutive bullets
// sharing a section form one section; within it, consecutive bullets sharing a
// context form one entry. Regroup(Flatten(r)) equals r.Sections() whenever
// adjacent entries of a section have distinct contexts.
func Regroup(bullets []types.ResumeBullet) []types.Section {
	var sections []types.Section
	for _, b := range bullets {
		if n := len(sections); n == 0 || sections[n-1].Name != b.Section {
			sections = append(sections, types.Section{Name: b.Section})
		}
		section := &sections[len(sections)-1]
		if n := len(section.Entries); n == 0 || section.Entries[n-1].Context != b.Context {
			section.Entries = append(section.Entries, types.SectionEntry{Context: b.Context})
		}
		entry := &section.Entries[len(section.Entries)-1]
		entry.Bullets = append(entry.Bullets, b.Text)
	}
	return sections
}

// Texts returns the bullet texts in order.
func Texts(bullets []types.ResumeBullet) []string {
	texts := make([]string, len(bullets))
	for i, b := range bullets {
		texts[i] = b.Text
	}
	return texts
}
