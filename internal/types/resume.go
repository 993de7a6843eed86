package types

import "strings"

// Section names used for structured resumes, flattened bullets and edits.
const (
	SectionSummary        = "summary"
	SectionExperience     = "experience"
	SectionProjects       = "projects"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionCertifications = "certifications"
	SectionAchievements   = "achievements"
)

// SectionOrder is the parse order in which resume sections are walked.
var SectionOrder = []string{
	SectionSummary,
	SectionExperience,
	SectionProjects,
	SectionEducation,
	SectionSkills,
	SectionCertifications,
	SectionAchievements,
}

// StructuredResume is a parsed resume. RawText always holds the original input verbatim.
type StructuredResume struct {
	Summary        string            `json:"summary,omitempty"`
	Experience     []ExperienceEntry `json:"experience,omitempty"`
	Projects       []ProjectEntry    `json:"projects,omitempty"`
	Education      []EducationEntry  `json:"education,omitempty"`
	Skills         []string          `json:"skills,omitempty"`
	Certifications []string          `json:"certifications,omitempty"`
	Achievements   []string          `json:"achievements,omitempty"`
	RawText        string            `json:"raw_text"`
}

// ExperienceEntry is one role held by the candidate.
type ExperienceEntry struct {
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	Bullets   []string `json:"bullets,omitempty"`
}

// ProjectEntry is a personal or professional project.
type ProjectEntry struct {
	Name         string   `json:"name"`
	Technologies []string `json:"technologies,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
}

// EducationEntry is a degree or program.
type EducationEntry struct {
	Degree         string   `json:"degree"`
	Institution    string   `json:"institution"`
	Field          string   `json:"field,omitempty"`
	GraduationDate string   `json:"graduation_date,omitempty"`
	Details        []string `json:"details,omitempty"`
}

// Context returns the label attached to bullets of this role.
func (e ExperienceEntry) Context() string {
	return joinContext(e.Title, " @ ", e.Company)
}

// Context returns the label attached to bullets of this project.
func (p ProjectEntry) Context() string {
	return strings.TrimSpace(p.Name)
}

// Context returns the label attached to bullets of this degree.
func (e EducationEntry) Context() string {
	return joinContext(e.Degree, ", ", e.Institution)
}

func joinContext(a, sep, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + sep + b
	}
}

// SectionEntry is a generic view of one entry within a section.
type SectionEntry struct {
	Context string   `json:"context"`
	Bullets []string `json:"bullets"`
}

// Section is a generic, ordered view of a resume section.
type Section struct {
	Name    string         `json:"name"`
	Entries []SectionEntry `json:"entries"`
}

// Sections returns the populated sections of the resume in parse order.
// Entries without any bullet text are omitted. Education entries use their
// details as bullets, or the entry label itself when no details were parsed.
func (r *StructuredResume) Sections() []Section {
	if r == nil {
		return nil
	}
	var sections []Section
	add := func(name string, entries []SectionEntry) {
		kept := entries[:0]
		for _, e := range entries {
			if bullets := nonEmpty(e.Bullets); len(bullets) > 0 {
				kept = append(kept, SectionEntry{Context: e.Context, Bullets: bullets})
			}
		}
		if len(kept) > 0 {
			sections = append(sections, Section{Name: name, Entries: kept})
		}
	}

	for _, name := range SectionOrder {
		var entries []SectionEntry
		switch name {
		case SectionSummary:
			entries = []SectionEntry{{Bullets: []string{r.Summary}}}
		case SectionExperience:
			for _, e := range r.Experience {
				entries = append(entries, SectionEntry{Context: e.Context(), Bullets: e.Bullets})
			}
		case SectionProjects:
			for _, p := range r.Projects {
				entries = append(entries, SectionEntry{Context: p.Context(), Bullets: p.Bullets})
			}
		case SectionEducation:
			for _, e := range r.Education {
				bullets := e.Details
				if len(nonEmpty(bullets)) == 0 {
					bullets = []string{joinContext(e.Degree, " in ", e.Field)}
				}
				entries = append(entries, SectionEntry{Context: e.Context(), Bullets: bullets})
			}
		case SectionSkills:
			entries = []SectionEntry{{Bullets: r.Skills}}
		case SectionCertifications:
			entries = []SectionEntry{{Bullets: r.Certifications}}
		case SectionAchievements:
			entries = []SectionEntry{{Bullets: r.Achievements}}
		}
		add(name, entries)
	}
	return sections
}

// HasSection reports whether the named section carries any content.
func (r *StructuredResume) HasSection(name string) bool {
	for _, s := range r.Sections() {
		if s.Name == name {
			return true
		}
	}
	return false
}

// HasSubsection reports whether the named section has an entry with the given context.
// An empty context matches any populated section.
func (r *StructuredResume) HasSubsection(section, context string) bool {
	context = strings.TrimSpace(context)
	for _, s := range r.Sections() {
		if s.Name != section {
			continue
		}
		if context == "" {
			return true
		}
		for _, e := range s.Entries {
			if strings.EqualFold(e.Context, context) {
				return true
			}
		}
	}
	return false
}

// IsMinimal reports whether nothing beyond the raw text was parsed.
func (r *StructuredResume) IsMinimal() bool {
	return len(r.Sections()) == 0
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ResumeBullet is a single attributable evidence snippet flattened from a structured resume.
type ResumeBullet struct {
	Section string `json:"section"`
	Context string `json:"context"`
	Text    string `json:"text"`
}
