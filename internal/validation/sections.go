package validation

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-fit/internal/types"
)

// sectionIndicators are keyword patterns whose presence shows that the raw
// resume carries a section, whatever its formatting.
var sectionIndicators = map[string]*regexp.Regexp{
	types.SectionEducation: regexp.MustCompile(
		`(?i)\b(education|university|college|degree|bachelor'?s?|master'?s|ph\.?d|diploma|b\.?sc|m\.?sc|mba|academic)\b`),
	types.SectionExperience: regexp.MustCompile(
		`(?i)\b(experience|employment|work history|worked at|career history|role|position)\b`),
	types.SectionProjects: regexp.MustCompile(`(?i)\bprojects?\b`),
}

// detectedOrder fixes the order in which detected sections are reported.
var detectedOrder = []string{types.SectionExperience, types.SectionProjects, types.SectionEducation}

// sectionHeadings maps normalized heading lines to sections.
var sectionHeadings = map[string]string{
	"summary":                    types.SectionSummary,
	"professional summary":       types.SectionSummary,
	"profile":                    types.SectionSummary,
	"objective":                  types.SectionSummary,
	"experience":                 types.SectionExperience,
	"work experience":            types.SectionExperience,
	"professional experience":    types.SectionExperience,
	"employment":                 types.SectionExperience,
	"employment history":         types.SectionExperience,
	"work history":               types.SectionExperience,
	"career history":             types.SectionExperience,
	"relevant experience":        types.SectionExperience,
	"projects":                   types.SectionProjects,
	"personal projects":          types.SectionProjects,
	"selected projects":          types.SectionProjects,
	"education":                  types.SectionEducation,
	"education and training":     types.SectionEducation,
	"academic background":        types.SectionEducation,
	"education & certifications": types.SectionEducation,
	"skills":                     types.SectionSkills,
	"technical skills":           types.SectionSkills,
	"core competencies":          types.SectionSkills,
	"certifications":             types.SectionCertifications,
	"licenses & certifications":  types.SectionCertifications,
	"achievements":               types.SectionAchievements,
	"awards":                     types.SectionAchievements,
	"honors & awards":            types.SectionAchievements,
}

// DetectSections reports which of experience, projects and education the text
// evidently contains, judged by indicator keywords.
func DetectSections(text string) []string {
	var found []string
	for _, name := range detectedOrder {
		if sectionIndicators[name].MatchString(text) {
			found = append(found, name)
		}
	}
	return found
}

// HasSectionIndicator reports whether text contains indicator keywords for section.
func HasSectionIndicator(text, section string) bool {
	pattern, ok := sectionIndicators[section]
	return ok && pattern.MatchString(text)
}

// MissingSections lists sections detected in the raw text that the structured resume lacks.
func MissingSections(raw string, resume *types.StructuredResume) []string {
	var missing []string
	for _, name := range DetectSections(raw) {
		if !resume.HasSection(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// headingSection returns the section a line introduces, if it is a heading.
func headingSection(line string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(line))
	normalized = strings.Trim(normalized, "#*_=-: \t")
	if normalized == "" || len(normalized) > 40 {
		return "", false
	}
	section, ok := sectionHeadings[normalized]
	return section, ok
}

// SectionBlock returns the content lines under the first heading of section.
// ok is false when the text has no such heading.
func SectionBlock(text, section string) (content string, ok bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var block []string
	inside := false
	for _, line := range lines {
		if s, isHeading := headingSection(line); isHeading {
			if inside {
				break
			}
			if s == section {
				inside, ok = true, true
			}
			continue
		}
		if inside && strings.TrimSpace(line) != "" {
			block = append(block, strings.TrimSpace(line))
		}
	}
	return strings.Join(block, "\n"), ok
}
