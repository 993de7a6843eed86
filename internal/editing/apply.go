package editing

import (
	"strconv"
	"strings"

	"github.com/jonathan/resume-fit/internal/types"
)

// bulletMarkers are the list markers recognized at the start of a resume line.
var bulletMarkers = []string{"- ", "* ", "• ", "– ", "· "}

// applier anchors structural edits in the raw resume text. Edits apply in
// order against the evolving text.
type applier struct {
	text   string
	resume *types.StructuredResume
}

func (a *applier) apply(edit *types.ResumeEdit) error {
	switch edit.EditType {
	case types.EditModify:
		return a.modify(edit)
	case types.EditAdd:
		return a.add(edit)
	case types.EditAddKeywords:
		return a.addKeywords(edit)
	default:
		return &ApplyError{EditID: edit.ID, Message: "unknown edit type " + string(edit.EditType)}
	}
}

// modify replaces the current content, which must occur exactly once.
func (a *applier) modify(edit *types.ResumeEdit) error {
	current := strings.TrimSpace(edit.CurrentContent)
	if current == "" {
		return &ApplyError{EditID: edit.ID, Message: "current content not found verbatim"}
	}
	switch n := strings.Count(a.text, current); n {
	case 1:
		a.text = strings.Replace(a.text, current, edit.SuggestedContent, 1)
		return nil
	case 0:
		return &ApplyError{EditID: edit.ID, Message: "current content not found verbatim"}
	default:
		return &ApplyError{EditID: edit.ID, Message: "current content is ambiguous: " + strconv.Itoa(n) + " occurrences"}
	}
}

// add inserts a new bullet line after the line holding the subsection's last bullet.
func (a *applier) add(edit *types.ResumeEdit) error {
	anchor := lastBullet(a.resume, edit.Section, edit.Subsection)
	if anchor == "" {
		return &ApplyError{EditID: edit.ID, Message: "no bullet to anchor the addition"}
	}
	anchor = strings.SplitN(anchor, "\n", 2)[0]

	lines := strings.Split(a.text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, anchor) {
			continue
		}
		marker := markerOf(line)
		added := marker + stripMarker(edit.SuggestedContent)
		lines = append(lines[:i+1], append([]string{added}, lines[i+1:]...)...)
		a.text = strings.Join(lines, "\n")
		return nil
	}
	return &ApplyError{EditID: edit.ID, Message: "anchor bullet not found in resume text"}
}

// addKeywords appends missing keywords to the line listing the resume's skills.
func (a *applier) addKeywords(edit *types.ResumeEdit) error {
	keywords := edit.KeywordsAdded
	if len(keywords) == 0 {
		keywords = cleanKeywords(strings.Split(edit.SuggestedContent, ","))
	}
	if len(keywords) == 0 || a.resume == nil {
		return &ApplyError{EditID: edit.ID, Message: "no keywords to add"}
	}

	lines := strings.Split(a.text, "\n")
	idx := -1
	for s := len(a.resume.Skills) - 1; s >= 0 && idx < 0; s-- {
		skill := strings.TrimSpace(a.resume.Skills[s])
		if skill == "" {
			continue
		}
		for i, line := range lines {
			if strings.Contains(line, skill) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return &ApplyError{EditID: edit.ID, Message: "skills line not found in resume text"}
	}

	line := lines[idx]
	lower := strings.ToLower(line)
	var missing []string
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			missing = append(missing, kw)
		}
	}
	if len(missing) > 0 {
		lines[idx] = strings.TrimRight(line, " ,;") + ", " + strings.Join(missing, ", ")
		a.text = strings.Join(lines, "\n")
	}
	return nil
}

// lastBullet returns the final bullet of the named subsection, or of the
// section's last entry when subsection is empty.
func lastBullet(resume *types.StructuredResume, section, subsection string) string {
	for _, s := range resume.Sections() {
		if s.Name != section {
			continue
		}
		var entry *types.SectionEntry
		for i := range s.Entries {
			if subsection == "" || strings.EqualFold(s.Entries[i].Context, subsection) {
				entry = &s.Entries[i]
			}
		}
		if entry == nil || len(entry.Bullets) == 0 {
			return ""
		}
		return entry.Bullets[len(entry.Bullets)-1]
	}
	return ""
}

// markerOf returns the indentation and list marker that open line, or "- ".
func markerOf(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]
	for _, m := range bulletMarkers {
		if strings.HasPrefix(trimmed, m) {
			return indent + m
		}
	}
	return indent + "- "
}

func stripMarker(text string) string {
	text = strings.TrimSpace(text)
	for _, m := range bulletMarkers {
		if strings.HasPrefix(text, m) {
			return strings.TrimSpace(text[len(m):])
		}
	}
	return text
}
