package types

// EditType says how an edit changes the resume.
type EditType string

// Edit types.
const (
	EditModify      EditType = "modify"
	EditAdd         EditType = "add"
	EditAddKeywords EditType = "add_keywords"
)

// Valid reports whether t is a recognized edit type.
func (t EditType) Valid() bool {
	switch t {
	case EditModify, EditAdd, EditAddKeywords:
		return true
	}
	return false
}

// Priority ranks edits for the reader.
type Priority string

// Edit priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a recognized priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ResumeEdit is a concrete, bounded suggestion for changing the resume.
// Section and Subsection are empty for edits patched directly into raw text.
type ResumeEdit struct {
	ID                    string        `json:"id"`
	Section               string        `json:"section"`
	Subsection            string        `json:"subsection,omitempty"`
	EditType              EditType      `json:"edit_type"`
	Priority              Priority      `json:"priority"`
	CurrentContent        string        `json:"current_content,omitempty"`
	SuggestedContent      string        `json:"suggested_content"`
	Rationale             string        `json:"rationale"`
	RequirementsAddressed []Requirement `json:"requirements_addressed"`
	KeywordsAdded         []string      `json:"keywords_added"`
	Applied               bool          `json:"applied"`
}
