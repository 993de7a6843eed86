package editing

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jonathan/resume-fit/internal/llm"
)

// structuralSchema is the shape requested from the structural edit call.
var structuralSchema = llm.SchemaHint{
	Name:    "resume_edits",
	ListKey: "edits",
	Fields: []llm.SchemaField{
		{Name: "section", Type: "string", Description: "Section name exactly as listed", Required: true},
		{Name: "subsection", Type: "string", Description: "Subsection exactly as listed, or empty"},
		{Name: "edit_type", Type: `"modify" | "add" | "add_keywords"`, Required: true},
		{Name: "priority", Type: `"high" | "medium" | "low"`, Required: true},
		{Name: "current_content", Type: "string", Description: "Verbatim existing text, required for modify"},
		{Name: "suggested_content", Type: "string", Required: true},
		{Name: "rationale", Type: "string", Required: true},
		{Name: "requirement_ids", Type: "[string]", Required: true},
		{Name: "keywords_added", Type: "[string]"},
	},
}

// patchSchema is the shape requested from the raw-text patch call.
var patchSchema = llm.SchemaHint{
	Name:    "raw_patches",
	ListKey: "patches",
	Fields: []llm.SchemaField{
		{Name: "find", Type: "string", Description: "Exact unique substring of the resume", Required: true},
		{Name: "replace", Type: "string", Required: true},
		{Name: "rationale", Type: "string", Required: true},
		{Name: "requirement_ids", Type: "[string]", Required: true},
		{Name: "keywords_added", Type: "[string]"},
	},
}

// idList accepts ids written as strings or bare numbers.
type idList []string

func (l *idList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = idList{single}
		return nil
	}
	ids := make(idList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			ids = append(ids, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err == nil {
			if i, err := n.Int64(); err == nil {
				ids = append(ids, strconv.FormatInt(i, 10))
			}
		}
	}
	*l = ids
	return nil
}

// Fields that mark a bare single edit or patch.
var (
	editFields  = []string{"edit_type", "suggested_content", "current_content"}
	patchFields = []string{"find", "replace"}
)

type rawEdit struct {
	Section          string   `json:"section"`
	Subsection       string   `json:"subsection"`
	EditType         string   `json:"edit_type"`
	Type             string   `json:"type"`
	Priority         string   `json:"priority"`
	CurrentContent   string   `json:"current_content"`
	SuggestedContent string   `json:"suggested_content"`
	Rationale        string   `json:"rationale"`
	RequirementIDs   idList   `json:"requirement_ids"`
	KeywordsAdded    []string `json:"keywords_added"`
}

func (r rawEdit) editType() string {
	if r.EditType != "" {
		return r.EditType
	}
	return r.Type
}

type rawPatch struct {
	Find           string   `json:"find"`
	Replace        string   `json:"replace"`
	Rationale      string   `json:"rationale"`
	RequirementIDs idList   `json:"requirement_ids"`
	KeywordsAdded  []string `json:"keywords_added"`
}

// cleanKeywords trims and de-duplicates keywords case-insensitively. It never returns nil.
func cleanKeywords(keywords []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// enumValue lowercases and joins words with underscores: "Add Keywords" -> "add_keywords".
func enumValue(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' || r == '_' }), "_")
}
