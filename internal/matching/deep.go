package matching

import (
	"strings"

	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/types"
)

// deepMatchSchema is the shape requested from the deep pass.
var deepMatchSchema = llm.SchemaHint{
	Name:    "requirement_matches",
	ListKey: "matches",
	Fields: []llm.SchemaField{
		{Name: "requirement_id", Type: "string", Description: "Requirement id as listed, e.g. r3", Required: true},
		{Name: "is_matched", Type: "boolean", Required: true},
		{Name: "match_strength", Type: `"strong" | "partial" | "weak" | "none"`, Required: true},
		{Name: "resume_matches", Type: `[{"bullet_id": string, "relevance": "direct" | "partial" | "transferable"}]`},
		{Name: "explanation", Type: "string", Required: true},
		{Name: "suggestion_if_missing", Type: "string"},
	},
}

type rawEvidence struct {
	BulletID  string `json:"bullet_id"`
	Relevance string `json:"relevance"`
}

// verdictFields mark a bare single verdict.
var verdictFields = []string{"requirement_id", "is_matched", "match_strength"}

type rawDeepMatch struct {
	RequirementID string        `json:"requirement_id"`
	IsMatched     *bool         `json:"is_matched"`
	MatchStrength string        `json:"match_strength"`
	ResumeMatches []rawEvidence `json:"resume_matches"`
	Explanation   string        `json:"explanation"`
	Suggestion    string        `json:"suggestion_if_missing"`
}

// toMatch converts a deep pass verdict, dropping citations of bullets that
// were not in the context and enforcing the strength invariant.
func (r rawDeepMatch) toMatch(req types.Requirement, bullets []types.ResumeBullet, allowed map[int]bool) types.RequirementMatch {
	strength := types.MatchStrength(strings.ToLower(strings.TrimSpace(r.MatchStrength)))
	match := types.RequirementMatch{
		Requirement:         req,
		MatchStrength:       strength,
		Explanation:         strings.TrimSpace(r.Explanation),
		SuggestionIfMissing: strings.TrimSpace(r.Suggestion),
	}
	if r.IsMatched != nil {
		match.IsMatched = *r.IsMatched
	} else {
		match.IsMatched = strength.Valid() && strength != types.StrengthNone
	}

	seen := make(map[int]bool)
	for _, ev := range r.ResumeMatches {
		idx, ok := parseID(ev.BulletID, "b")
		if !ok || !allowed[idx] || seen[idx] {
			continue
		}
		seen[idx] = true
		relevance := types.Relevance(strings.ToLower(strings.TrimSpace(ev.Relevance)))
		if !relevance.Valid() {
			relevance = types.RelevanceTransferable
		}
		match.ResumeMatches = append(match.ResumeMatches, types.EvidenceMatch{
			Bullet:    bullets[idx],
			Relevance: relevance,
		})
	}
	match.Normalize()
	return match
}
