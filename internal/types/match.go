package types

// MatchStrength grades how well resume evidence satisfies a requirement.
type MatchStrength string

// Match strengths, strongest first.
const (
	StrengthStrong  MatchStrength = "strong"
	StrengthPartial MatchStrength = "partial"
	StrengthWeak    MatchStrength = "weak"
	StrengthNone    MatchStrength = "none"
)

// Valid reports whether s is a recognized strength.
func (s MatchStrength) Valid() bool {
	switch s {
	case StrengthStrong, StrengthPartial, StrengthWeak, StrengthNone:
		return true
	}
	return false
}

// Relevance describes how a bullet relates to a requirement.
type Relevance string

// Relevance values.
const (
	RelevanceDirect       Relevance = "direct"
	RelevancePartial      Relevance = "partial"
	RelevanceTransferable Relevance = "transferable"
)

// Valid reports whether r is a recognized relevance.
func (r Relevance) Valid() bool {
	switch r {
	case RelevanceDirect, RelevancePartial, RelevanceTransferable:
		return true
	}
	return false
}

// EvidenceMatch links a resume bullet to a requirement.
type EvidenceMatch struct {
	Bullet    ResumeBullet `json:"bullet"`
	Relevance Relevance    `json:"relevance"`
}

// RequirementMatch is the evaluated pairing of one requirement against resume evidence.
// A match with strength none is never matched.
type RequirementMatch struct {
	Requirement         Requirement     `json:"requirement"`
	IsMatched           bool            `json:"is_matched"`
	MatchStrength       MatchStrength   `json:"match_strength"`
	ResumeMatches       []EvidenceMatch `json:"resume_matches"`
	Explanation         string          `json:"explanation"`
	SuggestionIfMissing string          `json:"suggestion_if_missing,omitempty"`
}

// Normalize enforces the strength/matched invariant and non-nil evidence.
func (m *RequirementMatch) Normalize() {
	if !m.MatchStrength.Valid() {
		m.MatchStrength = StrengthNone
	}
	if m.MatchStrength == StrengthNone {
		m.IsMatched = false
	}
	if m.ResumeMatches == nil {
		m.ResumeMatches = []EvidenceMatch{}
	}
}
