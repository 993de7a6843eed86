package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-fit/internal/matching"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
)

// Summary caps.
const (
	maxStrengths     = 8
	maxGaps          = 8
	maxTalkingPoints = 6
	maxKeywords      = 12
	pitchStrengths   = 3
)

// Summary is the reader-facing synthesis of a match.
type Summary struct {
	Strengths     []string
	Gaps          []string
	Pitch         string
	TalkingPoints []string
	KeywordsToUse []string
}

// ranked is a match with whether it went through matching.
type ranked struct {
	types.RequirementMatch
	evaluated bool
}

// Summarize derives strengths, gaps, a pitch, talking points and keywords
// from the matches. It is deterministic. Only the first evaluated matches went
// through matching; the rest are never reported as gaps.
func Summarize(matches []types.RequirementMatch, evaluated int, score *float64, level *types.MatchLevel, editKeywords []string, resumeText string, weights scoring.Weights) Summary {
	ordered := make([]ranked, len(matches))
	for i, m := range matches {
		ordered[i] = ranked{RequirementMatch: m, evaluated: i < evaluated}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return weights.Requirement(ordered[i].Requirement) > weights.Requirement(ordered[j].Requirement)
	})

	s := Summary{
		Strengths:     []string{},
		Gaps:          []string{},
		TalkingPoints: []string{},
	}
	strong, matched := 0, 0
	for _, m := range ordered {
		if m.IsMatched {
			matched++
		}
		switch {
		case m.MatchStrength == types.StrengthStrong:
			strong++
			if len(s.Strengths) < maxStrengths {
				s.Strengths = append(s.Strengths, m.Requirement.Text)
			}
		case m.gap():
			if len(s.Gaps) < maxGaps {
				s.Gaps = append(s.Gaps, m.Requirement.Text)
			}
		}
		if (m.MatchStrength == types.StrengthStrong || m.MatchStrength == types.StrengthPartial) &&
			len(m.ResumeMatches) > 0 && len(s.TalkingPoints) < maxTalkingPoints {
			s.TalkingPoints = append(s.TalkingPoints, talkingPoint(m.RequirementMatch))
		}
	}

	s.Pitch = pitch(len(matches), matched, strong, score, level, s.Strengths)
	s.KeywordsToUse = keywordsToUse(ordered, editKeywords, resumeText)
	return s
}

func (m ranked) gap() bool {
	return m.evaluated && !m.IsMatched
}

func talkingPoint(m types.RequirementMatch) string {
	best := m.ResumeMatches[0].Bullet
	point := fmt.Sprintf("%s: %s", m.Requirement.Text, best.Text)
	if best.Context != "" {
		point += fmt.Sprintf(" (%s)", best.Context)
	}
	return point
}

func pitch(total, matched, strong int, score *float64, level *types.MatchLevel, strengths []string) string {
	if score == nil || level == nil {
		return "No job requirements could be extracted, so the fit could not be scored."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s fit (%.1f/100): the resume meets %d of %d requirements, %d of them strongly.",
		capitalize(string(*level)), *score, matched, total, strong)
	if len(strengths) > 0 {
		top := strengths[:min(len(strengths), pitchStrengths)]
		fmt.Fprintf(&sb, " Lead with %s.", strings.Join(top, ", "))
	}
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// keywordsToUse lists edit keywords first, then keywords of gaps and partial
// matches that the resume text does not mention.
func keywordsToUse(ordered []ranked, editKeywords []string, resumeText string) []string {
	present := make(map[string]bool)
	for _, kw := range matching.Keywords(resumeText) {
		present[kw] = true
	}

	out := []string{}
	seen := make(map[string]bool)
	add := func(kw string) {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" || seen[key] || len(out) == maxKeywords {
			return
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(kw))
	}

	for _, kw := range editKeywords {
		add(kw)
	}
	for _, m := range ordered {
		if !m.gap() && m.MatchStrength != types.StrengthPartial {
			continue
		}
		for _, kw := range matching.Keywords(m.Requirement.Text) {
			if !present[kw] {
				add(kw)
			}
		}
	}
	return out
}
