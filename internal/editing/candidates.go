package editing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
)

// Candidate kinds.
const (
	KindGap     = "gap"
	KindPartial = "partial"
)

// Candidate is a requirement the edits should address.
type Candidate struct {
	ID     string
	Kind   string
	Match  types.RequirementMatch
	Weight float64
}

// SelectCandidates picks unmatched requirements (gaps) and partial matches,
// each ordered by requirement weight and capped independently. Gaps come first.
func SelectCandidates(matches []types.RequirementMatch, weights scoring.Weights, maxGaps, maxPartials int) []Candidate {
	var gaps, partials []Candidate
	for _, m := range matches {
		c := Candidate{Match: m, Weight: weights.Requirement(m.Requirement)}
		switch {
		case !m.IsMatched:
			c.Kind = KindGap
			gaps = append(gaps, c)
		case m.MatchStrength == types.StrengthPartial:
			c.Kind = KindPartial
			partials = append(partials, c)
		}
	}

	byWeight := func(list []Candidate) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Weight > list[j].Weight })
	}
	byWeight(gaps)
	byWeight(partials)
	if len(gaps) > maxGaps {
		gaps = gaps[:maxGaps]
	}
	if len(partials) > maxPartials {
		partials = partials[:maxPartials]
	}

	selected := append(gaps, partials...)
	for i := range selected {
		selected[i].ID = "c" + strconv.Itoa(i)
	}
	return selected
}

// candidateLines renders candidates for a prompt, one per line.
func candidateLines(candidates []Candidate) string {
	var sb strings.Builder
	for _, c := range candidates {
		r := c.Match.Requirement
		fmt.Fprintf(&sb, "%s: %s | (%s, %s) %s\n", c.ID, c.Kind, r.Category, r.Importance, r.Text)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// resolveRequirements maps candidate ids to requirements, ignoring unknown ids.
func resolveRequirements(ids []string, candidates []Candidate) []types.Requirement {
	byID := make(map[string]types.Requirement, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c.Match.Requirement
	}
	out := []types.Requirement{}
	seen := make(map[string]bool)
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if !strings.HasPrefix(id, "c") {
			id = "c" + id
		}
		req, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, req)
	}
	return out
}

// priorityFor derives a priority from the heaviest requirement an edit addresses.
func priorityFor(reqs []types.Requirement, weights scoring.Weights) types.Priority {
	heaviest := 0.0
	for _, r := range reqs {
		if w := weights.Requirement(r); w > heaviest {
			heaviest = w
		}
	}
	switch {
	case heaviest >= 0.8:
		return types.PriorityHigh
	case heaviest >= 0.4:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}
