package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-fit/internal/types"
)

// Strength thresholds on Phase 1 confidence.
const (
	StrongThreshold  = 0.7
	PartialThreshold = 0.4
	WeakThreshold    = 0.2
)

// Confidence weights: the best single bullet dominates, spread across the corpus helps.
const (
	bestBulletWeight = 0.6
	corpusWeight     = 0.4
)

// Relevance thresholds on a single bullet's keyword coverage.
const (
	directRelevance  = 0.7
	partialRelevance = 0.4
)

// maxEvidence bounds the bullets cited by a Phase 1 match.
const maxEvidence = 3

// Strength maps a confidence in [0,1] to a match strength.
func Strength(confidence float64) types.MatchStrength {
	switch {
	case confidence >= StrongThreshold:
		return types.StrengthStrong
	case confidence >= PartialThreshold:
		return types.StrengthPartial
	case confidence >= WeakThreshold:
		return types.StrengthWeak
	default:
		return types.StrengthNone
	}
}

func relevanceFor(coverage float64) types.Relevance {
	switch {
	case coverage >= directRelevance:
		return types.RelevanceDirect
	case coverage >= partialRelevance:
		return types.RelevancePartial
	default:
		return types.RelevanceTransferable
	}
}

// corpus is the precomputed keyword view of the bullets Phase 1 may consult.
type corpus struct {
	bullets []types.ResumeBullet
	sets    []keywordSet
	union   keywordSet
}

func newCorpus(bullets []types.ResumeBullet) *corpus {
	c := &corpus{
		bullets: bullets,
		sets:    make([]keywordSet, len(bullets)),
		union:   keywordSet{},
	}
	for i, b := range bullets {
		c.sets[i] = newKeywordSet(b.Text)
		for kw := range c.sets[i] {
			c.union[kw] = true
		}
	}
	return c
}

// assessment is the Phase 1 verdict for one requirement.
type assessment struct {
	match      types.RequirementMatch
	confidence float64
	// evidence holds corpus indices of cited bullets, best first.
	evidence []int
}

func (a assessment) resolved() bool {
	return a.confidence >= StrongThreshold
}

type scoredBullet struct {
	index    int
	coverage float64
}

// assess scores one requirement against the corpus. Confidence combines the
// best single-bullet keyword coverage with coverage across all bullets.
func (c *corpus) assess(req types.Requirement) assessment {
	want := Keywords(req.Text)

	var scored []scoredBullet
	best := 0.0
	for i, set := range c.sets {
		cov := set.coverage(want)
		if cov <= 0 {
			continue
		}
		scored = append(scored, scoredBullet{index: i, coverage: cov})
		if cov > best {
			best = cov
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].coverage > scored[j].coverage
	})
	if len(scored) > maxEvidence {
		scored = scored[:maxEvidence]
	}

	confidence := bestBulletWeight*best + corpusWeight*c.union.coverage(want)
	if confidence > 1 {
		confidence = 1
	}

	strength := Strength(confidence)
	match := types.RequirementMatch{
		Requirement:   req,
		IsMatched:     strength != types.StrengthNone,
		MatchStrength: strength,
		ResumeMatches: make([]types.EvidenceMatch, 0, len(scored)),
	}
	evidence := make([]int, 0, len(scored))
	for _, s := range scored {
		match.ResumeMatches = append(match.ResumeMatches, types.EvidenceMatch{
			Bullet:    c.bullets[s.index],
			Relevance: relevanceFor(s.coverage),
		})
		evidence = append(evidence, s.index)
	}

	found, missing := c.split(want)
	match.Explanation = keywordExplanation(found, missing, len(scored))
	if strength == types.StrengthNone || strength == types.StrengthWeak {
		match.SuggestionIfMissing = keywordSuggestion(req, missing)
	}
	match.Normalize()

	return assessment{match: match, confidence: confidence, evidence: evidence}
}

func (c *corpus) split(want []string) (found, missing []string) {
	for _, kw := range want {
		if c.union[kw] {
			found = append(found, kw)
		} else {
			missing = append(missing, kw)
		}
	}
	return found, missing
}

func keywordExplanation(found, missing []string, bullets int) string {
	switch {
	case len(found) == 0 && len(missing) == 0:
		return "Requirement has no comparable keywords."
	case len(found) == 0:
		return fmt.Sprintf("No resume evidence mentions %s.", strings.Join(missing, ", "))
	case len(missing) == 0:
		return fmt.Sprintf("Resume mentions %s in %d bullet(s).", strings.Join(found, ", "), bullets)
	default:
		return fmt.Sprintf("Resume mentions %s in %d bullet(s); missing %s.",
			strings.Join(found, ", "), bullets, strings.Join(missing, ", "))
	}
}

func keywordSuggestion(req types.Requirement, missing []string) string {
	if len(missing) == 0 {
		return fmt.Sprintf("Make your experience with %q more explicit if you have it.", req.Text)
	}
	return fmt.Sprintf("Add concrete evidence of %s if you have it.", strings.Join(missing, ", "))
}
