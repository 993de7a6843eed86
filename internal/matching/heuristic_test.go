package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-fit/internal/types"
)

func TestStrength(t *testing.T) {
	tests := []struct {
		confidence float64
		want       types.MatchStrength
	}{
		{1, types.StrengthStrong},
		{0.7, types.StrengthStrong},
		{0.69, types.StrengthPartial},
		{0.4, types.StrengthPartial},
		{0.39, types.StrengthWeak},
		{0.2, types.StrengthWeak},
		{0.19, types.StrengthNone},
		{0, types.StrengthNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Strength(tt.confidence), "confidence %v", tt.confidence)
	}
}

func bulletsOf(texts ...string) []types.ResumeBullet {
	bullets := make([]types.ResumeBullet, len(texts))
	for i, text := range texts {
		bullets[i] = types.ResumeBullet{Section: types.SectionExperience, Context: "Engineer @ Acme", Text: text}
	}
	return bullets
}

func requirement(text string) types.Requirement {
	return types.Requirement{
		Text:       text,
		Category:   types.CategoryRequired,
		Importance: types.ImportanceHigh,
		Type:       types.TypeTechnicalSkill,
	}
}

func TestAssess(t *testing.T) {
	tests := []struct {
		name       string
		req        string
		bullets    []string
		confidence float64
		strength   types.MatchStrength
		evidence   []int
	}{
		{
			name:       "spread across bullets",
			req:        "Go Kafka Redis",
			bullets:    []string{"Built Go services on Kafka", "Cached sessions in Redis", "Wrote documentation"},
			confidence: 0.8,
			strength:   types.StrengthStrong,
			evidence:   []int{0, 1},
		},
		{
			name:       "half covered",
			req:        "Go Kafka Redis Terraform",
			bullets:    []string{"Go and Kafka services"},
			confidence: 0.5,
			strength:   types.StrengthPartial,
			evidence:   []int{0},
		},
		{
			name:       "single keyword",
			req:        "Go Terraform Rust Haskell",
			bullets:    []string{"Go"},
			confidence: 0.25,
			strength:   types.StrengthWeak,
			evidence:   []int{0},
		},
		{
			name:       "nothing in common",
			req:        "Rust",
			bullets:    []string{"Built Go services"},
			confidence: 0,
			strength:   types.StrengthNone,
			evidence:   []int{},
		},
		{
			name:       "no comparable keywords",
			req:        "Experience with the team",
			bullets:    []string{"Built Go services"},
			confidence: 0,
			strength:   types.StrengthNone,
			evidence:   []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCorpus(bulletsOf(tt.bullets...))
			a := c.assess(requirement(tt.req))

			assert.InDelta(t, tt.confidence, a.confidence, 1e-9)
			assert.GreaterOrEqual(t, a.confidence, 0.0)
			assert.LessOrEqual(t, a.confidence, 1.0)
			assert.Equal(t, tt.strength, a.match.MatchStrength)
			assert.Equal(t, tt.strength != types.StrengthNone, a.match.IsMatched)
			assert.Equal(t, tt.evidence, a.evidence)
			assert.Len(t, a.match.ResumeMatches, len(tt.evidence))
			assert.NotEmpty(t, a.match.Explanation)
		})
	}
}

func TestAssess_EvidenceRelevanceAndSuggestion(t *testing.T) {
	c := newCorpus(bulletsOf("Built Go services on Kafka", "Cached sessions in Redis"))

	strong := c.assess(requirement("Go Kafka Redis"))
	require.Len(t, strong.match.ResumeMatches, 2)
	assert.Equal(t, types.RelevancePartial, strong.match.ResumeMatches[0].Relevance)
	assert.Equal(t, types.RelevanceTransferable, strong.match.ResumeMatches[1].Relevance)
	assert.Empty(t, strong.match.SuggestionIfMissing)
	assert.True(t, strong.resolved())

	direct := c.assess(requirement("Golang and Kafka"))
	require.NotEmpty(t, direct.match.ResumeMatches)
	assert.Equal(t, types.RelevanceDirect, direct.match.ResumeMatches[0].Relevance)

	gap := c.assess(requirement("Terraform"))
	assert.Contains(t, gap.match.SuggestionIfMissing, "terraform")
	assert.Contains(t, gap.match.Explanation, "terraform")
	assert.False(t, gap.resolved())
}

func TestAssess_EvidenceCapped(t *testing.T) {
	c := newCorpus(bulletsOf("Go one", "Go two", "Go three", "Go four", "Go five"))
	a := c.assess(requirement("Go"))
	assert.Equal(t, []int{0, 1, 2}, a.evidence)
}
