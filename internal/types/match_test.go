package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementMatch_Normalize(t *testing.T) {
	tests := []struct {
		name         string
		in           RequirementMatch
		wantStrength MatchStrength
		wantMatched  bool
	}{
		{"none forces unmatched", RequirementMatch{MatchStrength: StrengthNone, IsMatched: true}, StrengthNone, false},
		{"unknown strength becomes none", RequirementMatch{MatchStrength: "excellent", IsMatched: true}, StrengthNone, false},
		{"strong kept", RequirementMatch{MatchStrength: StrengthStrong, IsMatched: true}, StrengthStrong, true},
		{"weak unmatched kept", RequirementMatch{MatchStrength: StrengthWeak}, StrengthWeak, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.in
			m.Normalize()
			assert.Equal(t, tt.wantStrength, m.MatchStrength)
			assert.Equal(t, tt.wantMatched, m.IsMatched)
			assert.NotNil(t, m.ResumeMatches)
		})
	}
}

func TestFitAnalysis_NullScoreSerializesAsNull(t *testing.T) {
	analysis := FitAnalysis{Flags: Flags{NoRequirements: true}}

	data, err := json.Marshal(analysis)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"score":null`)
	assert.Contains(t, string(data), `"match_level":null`)
	assert.Contains(t, string(data), `"no_requirements":true`)
}

func TestFlags_Degraded(t *testing.T) {
	assert.False(t, Flags{ParseIncomplete: true, NoRequirements: true}.Degraded())
	assert.True(t, Flags{DegradedMatching: true}.Degraded())
	assert.True(t, Flags{ExtractionFailed: true}.Degraded())
	assert.True(t, Flags{StructuringFailed: true}.Degraded())
}
