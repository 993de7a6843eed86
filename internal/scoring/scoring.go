// Package scoring aggregates requirement matches into a 0-100 fit score.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/jonathan/resume-fit/internal/types"
)

// Level bucket lower bounds.
const (
	ExcellentThreshold = 80.0
	GoodThreshold      = 65.0
	ModerateThreshold  = 50.0
)

// strengthValues are the credit each match strength earns.
var strengthValues = map[types.MatchStrength]float64{
	types.StrengthStrong:  1.0,
	types.StrengthPartial: 0.5,
	types.StrengthWeak:    0.25,
	types.StrengthNone:    0.0,
}

// StrengthValue returns the credit earned by a match strength.
func StrengthValue(s types.MatchStrength) float64 {
	return strengthValues[s]
}

// Weights are the configurable multipliers applied per requirement.
type Weights struct {
	Required   float64 `mapstructure:"required" json:"required"`
	Preferred  float64 `mapstructure:"preferred" json:"preferred"`
	NiceToHave float64 `mapstructure:"nice_to_have" json:"nice_to_have"`

	Critical float64 `mapstructure:"critical" json:"critical"`
	High     float64 `mapstructure:"high" json:"high"`
	Medium   float64 `mapstructure:"medium" json:"medium"`
	Low      float64 `mapstructure:"low" json:"low"`
}

// DefaultWeights returns the standard category and importance weights.
func DefaultWeights() Weights {
	return Weights{
		Required:   1.0,
		Preferred:  0.6,
		NiceToHave: 0.3,
		Critical:   1.0,
		High:       0.8,
		Medium:     0.5,
		Low:        0.3,
	}
}

// Validate checks that every weight is in (0,1] and that stronger
// categories and importances never weigh less than weaker ones. A zero
// weight would let a posting with requirements score null.
func (w Weights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"required", w.Required}, {"preferred", w.Preferred}, {"nice_to_have", w.NiceToHave},
		{"critical", w.Critical}, {"high", w.High}, {"medium", w.Medium}, {"low", w.Low},
	}
	for _, n := range named {
		if !(n.value > 0 && n.value <= 1) {
			return fmt.Errorf("weight %s must be within (0,1], got %v", n.name, n.value)
		}
	}
	if !(w.Required >= w.Preferred && w.Preferred >= w.NiceToHave) {
		return errors.New("category weights must satisfy required >= preferred >= nice_to_have")
	}
	if !(w.Critical >= w.High && w.High >= w.Medium && w.Medium >= w.Low) {
		return errors.New("importance weights must satisfy critical >= high >= medium >= low")
	}
	return nil
}

// Category returns the weight of a requirement category; unknown categories weigh 0.
func (w Weights) Category(c types.Category) float64 {
	switch c {
	case types.CategoryRequired:
		return w.Required
	case types.CategoryPreferred:
		return w.Preferred
	case types.CategoryNiceToHave:
		return w.NiceToHave
	}
	return 0
}

// Importance returns the weight of an importance level; unknown levels weigh 0.
func (w Weights) Importance(i types.Importance) float64 {
	switch i {
	case types.ImportanceCritical:
		return w.Critical
	case types.ImportanceHigh:
		return w.High
	case types.ImportanceMedium:
		return w.Medium
	case types.ImportanceLow:
		return w.Low
	}
	return 0
}

// Requirement returns the combined weight of a requirement.
func (w Weights) Requirement(r types.Requirement) float64 {
	return w.Category(r.Category) * w.Importance(r.Importance)
}

// Aggregator turns matches into a score and level.
type Aggregator struct {
	weights Weights
}

// NewAggregator validates weights and returns an aggregator.
func NewAggregator(w Weights) (*Aggregator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{weights: w}, nil
}

// Weights returns the aggregator's weights.
func (a *Aggregator) Weights() Weights {
	return a.weights
}

// Score returns the weighted fit score rounded to one decimal, and its level.
// Both are nil when the total weight is zero, including when there are no matches.
func (a *Aggregator) Score(matches []types.RequirementMatch) (*float64, *types.MatchLevel) {
	var earned, possible float64
	for _, m := range matches {
		weight := a.weights.Requirement(m.Requirement)
		possible += weight
		earned += weight * StrengthValue(m.MatchStrength)
	}
	if possible == 0 {
		return nil, nil
	}

	score := math.Round(1000*earned/possible) / 10
	score = math.Max(0, math.Min(100, score))
	level := Level(score)
	return &score, &level
}

// Level buckets a score.
func Level(score float64) types.MatchLevel {
	switch {
	case score >= ExcellentThreshold:
		return types.LevelExcellent
	case score >= GoodThreshold:
		return types.LevelGood
	case score >= ModerateThreshold:
		return types.LevelModerate
	default:
		return types.LevelPoor
	}
}
