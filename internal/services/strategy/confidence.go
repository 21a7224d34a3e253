package strategy

import (
	"math"

	"OptionStrat/internal/domain/models"
)

// Confidence bounds applied after the risk adjustment.
const (
	MinConfidence = 25.0
	MaxConfidence = 95.0
)

// OtherProfile labels unrecognized risk profiles in metrics.
const OtherProfile = "other"

// confidenceSteps is the number of base draws per confidence point.
const confidenceSteps = 100

// Recognized risk profiles.
const (
	Conservative       = "conservative"
	Moderate           = "moderate"
	ModerateAggressive = "moderate_aggressive"
	Aggressive         = "aggressive"
)

var riskMultipliers = map[string]float64{
	Conservative:       0.85,
	Moderate:           0.95,
	ModerateAggressive: 1.0,
	Aggressive:         1.1,
}

// RiskMultiplier returns the multiplier for a profile; unknown profiles get 1.0.
func RiskMultiplier(profile string) float64 {
	if m, ok := riskMultipliers[profile]; ok {
		return m
	}
	return 1.0
}

// ProfileLabel returns profile when it is recognized and OtherProfile
// otherwise, keeping metric label values to a fixed set.
func ProfileLabel(profile string) string {
	if _, ok := riskMultipliers[profile]; ok {
		return profile
	}
	return OtherProfile
}

// ClampConfidence limits v to [MinConfidence, MaxConfidence].
func ClampConfidence(v float64) float64 {
	if v < MinConfidence {
		return MinConfidence
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}

// Scorer produces risk-adjusted confidence scores.
//
// The base value is a uniform draw from the template's closed range on a
// 0.01 grid, so both ends can come out. It does not look at the quote; it
// stands in for market-condition variability.
type Scorer struct {
	rnd RandomSource
}

func NewScorer(rnd RandomSource) *Scorer {
	if rnd == nil {
		rnd = DefaultSource()
	}
	return &Scorer{rnd: rnd}
}

// Base draws the unadjusted confidence from the template range.
func (s *Scorer) Base(t models.StrategyTemplate) float64 {
	lo, hi := t.Confidence.Min, t.Confidence.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	steps := int(math.Round((hi - lo) * confidenceSteps))
	k := int(s.rnd.Float64() * float64(steps+1))
	if k > steps {
		k = steps
	}
	return math.Min(lo+float64(k)/confidenceSteps, hi)
}

// Score returns the clamped, risk-adjusted confidence in [25, 95].
func (s *Scorer) Score(t models.StrategyTemplate, profile string) float64 {
	return ClampConfidence(s.Base(t) * RiskMultiplier(profile))
}
