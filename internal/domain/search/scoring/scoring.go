// Package scoring builds the ranking expression combining text relevance with package quality signals.
package scoring

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
)

// ExactMatchThreshold is added to the weighted signal sum of an exact name match.
// Organic scores are bounded by the text score, since the weighted sum never exceeds 1.
const ExactMatchThreshold = 100000

// Kind tags the expression variant.
type Kind int

const (
	// KindWeightedPower scores textScore * (Σ w·s)^effect.
	KindWeightedPower Kind = iota
	// KindExactMatchOverride scores an exact name match as threshold + Σ w·s
	// and falls back to the weighted power formula otherwise.
	KindExactMatchOverride
)

func (k Kind) String() string {
	if k == KindExactMatchOverride {
		return "exact_match_override"
	}
	return "weighted_power"
}

// Expression is a declarative scoring formula. Backends either translate it
// into their scripting language or rank candidates with Evaluate.
type Expression struct {
	kind      Kind
	weights   params.Normalized
	effect    float64
	exactText string
	threshold float64
}

// Build derives the scoring expression for p.
func Build(p params.Params) Expression {
	e := Expression{
		kind:    KindWeightedPower,
		weights: p.Weights().Normalize(),
		effect:  p.ScoreEffect(),
	}
	if p.BoostExact() && p.Text() != "" {
		e.kind = KindExactMatchOverride
		e.exactText = p.Text()
		e.threshold = ExactMatchThreshold
	}
	return e
}

// Kind returns the expression variant.
func (e Expression) Kind() Kind { return e.kind }

// Weights returns the normalized signal weights.
func (e Expression) Weights() params.Normalized { return e.weights }

// Effect returns the exponent on the weighted sum.
func (e Expression) Effect() float64 { return e.effect }

// ExactText returns the text an exact name match is tested against.
func (e Expression) ExactText() string { return e.exactText }

// Threshold returns the exact match boost, zero for weighted power.
func (e Expression) Threshold() float64 { return e.threshold }

// Signals are the precomputed per-package quality signals, each in [0,1].
type Signals struct {
	Quality     float64 `json:"quality"`
	Popularity  float64 `json:"popularity"`
	Maintenance float64 `json:"maintenance"`
}

// Candidate is one index hit before final ranking.
type Candidate struct {
	RawName   string
	Signals   Signals
	TextScore float64
}

// Evaluate computes the final score of c.
func (e Expression) Evaluate(c Candidate) float64 {
	weighted := e.weights.Combine(c.Signals.Quality, c.Signals.Popularity, c.Signals.Maintenance)
	if e.kind == KindExactMatchOverride && c.RawName == e.exactText {
		return e.threshold + weighted
	}
	return c.TextScore * math.Pow(weighted, e.effect)
}

// Bindings returns the named parameters the formula refers to.
func (e Expression) Bindings() map[string]float64 {
	b := map[string]float64{
		"qualityWeight":     e.weights.Quality(),
		"popularityWeight":  e.weights.Popularity(),
		"maintenanceWeight": e.weights.Maintenance(),
		"scoreEffect":       e.effect,
	}
	if e.kind == KindExactMatchOverride {
		b["exactThreshold"] = e.threshold
	}
	return b
}

// String renders the formula.
func (e Expression) String() string {
	weighted := "(quality * qualityWeight + popularity * popularityWeight + maintenance * maintenanceWeight)"
	organic := fmt.Sprintf("_score * pow(%s, scoreEffect)", weighted)
	if e.kind != KindExactMatchOverride {
		return organic
	}
	return fmt.Sprintf("name.raw == %q ? exactThreshold + %s : %s", e.exactText, weighted, organic)
}
