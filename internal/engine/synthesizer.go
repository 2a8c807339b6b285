package engine

import (
	"fmt"
	"math"

	"medadmit-workers/internal/common/errors"
	"medadmit-workers/internal/models"
)

// logOdds is the school's base rate lifted to the median admit, plus every
// factor.
func (e *Engine) logOdds(s models.SchoolRecord, f models.FactorBreakdown) (float64, error) {
	p := e.policy
	base := logit(clamp(s.AcceptanceRate, p.AcceptanceFloor, p.AcceptanceCeiling))
	lo := base + p.MedianLift + f.Total()
	if math.IsNaN(lo) || math.IsInf(lo, 0) {
		return 0, errors.NewPredictionFailedError(fmt.Errorf("log-odds undefined for school %s", s.ID))
	}
	return lo, nil
}

// bounds squashes the point estimate and the margin-shifted bounds. The
// sigmoid is monotonic so lower <= point <= upper holds even when the
// values saturate at 0 or 1.
func (e *Engine) bounds(lo float64) (lower, point, upper float64) {
	m := e.policy.UncertaintyMargin
	lower = clamp(sigmoid(lo-m), 0, 1)
	point = clamp(sigmoid(lo), 0, 1)
	upper = clamp(sigmoid(lo+m), 0, 1)
	if lower > point {
		lower = point
	}
	if upper < point {
		upper = point
	}
	return lower, point, upper
}

// Classify maps a probability to reach/target/safety using the policy
// thresholds.
func (p Policy) Classify(probability float64) models.Category {
	switch {
	case probability < p.ReachBelow:
		return models.CategoryReach
	case probability <= p.TargetUpTo:
		return models.CategoryTarget
	default:
		return models.CategorySafety
	}
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	ex := math.Exp(x)
	return ex / (1 + ex)
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
