package engine

import (
	"fmt"
	"math"

	"medadmit-workers/internal/common/errors"
)

// Percentile places value on a normal distribution centred on median with
// standard deviation spread and returns 100·Φ(z). The mapping is smooth and
// strictly increasing in value.
func Percentile(value, median, spread float64) (float64, error) {
	z, err := zScore(value, median, spread)
	if err != nil {
		return 0, err
	}
	return clamp(100*normalCDF(z), 0, 100), nil
}

func zScore(value, median, spread float64) (float64, error) {
	if !(spread > 0) || math.IsInf(spread, 0) {
		return 0, errors.NewReferenceDataInvalidError(fmt.Sprintf("distribution spread must be positive, got %v", spread))
	}
	z := (value - median) / spread
	if math.IsNaN(z) {
		return 0, errors.NewPredictionFailedError(fmt.Errorf("z-score undefined for value %v median %v", value, median))
	}
	return z, nil
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
