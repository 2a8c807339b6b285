package engine

import (
	"math"
	"testing"

	"medadmit-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	p, err := Percentile(511, 511, 5)
	require.NoError(t, err)
	assert.InDelta(t, 50, p, 1e-9)

	p, err = Percentile(516, 511, 5)
	require.NoError(t, err)
	assert.InDelta(t, 84.13, p, 0.01)

	p, err = Percentile(3.55, 3.75, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 15.87, p, 0.01)
}

func TestPercentile_RangeAndMonotonic(t *testing.T) {
	prev := -1.0
	for v := 400.0; v <= 600; v += 0.5 {
		p, err := Percentile(v, 511, 5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestPercentile_Smooth(t *testing.T) {
	a, _ := Percentile(3.70, 3.75, 0.2)
	b, _ := Percentile(3.71, 3.75, 0.2)
	assert.Less(t, b-a, 2.5)
	assert.Greater(t, b, a)
}

func TestPercentile_DegenerateSpread(t *testing.T) {
	for _, spread := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		_, err := Percentile(3.5, 3.7, spread)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeReferenceDataInvalid))
	}
}
