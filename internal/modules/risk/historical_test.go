package risk

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioRolling() RollingReturnSeries {
	return RollingReturnSeries{
		Window: 2,
		Dates:  days(len(scenarioRolling2)),
		Values: append([]float64(nil), scenarioRolling2...),
	}
}

func TestEstimateHistorical_Scenario(t *testing.T) {
	testCases := []struct {
		confidence float64
		expected   float64
	}{
		{0.90, 4.108382613841593},
		{0.95, 7.079359233671518},
		{0.99, 9.456140529535464},
	}

	for _, tc := range testCases {
		est, err := EstimateHistorical(scenarioRolling(), tc.confidence, 1000)
		require.NoError(t, err)
		assert.InDelta(t, tc.expected, est.Value, 1e-9, "confidence %v", tc.confidence)
		assert.Equal(t, MethodHistorical, est.Method)
		assert.Equal(t, tc.confidence, est.ConfidenceLevel)
		assert.Equal(t, 2, est.HorizonDays)
	}
}

func TestEstimateHistorical_MonotonicInConfidence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 250)
	for i := range values {
		values[i] = rng.NormFloat64() * 0.02
	}
	series := RollingReturnSeries{Window: 1, Values: values}

	previous := -1e18
	for _, c := range []float64{0.90, 0.925, 0.95, 0.975, 0.99} {
		est, err := EstimateHistorical(series, c, 100000)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, est.Value, previous, "confidence %v", c)
		previous = est.Value
	}
}

func TestEstimateHistorical_OrderInvariant(t *testing.T) {
	base, err := EstimateHistorical(scenarioRolling(), 0.95, 1000)
	require.NoError(t, err)

	shuffled := scenarioRolling()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled.Values), func(a, b int) {
			shuffled.Values[a], shuffled.Values[b] = shuffled.Values[b], shuffled.Values[a]
		})
		est, err := EstimateHistorical(shuffled, 0.95, 1000)
		require.NoError(t, err)
		assert.Equal(t, base.Value, est.Value)
	}
}

func TestEstimateHistorical_LinearInPortfolioValue(t *testing.T) {
	one, err := EstimateHistorical(scenarioRolling(), 0.95, 1000)
	require.NoError(t, err)
	two, err := EstimateHistorical(scenarioRolling(), 0.95, 2000)
	require.NoError(t, err)

	assert.InDelta(t, 2*one.Value, two.Value, 1e-9)
}

func TestEstimateHistorical_ConstantSeriesIsZero(t *testing.T) {
	series := RollingReturnSeries{Window: 5, Values: constant(0, 20)}
	est, err := EstimateHistorical(series, 0.99, 1e6)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, est.Value, 1e-12)
}

func TestEstimateHistorical_NegativeWhenTailIsAGain(t *testing.T) {
	series := RollingReturnSeries{Window: 1, Values: []float64{0.01, 0.02, 0.03, 0.04}}
	est, err := EstimateHistorical(series, 0.95, 1000)
	require.NoError(t, err)

	// Not clamped: the 5th percentile is a gain of 1.15%.
	assert.InDelta(t, -11.5, est.Value, 1e-9)
}

func TestEstimateHistorical_Errors(t *testing.T) {
	_, err := EstimateHistorical(RollingReturnSeries{Window: 1, Values: []float64{0.01}}, 0.95, 1000)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = EstimateHistorical(RollingReturnSeries{}, 0.95, 1000)
	assert.ErrorIs(t, err, ErrInsufficientData)

	for _, c := range []float64{0, 1, -0.5, 1.5} {
		_, err = EstimateHistorical(scenarioRolling(), c, 1000)
		assert.ErrorIs(t, err, ErrInvalidInput, "confidence %v", c)
	}

	for _, pv := range []float64{0, -1} {
		_, err = EstimateHistorical(scenarioRolling(), 0.95, pv)
		assert.ErrorIs(t, err, ErrInvalidInput, "portfolio value %v", pv)
	}
}
