package risk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func scenarioReturnMatrix(t *testing.T) *LogReturnMatrix {
	returns, _, err := Transform(scenarioTable(t))
	require.NoError(t, err)
	return returns
}

func randomWalk(rng *rand.Rand, n int, start, vol float64) []float64 {
	prices := make([]float64, n)
	prices[0] = start
	for i := 1; i < n; i++ {
		prices[i] = prices[i-1] * math.Exp(rng.NormFloat64()*vol)
	}
	return prices
}

func TestAnnualizedCovariance_SingleInstrument(t *testing.T) {
	cov := AnnualizedCovariance(scenarioReturnMatrix(t))

	r, c := cov.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 1, c)
	assert.InDelta(t, scenarioAnnualSigma*scenarioAnnualSigma, cov.At(0, 0), 1e-12)
}

func TestAnnualizedCovariance_MatchesPairwiseSampleCovariance(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	table := newTable(t, []string{"A", "B", "C"},
		randomWalk(rng, 60, 100, 0.01),
		randomWalk(rng, 60, 50, 0.02),
		randomWalk(rng, 60, 20, 0.015),
	)
	returns, _, err := Transform(table)
	require.NoError(t, err)

	cols := make([][]float64, returns.Width())
	for j := range cols {
		cols[j] = make([]float64, returns.Len())
		for i := 0; i < returns.Len(); i++ {
			cols[j][i] = returns.At(i, j)
		}
	}

	cov := AnnualizedCovariance(returns)
	for i := range cols {
		for j := range cols {
			expected := stat.Covariance(cols[i], cols[j], nil) * 252
			assert.InDelta(t, expected, cov.At(i, j), 1e-12)
		}
	}
}

func TestEstimateParametric_Scenario(t *testing.T) {
	returns := scenarioReturnMatrix(t)

	testCases := []struct {
		confidence float64
		expected   float64
	}{
		{0.90, 37.33090087847813},
		{0.95, 47.91369255690994},
		{0.99, 67.76524974067036},
	}

	for _, tc := range testCases {
		est, err := EstimateParametric(returns, []float64{1}, tc.confidence, 2, 1000)
		require.NoError(t, err)
		assert.InDelta(t, tc.expected, est.Value, 1e-6, "confidence %v", tc.confidence)
		assert.Equal(t, MethodParametric, est.Method)
		assert.Equal(t, 2, est.HorizonDays)
	}
}

func TestEstimateParametric_MedianConfidenceIsZero(t *testing.T) {
	est, err := EstimateParametric(scenarioReturnMatrix(t), []float64{1}, 0.5, 2, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, est.Value, 1e-9)
}

func TestEstimateParametric_ConstantPricesIsZero(t *testing.T) {
	table := newTable(t, []string{"A", "B"}, constant(100, 10), constant(42, 10))
	returns, _, err := Transform(table)
	require.NoError(t, err)

	est, err := EstimateParametric(returns, EqualWeights(2), 0.99, 20, 100000)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, est.Value, 1e-12)
}

func TestEstimateParametric_StrictlyIncreasingInConfidence(t *testing.T) {
	returns := scenarioReturnMatrix(t)

	previous := 0.0
	for _, c := range []float64{0.90, 0.925, 0.95, 0.975, 0.99} {
		est, err := EstimateParametric(returns, []float64{1}, c, 2, 1000)
		require.NoError(t, err)
		assert.Greater(t, est.Value, previous, "confidence %v", c)
		previous = est.Value
	}
}

func TestEstimateParametric_LinearInPortfolioValue(t *testing.T) {
	returns := scenarioReturnMatrix(t)
	one, err := EstimateParametric(returns, []float64{1}, 0.95, 2, 1000)
	require.NoError(t, err)
	three, err := EstimateParametric(returns, []float64{1}, 0.95, 2, 3000)
	require.NoError(t, err)

	assert.InDelta(t, 3*one.Value, three.Value, 1e-9)
}

func TestEstimateParametric_SquareRootOfTime(t *testing.T) {
	returns := scenarioReturnMatrix(t)
	daily, err := EstimateParametric(returns, []float64{1}, 0.95, 1, 1000)
	require.NoError(t, err)
	weekly, err := EstimateParametric(returns, []float64{1}, 0.95, 4, 1000)
	require.NoError(t, err)

	assert.InDelta(t, 2*daily.Value, weekly.Value, 1e-9)
}

func TestEstimateParametric_IdenticalInstrumentsMatchSingle(t *testing.T) {
	single := scenarioReturnMatrix(t)
	table := newTable(t, []string{"A", "B"}, scenarioPrices, scenarioPrices)
	double, _, err := Transform(table)
	require.NoError(t, err)

	one, err := EstimateParametric(single, []float64{1}, 0.95, 2, 1000)
	require.NoError(t, err)
	two, err := EstimateParametric(double, EqualWeights(2), 0.95, 2, 1000)
	require.NoError(t, err)

	assert.InDelta(t, one.Value, two.Value, 1e-9)
}

func TestEstimateParametric_InvalidInput(t *testing.T) {
	returns := scenarioReturnMatrix(t)

	testCases := []struct {
		name       string
		weights    []float64
		confidence float64
		horizon    int
		value      float64
	}{
		{"wrong weight count", []float64{0.5, 0.5}, 0.95, 2, 1000},
		{"weights do not sum to one", []float64{0.9}, 0.95, 2, 1000},
		{"NaN weight", []float64{math.NaN()}, 0.95, 2, 1000},
		{"confidence zero", []float64{1}, 0, 2, 1000},
		{"confidence one", []float64{1}, 1, 2, 1000},
		{"horizon zero", []float64{1}, 0.95, 0, 1000},
		{"portfolio value zero", []float64{1}, 0.95, 2, 0},
		{"portfolio value negative", []float64{1}, 0.95, 2, -10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EstimateParametric(returns, tc.weights, tc.confidence, tc.horizon, tc.value)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := EstimateParametric(nil, []float64{1}, 0.95, 2, 1000)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEstimateParametric_InsufficientRows(t *testing.T) {
	// Three instruments need at least four return rows.
	table := newTable(t, []string{"A", "B", "C"},
		[]float64{100, 101, 102, 103},
		[]float64{50, 49, 51, 50},
		[]float64{20, 21, 20, 22},
	)
	returns, _, err := Transform(table)
	require.NoError(t, err)
	require.Equal(t, 3, returns.Len())

	_, err = EstimateParametric(returns, EqualWeights(3), 0.95, 1, 1000)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPortfolioVolatility_ClampsNegativeVariance(t *testing.T) {
	returns := scenarioReturnMatrix(t)
	cov := AnnualizedCovariance(returns)
	cov.SetSym(0, 0, -1e-18)

	assert.Equal(t, 0.0, PortfolioVolatility(cov, []float64{1}))
}
