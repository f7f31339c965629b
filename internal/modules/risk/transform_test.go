package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_Scenario(t *testing.T) {
	returns, portfolio, err := Transform(scenarioTable(t))
	require.NoError(t, err)

	assert.Equal(t, 5, returns.Len())
	assert.Equal(t, 1, returns.Width())
	assert.Equal(t, day(1), returns.Dates()[0])
	for i, expected := range scenarioReturns {
		assert.InDelta(t, expected, returns.At(i, 0), 1e-15)
		assert.InDelta(t, expected, portfolio.Values[i], 1e-15)
	}
}

func TestTransform_EqualWeightedPortfolio(t *testing.T) {
	table := newTable(t, []string{"A", "B"},
		[]float64{100, 110, 121},
		[]float64{50, 45, 45},
	)

	_, portfolio, err := Transform(table)
	require.NoError(t, err)
	require.Equal(t, 2, portfolio.Len())

	assert.InDelta(t, (math.Log(1.1)+math.Log(0.9))/2, portfolio.Values[0], 1e-15)
	assert.InDelta(t, math.Log(1.1)/2, portfolio.Values[1], 1e-15)
}

func TestTransform_DropsRowsWithGaps(t *testing.T) {
	table := newTable(t, []string{"A", "B"},
		[]float64{100, 101, 102, 103, 104, 105},
		[]float64{50, 51, math.NaN(), 53, 54, 55},
	)

	returns, portfolio, err := Transform(table)
	require.NoError(t, err)

	// The gap on day 2 removes the returns of day 2 and day 3.
	assert.Equal(t, 3, returns.Len())
	assert.Equal(t, []time.Time{day(1), day(4), day(5)}, returns.Dates())
	assert.Equal(t, 3, portfolio.Len())
	for i := 0; i < returns.Len(); i++ {
		for j := 0; j < returns.Width(); j++ {
			assert.False(t, math.IsNaN(returns.At(i, j)))
		}
	}
}

func TestTransform_InsufficientData(t *testing.T) {
	t.Run("single row", func(t *testing.T) {
		_, _, err := Transform(newTable(t, []string{"A"}, []float64{100}))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("one return", func(t *testing.T) {
		_, _, err := Transform(newTable(t, []string{"A"}, []float64{100, 101}))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("gaps leave too few rows", func(t *testing.T) {
		table := newTable(t, []string{"A", "B"},
			[]float64{100, 101, 102, 103},
			[]float64{50, math.NaN(), 52, math.NaN()},
		)
		_, _, err := Transform(table)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestTransform_InvalidPrices(t *testing.T) {
	testCases := []struct {
		name   string
		prices []float64
	}{
		{"zero", []float64{100, 0, 101}},
		{"negative", []float64{100, -5, 101}},
		{"infinite", []float64{100, math.Inf(1), 101}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Transform(newTable(t, []string{"A"}, tc.prices))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestTransform_NoInstruments(t *testing.T) {
	_, _, err := Transform(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = Transform(&PriceTable{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTransform_DoesNotModifyInput(t *testing.T) {
	table := scenarioTable(t)
	_, _, err := Transform(table)
	require.NoError(t, err)

	for i, p := range scenarioPrices {
		assert.Equal(t, p, table.At(i, 0))
	}
}
