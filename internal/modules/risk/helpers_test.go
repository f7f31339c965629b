package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scenarioPrices is the single-instrument series used for the hand-computed
// reference values below.
var scenarioPrices = []float64{100, 101, 99, 102, 101, 103}

var scenarioReturns = []float64{
	0.009950330853168092,
	-0.020000666706669543,
	0.02985296314968113,
	-0.009852296443011594,
	0.019608471388376337,
}

var scenarioRolling2 = []float64{
	-0.01005033585350145,
	0.009852296443011586,
	0.020000666706669536,
	0.009756174945364742,
}

const scenarioAnnualSigma = 0.32697734086304864

func day(i int) time.Time {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func days(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = day(i)
	}
	return out
}

// newTable builds a price table from per-ticker columns of equal length.
func newTable(t *testing.T, tickers []string, columns ...[]float64) *PriceTable {
	t.Helper()
	require.Len(t, columns, len(tickers))

	rows := len(columns[0])
	values := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		values[i] = make([]float64, len(columns))
		for j, col := range columns {
			values[i][j] = col[i]
		}
	}

	table, err := NewPriceTable(tickers, days(rows), values)
	require.NoError(t, err)
	return table
}

func scenarioTable(t *testing.T) *PriceTable {
	return newTable(t, []string{"A"}, scenarioPrices)
}

func scenarioParams() Parameters {
	return Parameters{
		Tickers:         []string{"A"},
		StartDate:       day(0),
		EndDate:         day(10),
		RollingWindow:   2,
		ConfidenceLevel: 0.95,
		PortfolioValue:  1000,
	}
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
