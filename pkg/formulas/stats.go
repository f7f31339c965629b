package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TradingDaysPerYear is the annualisation factor used across the risk code
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// LogReturn returns ln(current/previous).
// NaN when either price is NaN, matching how missing observations propagate.
func LogReturn(previous, current float64) float64 {
	return math.Log(current / previous)
}

// ZScore returns the standard normal quantile for a confidence level,
// i.e. the z with P(Z <= z) = confidence.
func ZScore(confidence float64) float64 {
	return distuv.UnitNormal.Quantile(confidence)
}

// HorizonScale converts an annual figure to a holding period of the given
// number of trading days using the square-root-of-time rule.
func HorizonScale(days int) float64 {
	return math.Sqrt(float64(days) / TradingDaysPerYear)
}
