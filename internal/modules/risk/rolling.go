package risk

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Aggregate sums the portfolio returns over overlapping windows of the given
// length, advancing one day at a time. Leading incomplete windows are
// dropped, so the output has len(series) - window + 1 points.
func Aggregate(series PortfolioReturnSeries, window int) (RollingReturnSeries, error) {
	if window < 1 {
		return RollingReturnSeries{}, fmt.Errorf("%w: rolling window must be >= 1, got %d", ErrInvalidInput, window)
	}
	n := series.Len()
	if window > n {
		return RollingReturnSeries{}, fmt.Errorf("%w: rolling window %d exceeds %d portfolio returns", ErrInsufficientData, window, n)
	}

	out := RollingReturnSeries{
		Window: window,
		Dates:  make([]time.Time, n-window+1),
		Values: make([]float64, n-window+1),
	}
	for end := window - 1; end < n; end++ {
		i := end - window + 1
		out.Values[i] = floats.Sum(series.Values[i : end+1])
		if len(series.Dates) == n {
			out.Dates[i] = series.Dates[end]
		}
	}
	return out, nil
}
