package formulas

import (
	"math"
	"sort"
)

// Percentile returns the q-th percentile (q in [0, 100]) of data using
// linear interpolation between the closest ranks.
//
// The rank is h = (n-1) * q/100 on the ascending-sorted sample, and the
// result is x[floor(h)] + (h - floor(h)) * (x[floor(h)+1] - x[floor(h)]).
// This is the "linear" (Hyndman-Fan type 7) definition. gonum's
// stat.Quantile only offers the empirical and type 4 interpolations, which
// disagree with it on small samples.
//
// Returns NaN for empty input or q outside [0, 100]. data is not modified.
func Percentile(data []float64, q float64) float64 {
	if len(data) == 0 || math.IsNaN(q) || q < 0 || q > 100 {
		return math.NaN()
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	h := float64(len(sorted)-1) * q / 100
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}

	frac := h - lo
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}
