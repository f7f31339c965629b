// Package charts renders the distribution of rolling portfolio returns.
package charts

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultBins is the histogram resolution used for distribution charts
const DefaultBins = 50

// Bin is one histogram bucket. Lower is inclusive; Upper is exclusive
// except for the last bin, which also holds the maximum.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Mid is the centre of the bin
func (b Bin) Mid() float64 {
	return (b.Lower + b.Upper) / 2
}

// Histogram counts values into bins of equal width spanning [min, max].
// NaN values are ignored. A constant sample yields a single bin.
func Histogram(values []float64, bins int) []Bin {
	if bins < 1 {
		bins = DefaultBins
	}

	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	lo, hi := floats.Min(clean), floats.Max(clean)
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(clean)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range clean {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// SplitAt divides bin counts into the bins lying entirely at or above
// threshold and the tail bins that start below it, which includes the bin
// containing threshold. Both slices have one entry per bin.
func SplitAt(bins []Bin, threshold float64) (body, tail []float64) {
	body = make([]float64, len(bins))
	tail = make([]float64, len(bins))
	for i, b := range bins {
		if b.Lower < threshold {
			tail[i] = float64(b.Count)
		} else {
			body[i] = float64(b.Count)
		}
	}
	return body, tail
}
