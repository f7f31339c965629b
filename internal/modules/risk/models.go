package risk

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// InstrumentSet is an ordered list of unique tickers. Its order is the
// column order of every table and matrix built from it.
type InstrumentSet []string

// NewInstrumentSet trims and checks the tickers, keeping their order.
func NewInstrumentSet(tickers []string) (InstrumentSet, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: at least one ticker is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(tickers))
	set := make(InstrumentSet, 0, len(tickers))
	for _, ticker := range tickers {
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			return nil, fmt.Errorf("%w: empty ticker", ErrInvalidInput)
		}
		if _, dup := seen[ticker]; dup {
			return nil, fmt.Errorf("%w: duplicate ticker %q", ErrInvalidInput, ticker)
		}
		seen[ticker] = struct{}{}
		set = append(set, ticker)
	}
	return set, nil
}

// Index returns the column of ticker, or -1.
func (s InstrumentSet) Index(ticker string) int {
	for i, t := range s {
		if t == ticker {
			return i
		}
	}
	return -1
}

// Equal reports whether both sets hold the same tickers in the same order.
func (s InstrumentSet) Equal(other []string) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// ParseTickers splits a whitespace or comma separated list such as
// "AAPL MSFT GOOG".
func ParseTickers(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// EqualWeights returns n weights of 1/n.
func EqualWeights(n int) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// PriceTable holds adjusted closing prices, one row per date and one column
// per instrument. A missing observation is NaN.
type PriceTable struct {
	tickers InstrumentSet
	dates   []time.Time
	values  [][]float64
}

// NewPriceTable validates shape and ordering and copies the inputs.
func NewPriceTable(tickers []string, dates []time.Time, values [][]float64) (*PriceTable, error) {
	set, err := NewInstrumentSet(tickers)
	if err != nil {
		return nil, err
	}
	if len(values) != len(dates) {
		return nil, fmt.Errorf("%w: %d price rows for %d dates", ErrInvalidInput, len(values), len(dates))
	}

	table := &PriceTable{
		tickers: set,
		dates:   make([]time.Time, len(dates)),
		values:  make([][]float64, len(values)),
	}
	for i, row := range values {
		if len(row) != len(set) {
			return nil, fmt.Errorf("%w: row %d has %d prices, expected %d", ErrInvalidInput, i, len(row), len(set))
		}
		if i > 0 && !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("%w: dates must be strictly increasing (row %d)", ErrInvalidInput, i)
		}
		table.dates[i] = dates[i]
		table.values[i] = append([]float64(nil), row...)
	}
	return table, nil
}

// Tickers returns the column order.
func (p *PriceTable) Tickers() InstrumentSet {
	return append(InstrumentSet(nil), p.tickers...)
}

// Dates returns a copy of the row dates.
func (p *PriceTable) Dates() []time.Time {
	return append([]time.Time(nil), p.dates...)
}

// Len is the number of rows.
func (p *PriceTable) Len() int { return len(p.dates) }

// Width is the number of instruments.
func (p *PriceTable) Width() int { return len(p.tickers) }

// At returns the price of column j on row i.
func (p *PriceTable) At(i, j int) float64 { return p.values[i][j] }

// Column returns the non-missing observations for ticker.
func (p *PriceTable) Column(ticker string) ([]time.Time, []float64, bool) {
	j := p.tickers.Index(ticker)
	if j < 0 {
		return nil, nil, false
	}

	var dates []time.Time
	var closes []float64
	for i, row := range p.values {
		if math.IsNaN(row[j]) {
			continue
		}
		dates = append(dates, p.dates[i])
		closes = append(closes, row[j])
	}
	return dates, closes, true
}

// LogReturnMatrix holds per-instrument log returns; same column layout as
// the PriceTable it came from, no missing cells.
type LogReturnMatrix struct {
	tickers InstrumentSet
	dates   []time.Time
	values  [][]float64
}

// Tickers returns the column order.
func (m *LogReturnMatrix) Tickers() InstrumentSet {
	return append(InstrumentSet(nil), m.tickers...)
}

// Dates returns a copy of the row dates.
func (m *LogReturnMatrix) Dates() []time.Time {
	return append([]time.Time(nil), m.dates...)
}

// Len is the number of rows.
func (m *LogReturnMatrix) Len() int { return len(m.dates) }

// Width is the number of instruments.
func (m *LogReturnMatrix) Width() int { return len(m.tickers) }

// At returns the return of column j on row i.
func (m *LogReturnMatrix) At(i, j int) float64 { return m.values[i][j] }

// Dense copies the matrix into a gonum dense matrix (rows x instruments).
func (m *LogReturnMatrix) Dense() *mat.Dense {
	flat := make([]float64, 0, m.Len()*m.Width())
	for _, row := range m.values {
		flat = append(flat, row...)
	}
	return mat.NewDense(m.Len(), m.Width(), flat)
}

// Weighted returns the per-row weighted sum. weights must match Width.
func (m *LogReturnMatrix) Weighted(weights []float64) PortfolioReturnSeries {
	out := PortfolioReturnSeries{
		Dates:  m.Dates(),
		Values: make([]float64, m.Len()),
	}
	for i, row := range m.values {
		out.Values[i] = floats.Dot(weights, row)
	}
	return out
}

// PortfolioReturnSeries is the weighted daily log return of the portfolio.
type PortfolioReturnSeries struct {
	Dates  []time.Time
	Values []float64
}

// Len is the number of observations.
func (s PortfolioReturnSeries) Len() int { return len(s.Values) }

// RollingReturnSeries holds sums of Window consecutive portfolio returns,
// dated by the last day of each window.
type RollingReturnSeries struct {
	Window int
	Dates  []time.Time
	Values []float64
}

// Len is the number of windows.
func (s RollingReturnSeries) Len() int { return len(s.Values) }

// Method names a VaR estimation technique.
type Method string

const (
	MethodHistorical Method = "historical"
	MethodParametric Method = "parametric"
)

// ParseMethod accepts "historical" or "parametric".
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodHistorical:
		return MethodHistorical, nil
	case MethodParametric:
		return MethodParametric, nil
	default:
		return "", fmt.Errorf("%w: unknown method %q", ErrInvalidInput, s)
	}
}

// VaREstimate is a loss threshold in currency units: with probability
// ConfidenceLevel the loss over HorizonDays does not exceed Value.
type VaREstimate struct {
	Method          Method
	Value           float64
	ConfidenceLevel float64
	HorizonDays     int
}

// Result is everything a completed run hands to presentation and history.
type Result struct {
	ID             string
	CreatedAt      time.Time
	Inputs         Parameters
	Historical     VaREstimate
	Parametric     VaREstimate
	RollingReturns RollingReturnSeries
}

// Estimate returns the estimate produced by method.
func (r Result) Estimate(method Method) (VaREstimate, bool) {
	switch method {
	case MethodHistorical:
		return r.Historical, true
	case MethodParametric:
		return r.Parametric, true
	default:
		return VaREstimate{}, false
	}
}
