package risk

import "fmt"

// State is the lifecycle position of a Run.
type State int

const (
	StateUninitialized State = iota
	StateDataLoaded
	StateEstimated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDataLoaded:
		return "data_loaded"
	case StateEstimated:
		return "estimated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Estimates pairs the two VaR figures of one run.
type Estimates struct {
	Historical VaREstimate
	Parametric VaREstimate
}

// Run owns the working data of a single parameter set. It moves
// Uninitialized -> DataLoaded -> Estimated and never goes back. A Run is not
// safe for concurrent use; each calculation builds its own.
type Run struct {
	params    Parameters
	state     State
	returns   *LogReturnMatrix
	portfolio PortfolioReturnSeries
	rolling   RollingReturnSeries
	estimates Estimates
}

// NewRun creates an uninitialized run. It performs no I/O.
func NewRun(params Parameters) *Run {
	return &Run{params: params, state: StateUninitialized}
}

// State reports where the run is in its lifecycle.
func (r *Run) State() State { return r.state }

// Parameters returns the inputs the run was created with.
func (r *Run) Parameters() Parameters { return r.params }

// Load transforms the prices and aggregates the rolling returns. On failure
// the run stays uninitialized.
func (r *Run) Load(prices *PriceTable) error {
	if r.state != StateUninitialized {
		return fmt.Errorf("%w: run is already %s", ErrNotReady, r.state)
	}
	if prices == nil {
		return fmt.Errorf("%w: no price table", ErrInvalidInput)
	}
	if !prices.Tickers().Equal(r.params.Tickers) {
		return fmt.Errorf("%w: price table columns %v do not match tickers %v", ErrInvalidInput, prices.Tickers(), r.params.Tickers)
	}

	returns, portfolio, err := Transform(prices)
	if err != nil {
		return err
	}
	rolling, err := Aggregate(portfolio, r.params.RollingWindow)
	if err != nil {
		return err
	}

	r.returns = returns
	r.portfolio = portfolio
	r.rolling = rolling
	r.state = StateDataLoaded
	return nil
}

// Estimate runs both estimators. The parametric horizon is the rolling
// window, so both figures cover the same holding period.
func (r *Run) Estimate() (Estimates, error) {
	if r.state != StateDataLoaded {
		return Estimates{}, fmt.Errorf("%w: cannot estimate a run that is %s", ErrNotReady, r.state)
	}

	historical, err := EstimateHistorical(r.rolling, r.params.ConfidenceLevel, r.params.PortfolioValue)
	if err != nil {
		return Estimates{}, err
	}
	parametric, err := EstimateParametric(r.returns, EqualWeights(r.returns.Width()),
		r.params.ConfidenceLevel, r.params.RollingWindow, r.params.PortfolioValue)
	if err != nil {
		return Estimates{}, err
	}

	r.estimates = Estimates{Historical: historical, Parametric: parametric}
	r.state = StateEstimated
	return r.estimates, nil
}

// RollingReturns is available once data is loaded.
func (r *Run) RollingReturns() (RollingReturnSeries, error) {
	if r.state == StateUninitialized {
		return RollingReturnSeries{}, fmt.Errorf("%w: no data loaded", ErrNotReady)
	}
	return r.rolling, nil
}

// PortfolioReturns is available once data is loaded.
func (r *Run) PortfolioReturns() (PortfolioReturnSeries, error) {
	if r.state == StateUninitialized {
		return PortfolioReturnSeries{}, fmt.Errorf("%w: no data loaded", ErrNotReady)
	}
	return r.portfolio, nil
}
