package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultHistoryLimit is how many past runs are listed when no limit is given.
	DefaultHistoryLimit = 10
	// MaxHistoryLimit caps a single history read.
	MaxHistoryLimit = 100
)

// Service runs VaR calculations end to end: resolve and validate the
// parameters, fetch prices, drive a Run, then record the result.
type Service struct {
	source   PriceSource
	history  HistoryStore
	metrics  MetricsRecorder
	defaults Parameters
	now      func() time.Time
	newID    func() string
	log      zerolog.Logger
}

// NewService creates a VaR service. metrics may be nil.
func NewService(source PriceSource, history HistoryStore, metrics MetricsRecorder, defaults Parameters, log zerolog.Logger) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		source:   source,
		history:  history,
		metrics:  metrics,
		defaults: defaults,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      log.With().Str("service", "risk").Logger(),
	}
}

// Defaults returns the parameters used for omitted fields.
func (s *Service) Defaults() Parameters {
	return s.Resolve(Parameters{})
}

// Resolve fills omitted fields from the configured defaults. A missing end
// date means today.
func (s *Service) Resolve(params Parameters) Parameters {
	params = params.WithDefaults(s.defaults)
	if params.EndDate.IsZero() {
		params.EndDate = TruncateDay(s.now())
	}
	return params
}

// Calculate evaluates one parameter set and appends the result to the
// history store. A failure to record is logged and does not fail the
// calculation.
func (s *Service) Calculate(ctx context.Context, params Parameters) (*Result, error) {
	result, err := s.Evaluate(ctx, params)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.Append(ctx, *result); err != nil {
			s.log.Error().Err(err).Str("run_id", result.ID).Msg("Failed to record run history")
		}
	}
	return result, nil
}

// Evaluate resolves, validates and runs one calculation without recording
// it in history. Metrics are still observed.
func (s *Service) Evaluate(ctx context.Context, params Parameters) (*Result, error) {
	started := s.now()
	params = s.Resolve(params)

	result, err := s.calculate(ctx, params)
	elapsed := s.now().Sub(started)
	if err != nil {
		kind := KindOf(err)
		s.metrics.RunFailed(kind, elapsed)
		s.log.Warn().
			Err(err).
			Str("kind", kind).
			Strs("tickers", params.Tickers).
			Msg("VaR calculation failed")
		return nil, err
	}

	s.metrics.RunSucceeded(elapsed, Estimates{Historical: result.Historical, Parametric: result.Parametric})
	s.log.Info().
		Str("run_id", result.ID).
		Strs("tickers", params.Tickers).
		Float64("historical_var", result.Historical.Value).
		Float64("parametric_var", result.Parametric.Value).
		Dur("duration", elapsed).
		Msg("VaR calculation completed")

	return result, nil
}

func (s *Service) calculate(ctx context.Context, params Parameters) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	tickers, err := NewInstrumentSet(params.Tickers)
	if err != nil {
		return nil, err
	}
	params.Tickers = tickers

	prices, err := s.source.FetchPrices(ctx, params.Tickers, params.StartDate, params.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}

	run := NewRun(params)
	if err := run.Load(prices); err != nil {
		return nil, err
	}
	estimates, err := run.Estimate()
	if err != nil {
		return nil, err
	}
	rolling, err := run.RollingReturns()
	if err != nil {
		return nil, err
	}

	return &Result{
		ID:             s.newID(),
		CreatedAt:      s.now().UTC(),
		Inputs:         params,
		Historical:     estimates.Historical,
		Parametric:     estimates.Parametric,
		RollingReturns: rolling,
	}, nil
}

// Recent lists the newest recorded runs.
func (s *Service) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidInput, MaxHistoryLimit, limit)
	}
	if s.history == nil {
		return []Result{}, nil
	}
	return s.history.Recent(ctx, limit)
}
