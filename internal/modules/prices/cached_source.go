package prices

import (
	"context"
	"time"

	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/rs/zerolog"
)

// CachedSource serves previously fetched ranges from SQLite and forwards
// the rest to an upstream source, storing what comes back.
type CachedSource struct {
	inner risk.PriceSource
	repo  *Repository
	now   func() time.Time
	log   zerolog.Logger
}

// NewCachedSource decorates inner with a SQLite cache
func NewCachedSource(inner risk.PriceSource, repo *Repository, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		inner: inner,
		repo:  repo,
		now:   time.Now,
		log:   log.With().Str("source", "cache").Logger(),
	}
}

// FetchPrices implements risk.PriceSource
func (c *CachedSource) FetchPrices(ctx context.Context, tickers []string, start, end time.Time) (*risk.PriceTable, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	series := make(map[string][]Observation, len(tickers))
	var missing []string
	for _, ticker := range tickers {
		if obs := c.cached(ctx, ticker, start, end); len(obs) > 0 {
			series[ticker] = obs
			continue
		}
		missing = append(missing, ticker)
	}

	if len(missing) > 0 {
		table, err := c.inner.FetchPrices(ctx, missing, start, end)
		if err != nil {
			return nil, err
		}

		// A range reaching today can still gain rows, so only closed ranges count as covered.
		covered := !end.After(risk.TruncateDay(c.now()))
		for _, ticker := range missing {
			dates, closes, _ := table.Column(ticker)
			obs := make([]Observation, len(dates))
			for i := range dates {
				obs[i] = Observation{Date: dates[i], Close: closes[i]}
			}
			series[ticker] = obs

			if err := c.repo.StoreCloses(ctx, ticker, start, end, obs, covered); err != nil {
				c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache prices")
			}
		}
	}

	c.log.Debug().
		Int("cached", len(tickers)-len(missing)).
		Int("fetched", len(missing)).
		Msg("Resolved prices")

	return Merge(tickers, series)
}

func (c *CachedSource) cached(ctx context.Context, ticker string, start, end time.Time) []Observation {
	covered, err := c.repo.IsCovered(ctx, ticker, start, end)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("Price cache lookup failed")
		return nil
	}
	if !covered {
		return nil
	}

	obs, err := c.repo.LoadCloses(ctx, ticker, start, end)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to read cached prices")
		return nil
	}
	return obs
}
