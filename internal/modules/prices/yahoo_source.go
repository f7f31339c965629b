package prices

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aristath/varcalc/internal/clients/yahoo"
	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/rs/zerolog"
)

// closesFetcher is the part of the Yahoo client the source needs
type closesFetcher interface {
	GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]yahoo.DailyClose, error)
}

// YahooSource reads adjusted closes from Yahoo Finance
type YahooSource struct {
	client closesFetcher
	log    zerolog.Logger
}

// NewYahooSource creates a source on top of a Yahoo client
func NewYahooSource(client closesFetcher, log zerolog.Logger) *YahooSource {
	return &YahooSource{
		client: client,
		log:    log.With().Str("source", "yahoo").Logger(),
	}
}

// FetchPrices downloads each ticker in turn and joins them on date
func (s *YahooSource) FetchPrices(ctx context.Context, tickers []string, start, end time.Time) (*risk.PriceTable, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	series := make(map[string][]Observation, len(tickers))
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		closes, err := s.client.GetDailyCloses(ctx, ticker, start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch history for %s: %w", risk.ErrDataUnavailable, ticker, err)
		}

		obs := make([]Observation, 0, len(closes))
		for _, c := range closes {
			if math.IsNaN(c.AdjClose) {
				continue
			}
			obs = append(obs, Observation{Date: c.Date, Close: c.AdjClose})
		}
		if len(obs) == 0 {
			return nil, fmt.Errorf("%w: no prices for %s between %s and %s", risk.ErrDataUnavailable,
				ticker, start.Format(risk.DateLayout), end.Format(risk.DateLayout))
		}

		s.log.Debug().Str("ticker", ticker).Int("rows", len(obs)).Msg("Fetched prices")
		series[ticker] = obs
	}

	return Merge(tickers, series)
}
