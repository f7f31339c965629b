package di

import (
	"fmt"

	"github.com/aristath/varcalc/internal/clients/yahoo"
	"github.com/aristath/varcalc/internal/config"
	"github.com/aristath/varcalc/internal/metrics"
	"github.com/aristath/varcalc/internal/modules/charts"
	"github.com/aristath/varcalc/internal/modules/history"
	"github.com/aristath/varcalc/internal/modules/prices"
	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/aristath/varcalc/internal/modules/risk/handlers"
	"github.com/rs/zerolog"
)

// InitializeServices builds the price source, history store, risk service and
// HTTP handlers on top of the opened databases
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	source, err := newPriceSource(container, cfg, log)
	if err != nil {
		return err
	}
	container.PriceSource = source

	if container.HistoryDB != nil {
		container.HistoryStore = history.NewSQLiteStore(container.HistoryDB.Conn(), log)
	} else {
		container.HistoryStore = history.NewMemoryStore()
	}

	defaults, err := cfg.DefaultParameters()
	if err != nil {
		return fmt.Errorf("invalid run defaults: %w", err)
	}

	container.Metrics = metrics.NewRecorder()
	container.RiskService = risk.NewService(container.PriceSource, container.HistoryStore, container.Metrics, defaults, log)
	container.Renderer = charts.NewRenderer(charts.DefaultBins, log)
	container.RiskHandler = handlers.NewHandler(container.RiskService, container.Renderer, log)

	log.Info().
		Str("price_source", cfg.PriceSource).
		Bool("price_cache", container.PricesDB != nil).
		Str("history_backend", cfg.HistoryBackend).
		Msg("Services initialized")

	return nil
}

func newPriceSource(container *Container, cfg *config.Config, log zerolog.Logger) (risk.PriceSource, error) {
	switch cfg.PriceSource {
	case config.SourceCSV:
		source, err := prices.LoadCSVFile(cfg.PriceCSVPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load price CSV: %w", err)
		}
		return source, nil

	case config.SourceYahoo:
		container.YahooClient = yahoo.NewClient(log, cfg.YahooMaxRetries)
		var source risk.PriceSource = prices.NewYahooSource(container.YahooClient, log)
		if container.PricesDB != nil {
			repo := prices.NewRepository(container.PricesDB.Conn(), log)
			source = prices.NewCachedSource(source, repo, log)
		}
		return source, nil

	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.PriceSource)
	}
}
