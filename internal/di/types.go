// Package di provides dependency injection type definitions.
package di

import (
	"github.com/aristath/varcalc/internal/clients/yahoo"
	"github.com/aristath/varcalc/internal/database"
	"github.com/aristath/varcalc/internal/metrics"
	"github.com/aristath/varcalc/internal/modules/charts"
	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/aristath/varcalc/internal/modules/risk/handlers"
)

// Container holds all dependencies for the application.
// Databases are nil when the configuration does not need them.
type Container struct {
	// Databases
	HistoryDB *database.DB // var_runs
	PricesDB  *database.DB // daily_prices, fetch_log

	// Clients
	YahooClient *yahoo.Client // nil unless PRICE_SOURCE=yahoo

	// Core
	PriceSource  risk.PriceSource
	HistoryStore risk.HistoryStore
	Metrics      *metrics.Recorder
	RiskService  *risk.Service
	Renderer     *charts.Renderer

	// HTTP
	RiskHandler *handlers.Handler
}

// Databases returns the open databases
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{c.HistoryDB, c.PricesDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close closes all open databases
func (c *Container) Close() error {
	var firstErr error
	for _, db := range c.Databases() {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
