// Package di provides dependency injection for database connections.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/varcalc/internal/config"
	"github.com/aristath/varcalc/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens and migrates the databases the configuration needs
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// history.db - Run history
	if cfg.HistoryBackend == config.BackendSQLite {
		historyDB, err := openDatabase(filepath.Join(cfg.DataDir, "history.db"), "history", database.ProfileStandard)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history database: %w", err)
		}
		container.HistoryDB = historyDB
	}

	// prices.db - Price cache, safe to delete
	if cfg.PriceSource == config.SourceYahoo && cfg.PriceCache {
		pricesDB, err := openDatabase(filepath.Join(cfg.DataDir, "prices.db"), "prices", database.ProfileCache)
		if err != nil {
			_ = container.Close()
			return nil, fmt.Errorf("failed to initialize prices database: %w", err)
		}
		container.PricesDB = pricesDB
	}

	log.Info().Int("count", len(container.Databases())).Msg("Databases initialized")

	return container, nil
}

func openDatabase(path, name string, profile database.DatabaseProfile) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    path,
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
	}
	return db, nil
}
