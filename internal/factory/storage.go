// Package factory turns configuration into the concrete store and language
// model backend used by the service and CLI.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/journallm/journallm/internal/config"
	storepkg "github.com/journallm/journallm/internal/store"
	storepg "github.com/journallm/journallm/internal/store/postgres"
	storesqlite "github.com/journallm/journallm/internal/store/sqlite"
)

// NewStore opens the configured store and applies its schema.
// sqlite is the default; postgres requires cfg.PostgresDSN.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "", config.DriverSQLite:
		st, err := storesqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.SQLitePath, err)
		}
		log.Debug().Str("driver", config.DriverSQLite).Str("path", cfg.SQLitePath).Msg("store ready")
		return st, nil
	case config.DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("%s_POSTGRES_DSN is required when DB_DRIVER=postgres", config.EnvPrefix)
		}
		st, err := storepg.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Debug().Str("driver", config.DriverPostgres).Msg("store ready")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
