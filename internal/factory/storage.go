package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lifelog/lifelog-server/internal/config"
	storepkg "github.com/lifelog/lifelog-server/internal/store"
	storemem "github.com/lifelog/lifelog-server/internal/store/memory"
	storepg "github.com/lifelog/lifelog-server/internal/store/postgres"
	storesqlite "github.com/lifelog/lifelog-server/internal/store/sqlite"
)

// NewStore returns a store.Store for the configured driver: memory for
// throwaway runs, sqlite for local single-node use, postgres for cloud
// targets. Postgres schema bootstrap runs async so startup stays fast.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "memory":
		return storemem.New(), nil

	case "sqlite":
		st, err := storesqlite.NewAtPath(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Debug().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return st, nil

	case "postgres":
		dsn := cfg.PostgresDSN
		if dsn == "" {
			return nil, fmt.Errorf("LIFELOG_SERVER_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}

		// Open connection synchronously since health checks need it immediately
		db, err := storepg.Open(dsn)
		if err != nil {
			return nil, err
		}

		// Async bootstrap check; don't block startup
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := storepg.Bootstrap(bootstrapCtx, dsn); err != nil {
				log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store bootstrap check failed")
			} else {
				log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap check completed")
			}
		}()

		return storepg.NewWithDB(db), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
