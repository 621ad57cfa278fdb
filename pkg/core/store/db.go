// Package store persists completed valuation runs to Postgres. Export is
// best-effort: a valuation is fully usable without the database, so callers
// treat save failures as warnings.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB opens the pool backing the valuation-run archive, reading the
// connection string from DATABASE_URL. Safe to call more than once; the CLI
// and the API server both call it on the save path.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool hands the shared pool to ValuationRepo. Nil until InitDB has
// succeeded, which repo methods report as an error the caller may downgrade
// to a warning.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the pool, typically deferred by main after the last save.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
