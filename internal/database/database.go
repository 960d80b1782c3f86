package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"

	"medrx_backend/internal/config"
)

// Connect opens the pool and pings it before returning.
func Connect(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Info().
		Str("host", cfg.DBHost).
		Str("db", cfg.DBName).
		Msg("connected to database")
	return db, nil
}
