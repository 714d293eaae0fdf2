package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrNoDSN is returned when Connect is called without a connection string.
var ErrNoDSN = errors.New("database DSN must not be empty")

const pingTimeout = 5 * time.Second

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Open connects and, when migrate is set, applies pending migrations. An empty
// DSN yields a nil pool and no error; the caller runs without persistence.
func Open(ctx context.Context, dsn string, migrate bool, log *zap.Logger) (*pgxpool.Pool, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dsn == "" {
		log.Warn("DATABASE_URL not set, persistence routes disabled")
		return nil, nil
	}

	pool, err := Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := MigrateUp(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	log.Info("database connected", zap.Bool("migrated", migrate))
	return pool, nil
}
