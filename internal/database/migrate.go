package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// MigrateUp applies every pending embedded migration.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	return runGoose(ctx, pool, log, "up", goose.UpContext)
}

// MigrateDown rolls back the latest applied migration.
func MigrateDown(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	return runGoose(ctx, pool, log, "down", goose.DownContext)
}

// MigrateStatus logs the applied state of every migration.
func MigrateStatus(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	return runGoose(ctx, pool, log, "status", goose.StatusContext)
}

type gooseCommand func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error

func runGoose(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger, name string, fn gooseCommand) error {
	if pool == nil {
		return fmt.Errorf("migrate %s: database is not configured", name)
	}
	if log == nil {
		log = zap.NewNop()
	}

	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{log: log.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// The pool owns the connections; the sql.DB is only a bridge for goose.
	db := stdlib.OpenDBFromPool(pool)
	if err := fn(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("migrate %s: %w", name, err)
	}
	return nil
}

type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) { l.log.Infof(format, v...) }

func (l gooseLogger) Fatalf(format string, v ...any) { l.log.Fatalf(format, v...) }
