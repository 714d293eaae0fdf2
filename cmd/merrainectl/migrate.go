package main

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/database"
)

type migrateFunc func(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

func init() {
	migrateCmd.AddCommand(
		migrateSubcommand("up", "Apply all pending migrations", database.MigrateUp),
		migrateSubcommand("down", "Roll back the latest migration", database.MigrateDown),
		migrateSubcommand("status", "Show applied migrations", database.MigrateStatus),
	)
	rootCmd.AddCommand(migrateCmd)
}

func migrateSubcommand(use, short string, fn migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			pool, err := database.Connect(cmd.Context(), cfg.DatabaseURL)
			if errors.Is(err, database.ErrNoDSN) {
				return errors.New("DATABASE_URL or --database-url is required")
			}
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := fn(cmd.Context(), pool, log); err != nil {
				return err
			}
			log.Info("migrate finished", zap.String("command", use))
			return nil
		},
	}
}
