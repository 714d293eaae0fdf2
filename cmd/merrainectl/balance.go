package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/database"
	"github.com/merraine/merraine-api/internal/repository"
	"github.com/merraine/merraine-api/internal/service"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Inspect the vendor credit balance",
}

var balanceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the remaining credits, falling back to the last stored snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		credits, closeFn, err := creditsFromEnv(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		balance := credits.Balance(cmd.Context())
		if balance.CreditsRemaining == nil {
			return fmt.Errorf("balance unavailable from vendor and no stored snapshot")
		}
		fmt.Printf("credits remaining: %d (%s)\n", *balance.CreditsRemaining, balance.Source)
		return nil
	},
}

var balanceSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the balance from the vendor and store a snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		credits, closeFn, err := creditsFromEnv(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		balance, err := credits.SyncBalance(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("credits remaining: %d\n", balance)
		return nil
	},
}

func init() {
	balanceCmd.AddCommand(balanceShowCmd, balanceSyncCmd)
	rootCmd.AddCommand(balanceCmd)
}

func creditsFromEnv(cmd *cobra.Command) (*service.CreditsService, func(), error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, nil, err
	}

	pool, err := database.Open(cmd.Context(), cfg.DatabaseURL, false, log)
	if err != nil {
		return nil, nil, err
	}

	var repo repository.CreditsRepository
	if pool != nil {
		repo = repository.NewPGXCreditsRepository(pool)
	}
	closeFn := func() {
		if pool != nil {
			pool.Close()
		}
		_ = log.Sync()
	}

	vendor := newVendor(cfg, log)
	log.Debug("credits service ready", zap.Bool("database", pool != nil))
	return service.NewCreditsService(repo, vendor, log), closeFn, nil
}
