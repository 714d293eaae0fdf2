package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/merraine/merraine-api/internal/config"
	"github.com/merraine/merraine-api/internal/pearch"
	"github.com/merraine/merraine-api/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Run a candidate search against the vendor and print the normalized results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		vendor := newVendor(cfg, log)
		if !vendor.Configured() {
			return fmt.Errorf("PEARCH_API_KEY is required")
		}

		params := pearch.SearchParams{
			Query:        args[0],
			Type:         viper.GetString("search-type"),
			Limit:        viper.GetInt("limit"),
			RevealEmails: viper.GetBool("reveal-emails"),
			RevealPhones: viper.GetBool("reveal-phones"),
			Insights:     viper.GetBool("insights"),
		}

		collector := service.NewCollector(vendor, service.NewNormalizer(nil), cfg.Pearch.MaxPerCall, log)
		searcher := service.NewSearchService(collector, nil, service.NewCreditsService(nil, vendor, log), log)
		outcome, err := searcher.Search(cmd.Context(), params, service.SearchOptions{})
		if err != nil {
			return err
		}

		log.Info("search finished", zap.Int("results", len(outcome.Profiles)), zap.Bool("partial", outcome.Partial))
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(outcome)
	},
}

func init() {
	searchCmd.Flags().String("search-type", "fast", "vendor search type: fast or pro")
	searchCmd.Flags().IntP("limit", "l", 10, "number of candidates to request")
	searchCmd.Flags().Bool("reveal-emails", false, "reveal candidate emails")
	searchCmd.Flags().Bool("reveal-phones", false, "reveal candidate phone numbers")
	searchCmd.Flags().Bool("insights", false, "request match insights")

	for _, name := range []string{"search-type", "limit", "reveal-emails", "reveal-phones", "insights"} {
		viper.BindPFlag(name, searchCmd.Flags().Lookup(name))
	}
	rootCmd.AddCommand(searchCmd)
}

func newVendor(cfg *config.Config, log *zap.Logger) *pearch.Client {
	return pearch.New(pearch.Options{
		APIKey:        cfg.Pearch.APIKey,
		BaseURL:       cfg.Pearch.BaseURL,
		Timeout:       cfg.Pearch.Timeout,
		MaxRetries:    cfg.Pearch.MaxRetries,
		RetryDelays:   cfg.Pearch.RetryDelays,
		ProxyAudience: cfg.Pearch.ProxyAudience,
		Logger:        log,
	})
}
