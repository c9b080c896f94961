// Command pricesync is the operator CLI: resolve identifiers, refresh prices
// and inspect the price cache without going through the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/aristath/pricesync/internal/config"
	"github.com/aristath/pricesync/internal/di"
	"github.com/aristath/pricesync/pkg/logger"
)

var (
	cfg       *config.Config
	container *di.Container
	log       zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pricesync",
	Short:         "Security lookup and EUR price refresh",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = "warn"
		}
		log = logger.New(logger.Config{Level: level, Pretty: true})

		if key, _ := cmd.Flags().GetString("api-key"); key != "" {
			cfg.SetAPIKeySource(func() string { return key })
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			decimal.MarshalJSONWithoutQuotes = true
		}

		container, err = di.Wire(cfg, log)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return container.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); default warn")
	rootCmd.PersistentFlags().String("api-key", "", "Twelve Data API key, overrides "+config.APIKeyEnv)
	rootCmd.PersistentFlags().Bool("json", false, "print JSON instead of a table")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(cachedCmd)
}
