package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aristath/pricesync/internal/events"
	"github.com/aristath/pricesync/internal/modules/prices"
	"github.com/aristath/pricesync/internal/utils"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [TICKER...]",
	Short: "Refresh prices and apply them to positions",
	Long: `Refresh prices for the given tickers, or for every position when none are given.
Uses the keyed provider when an API key is configured and the keyless one otherwise.
With --keyed a missing key is an error instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tickers := utils.NormalizeTickers(args)
		if len(tickers) == 0 {
			var err error
			tickers, err = container.PositionRepo.Tickers()
			if err != nil {
				return err
			}
		}
		if len(tickers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to refresh")
			return nil
		}

		errOut := cmd.ErrOrStderr()
		waiting := container.EventBus.Subscribe(events.PriceBatchWaiting, func(e *events.Event) {
			if data, ok := e.Data.(*events.BatchWaitingData); ok {
				fmt.Fprintf(errOut, "waiting %.0fs before batch %d...\n", data.Seconds, data.NextBatch)
			}
		})
		defer container.EventBus.Unsubscribe(waiting)

		keyed, _ := cmd.Flags().GetBool("keyed")
		var (
			summary *prices.RefreshSummary
			err     error
		)
		if keyed {
			summary, err = container.PriceService.FetchKeyed(cmd.Context(), tickers)
		} else {
			summary, err = container.PriceService.Refresh(cmd.Context(), tickers)
		}
		if summary == nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if encErr := writeJSON(out, summary); encErr != nil {
				return encErr
			}
			return err
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TICKER\tPRICE\tEUR\tCHANGE")
		for _, p := range summary.Prices {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Ticker, formatMoney(p.Price, p.Currency), formatEUR(p.PriceEUR), formatChange(p.ChangePercent))
		}
		if flushErr := tw.Flush(); flushErr != nil {
			return flushErr
		}
		fmt.Fprintf(out, "\n%d of %d fetched, %d updated, %d skipped\n",
			len(summary.Prices), len(tickers), summary.UpdatedCount, summary.SkippedCount)

		return err
	},
}

func init() {
	refreshCmd.Flags().Bool("keyed", false, "require the keyed batch provider")
}
