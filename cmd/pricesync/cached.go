package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/pricesync/internal/utils"
)

var cachedCmd = &cobra.Command{
	Use:   "cached TICKER...",
	Short: "Show cached prices without contacting a provider",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tickers := utils.NormalizeTickers(args)

		entries, err := container.PriceService.GetCached(tickers)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(out, entries)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TICKER\tPRICE\tCHANGE\tUPDATED")
		for _, e := range entries {
			change := "-"
			if e.ChangePercent.Valid {
				change = formatChange(e.ChangePercent.Decimal)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Ticker, formatMoney(e.Price, e.Currency), change, e.LastUpdated.Local().Format(time.DateTime))
		}
		return tw.Flush()
	},
}
