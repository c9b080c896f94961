package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/pricesync/internal/domain"
)

var lookupCmd = &cobra.Command{
	Use:       "lookup (wkn|ticker) IDENTIFIER",
	Short:     "Resolve a WKN or ticker into a priced security",
	Example:   "  pricesync lookup wkn 865985\n  pricesync lookup ticker SAP.DE",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(domain.LookupWKN), string(domain.LookupTicker)},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := domain.LookupKind(strings.ToLower(args[0]))
		resolved, err := container.LookupService.Resolve(cmd.Context(), args[1], kind)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("not found: %s", args[1])
			}
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(out, resolved)
		}

		price := formatEUR(resolved.CurrentPrice)
		if resolved.CurrentPrice.IsZero() {
			price = "n/a"
		}
		fmt.Fprintf(out, "%s (%s)\n", resolved.Name, resolved.Ticker)
		fmt.Fprintf(out, "  Class:    %s\n", resolved.InstrumentClass)
		fmt.Fprintf(out, "  Exchange: %s\n", resolved.Exchange)
		fmt.Fprintf(out, "  Price:    %s\n", price)
		if resolved.Identifier != "" {
			fmt.Fprintf(out, "  WKN:      %s\n", resolved.Identifier)
		}
		return nil
	},
}
