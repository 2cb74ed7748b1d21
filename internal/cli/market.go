package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-yield-tracker/internal/app"
)

func newRefreshCommand(s *state) *cobra.Command {
	var currencies []string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch prices, dividends and exchange rates for every traded symbol",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if !cmd.Flags().Changed("currencies") {
				currencies = slices.Clone(a.Config.Market.Currencies)
			}
			for i := range currencies {
				currencies[i] = strings.ToUpper(strings.TrimSpace(currencies[i]))
			}

			result, err := a.Market.Refresh(cmd.Context(), a.Config.Market.BaseCurrency, currencies...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Refreshed %d symbols in %s: %d prices, %d dividend histories, %d rates\n",
				result.Symbols, result.Duration.Round(time.Millisecond), result.Prices, result.Dividends, result.Rates)
			for _, msg := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
			}
			return nil
		}),
	}

	cmd.Flags().StringSliceVar(&currencies, "currencies", nil, "quote currencies (default MARKET_CURRENCIES)")
	return cmd
}
