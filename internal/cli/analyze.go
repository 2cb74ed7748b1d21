package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-yield-tracker/internal/app"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

func newAnalyzeCommand(s *state) *cobra.Command {
	var (
		currency      string
		now           string
		tax           string
		skipDividends bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [account]",
		Short: "Report value and yields for every account or one account",
		Example: `  tracker analyze
  tracker analyze brokerage --currency EUR --now 2024-12-31
  tracker analyze --tax 0.15 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: s.run(func(cmd *cobra.Command, args []string, a *app.App) error {
			skip := ""
			if skipDividends {
				skip = "true"
			}
			q, err := request.ParseAnalysisQuery(currency, now, tax, skip)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				report, err := a.Analysis.AnalyzeAccount(cmd.Context(), args[0], q)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, response.NewAccountAnalysisResponse(report))
				}
				fmt.Fprintf(out, "Account %s as of %s (%s)\n", report.AccountID, report.AsOf.Format(model.DateFormat), report.Currency)
				table := newTable(out, summaryHeader)
				table.Append(summaryRow(report.AccountID, report.Snapshot))
				table.Render()
				renderHoldings(out, report.Snapshot)
				warnMissing(cmd, report.Snapshot.MissingPrices)
				return nil
			}

			report, err := a.Analysis.AnalyzePortfolio(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, response.NewPortfolioResponse(report))
			}
			fmt.Fprintf(out, "Portfolio as of %s (%s)\n", report.AsOf.Format(model.DateFormat), report.Currency)
			renderPortfolio(out, report.Portfolio)
			warnMissing(cmd, report.Portfolio.Total().MissingPrices)
			return nil
		}),
	}

	cmd.Flags().StringVar(&currency, "currency", "", "display currency (default: base currency)")
	cmd.Flags().StringVar(&now, "now", "", "evaluation date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&tax, "tax", "", "dividend withholding rate in [0, 1)")
	cmd.Flags().BoolVar(&skipDividends, "skip-dividends", false, "ignore dividend history")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

func warnMissing(cmd *cobra.Command, symbols []string) {
	if len(symbols) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no price for %v\n", symbols)
	}
}
