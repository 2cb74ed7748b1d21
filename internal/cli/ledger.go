package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-yield-tracker/internal/app"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
)

func newImportCommand(s *state) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import transactions from a CSV file",
		Long: `Import reads a CSV with the header
account_id,symbol,date,type,quantity,price_per_share
and stores every row, or none if any row is invalid. Use - for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: s.run(func(cmd *cobra.Command, args []string, a *app.App) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			result, err := a.Transactions.ImportCSV(cmd.Context(), in, account)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions\n", result.Transactions)
			if len(result.CreatedAccounts) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Created accounts: %s\n", strings.Join(result.CreatedAccounts, ", "))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&account, "account", "", "account for rows without account_id (default \"default\")")
	return cmd
}

func newExportCommand(s *state) *cobra.Command {
	var (
		account  string
		symbol   string
		from, to string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, _ []string, a *app.App) error {
			filter := repository.TransactionFilter{
				AccountID: account,
				Symbol:    model.NormalizeSymbol(symbol),
			}
			var err error
			if from != "" {
				if filter.From, err = model.ParseDate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if filter.To, err = model.ParseDate(to); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return a.Transactions.ExportCSV(cmd.Context(), out, filter)
		}),
	}

	cmd.Flags().StringVar(&account, "account", "", "only this account")
	cmd.Flags().StringVar(&symbol, "symbol", "", "only this symbol")
	cmd.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date YYYY-MM-DD")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
