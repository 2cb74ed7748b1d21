package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-yield-tracker/internal/app"
	"github.com/ndewijer/portfolio-yield-tracker/internal/fx"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
)

func newSecretCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage encrypted provider credentials",
		Long: fmt.Sprintf(`Secrets are encrypted with SECRET_KEY before they are stored.
The apilayer exchange rate key is stored as %q.`, fx.SecretName),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "generate",
			Short: "Print a new SECRET_KEY",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				key, err := service.GenerateSecretKey()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set NAME [VALUE]",
			Short: "Store a secret; the value is read from stdin when omitted",
			Args:  cobra.RangeArgs(1, 2),
			RunE: s.run(func(cmd *cobra.Command, args []string, a *app.App) error {
				value := ""
				if len(args) == 2 {
					value = args[1]
				} else {
					line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if err != nil && line == "" {
						return fmt.Errorf("read secret from stdin: %w", err)
					}
					value = strings.TrimSpace(line)
				}
				if value == "" {
					return errors.New("secret value is empty")
				}
				if err := a.Secrets.Set(cmd.Context(), args[0], value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored secret %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Remove a secret",
			Args:  cobra.ExactArgs(1),
			RunE: s.run(func(cmd *cobra.Command, args []string, a *app.App) error {
				if err := a.Secrets.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret %s\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}
