// Package cli implements the tracker command line tool.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-yield-tracker/internal/app"
	"github.com/ndewijer/portfolio-yield-tracker/internal/config"
	"github.com/ndewijer/portfolio-yield-tracker/internal/logging"
	"github.com/ndewijer/portfolio-yield-tracker/internal/version"
)

// Options configure NewRootCommand.
type Options struct {
	// LoadConfig defaults to config.Load.
	LoadConfig func() (*config.Config, error)
}

type state struct {
	opts    Options
	dbPath  string
	offline bool
	verbose bool
}

// NewRootCommand builds the tracker command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	s := &state{opts: opts}

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Portfolio valuation and yield reports",
		Long:          `tracker replays an account ledger against market data and reports invested capital, value, gains and Modified Dietz, annualized and simple yields.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&s.dbPath, "db", "", "database path (overrides DB_PATH)")
	root.PersistentFlags().BoolVar(&s.offline, "offline", false, "use stored market data only")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newAnalyzeCommand(s),
		newImportCommand(s),
		newExportCommand(s),
		newRefreshCommand(s),
		newSecretCommand(s),
	)
	return root
}

// run opens the application for the duration of fn.
func (s *state) run(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := s.open(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

func (s *state) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := s.opts.LoadConfig()
	if err != nil {
		return nil, err
	}
	if s.dbPath != "" {
		cfg.Database.Path = s.dbPath
	}
	if s.offline {
		cfg.Market.Offline = true
	}

	// Info logs would interleave with table output.
	level := cfg.Log.Level
	if s.verbose {
		level = "debug"
	} else if level == "info" {
		level = "warn"
	}
	log := logging.New(logging.Config{Level: level, Pretty: true, Output: cmd.ErrOrStderr()})

	return app.New(cmd.Context(), cfg, log)
}
