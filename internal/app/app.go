// Package app wires configuration, storage, market data providers and
// services into one application shared by the HTTP server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/cache"
	"github.com/ndewijer/portfolio-yield-tracker/internal/config"
	"github.com/ndewijer/portfolio-yield-tracker/internal/database"
	"github.com/ndewijer/portfolio-yield-tracker/internal/fx"
	"github.com/ndewijer/portfolio-yield-tracker/internal/logging"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
	"github.com/ndewijer/portfolio-yield-tracker/internal/scheduler"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
	"github.com/ndewijer/portfolio-yield-tracker/internal/yahoo"
)

// refreshTimeout bounds one scheduled market data refresh.
const refreshTimeout = 10 * time.Minute

// App holds the wired services. Close releases the database.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	DB     *sql.DB

	System       *service.SystemService
	Accounts     *service.AccountService
	Transactions *service.TransactionService
	Market       *service.MarketDataService
	Analysis     *service.AnalysisService
	Secrets      *service.SecretService
}

// New opens and migrates the database and builds every service.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	db, err := database.OpenAndMigrate(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a, err := newApp(db, cfg, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func newApp(db *sql.DB, cfg *config.Config, log zerolog.Logger) (*App, error) {
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	marketRepo := repository.NewMarketRepository(db)

	secrets, err := service.NewSecretService(repository.NewSecretRepository(db), cfg.Security.SecretKey)
	if err != nil {
		return nil, err
	}

	market := service.NewMarketDataService(
		db,
		marketRepo,
		transactionRepo,
		marketProviders(secrets),
		cache.New(cfg.Market.CacheTTL),
		cfg.Market.Offline,
		logging.Component(log, "market"),
	)

	return &App{
		Config:       cfg,
		Log:          log,
		DB:           db,
		System:       service.NewSystemService(db),
		Accounts:     service.NewAccountService(accountRepo),
		Transactions: service.NewTransactionService(db, transactionRepo, accountRepo),
		Market:       market,
		Analysis: service.NewAnalysisService(
			transactionRepo,
			accountRepo,
			market,
			cfg.Analysis.Options,
			cfg.Market.BaseCurrency,
			logging.Component(log, "analysis"),
		),
		Secrets: secrets,
	}, nil
}

// marketProviders uses Yahoo Finance for everything. When the secret store
// is enabled apilayer is tried first for exchange rates.
func marketProviders(secrets *service.SecretService) service.MarketProviders {
	y := yahoo.NewFinanceClient()
	providers := service.MarketProviders{
		Prices:    y,
		Dividends: y,
		Rates:     []service.ExchangeRateProvider{y},
	}
	if secrets.Enabled() {
		apilayer := fx.NewClient("", func(ctx context.Context) (string, error) {
			key, err := secrets.Get(ctx, fx.SecretName)
			if errors.Is(err, apperrors.ErrSecretNotFound) {
				return "", nil
			}
			return key, err
		})
		providers.Rates = append([]service.ExchangeRateProvider{apilayer}, providers.Rates...)
	}
	return providers
}

// Router returns the HTTP handler serving the API.
func (a *App) Router() http.Handler {
	return api.NewRouter(api.Services{
		System:      a.System,
		Account:     a.Accounts,
		Transaction: a.Transactions,
		Analysis:    a.Analysis,
		Market:      a.Market,
	}, a.Config, logging.Component(a.Log, "http"))
}

// RefreshJob is the job that refreshes market data for the configured currencies.
func (a *App) RefreshJob() *scheduler.MarketRefreshJob {
	return &scheduler.MarketRefreshJob{
		Market:     a.Market,
		Base:       a.Config.Market.BaseCurrency,
		Currencies: a.Config.Market.Currencies,
		Log:        logging.Component(a.Log, "market"),
	}
}

// Scheduler returns a scheduler with the refresh job registered, or nil when
// market data is offline or no schedule is configured.
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	schedule := a.Config.Market.RefreshSchedule
	if a.Config.Market.Offline || schedule == "" {
		return nil, nil
	}
	s := scheduler.New(a.Log, refreshTimeout)
	if err := s.AddJob(schedule, a.RefreshJob()); err != nil {
		return nil, fmt.Errorf("register refresh job: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (a *App) Close() error {
	return a.DB.Close()
}
