package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/handlers"
	custommiddleware "github.com/ndewijer/portfolio-yield-tracker/internal/api/middleware"
	"github.com/ndewijer/portfolio-yield-tracker/internal/config"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
)

// Services are the dependencies the HTTP layer delegates to.
type Services struct {
	System      *service.SystemService
	Account     *service.AccountService
	Transaction *service.TransactionService
	Analysis    *service.AnalysisService
	Market      *service.MarketDataService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(svc.Account)
			r.Get("/", accountHandler.Accounts)
			r.Post("/", accountHandler.CreateAccount)

			r.Route("/{accountId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateAccountIDMiddleware)
				r.Get("/", accountHandler.GetAccount)
				r.Put("/", accountHandler.UpdateAccount)
				r.Delete("/", accountHandler.DeleteAccount)
			})
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
			r.Get("/", transactionHandler.Transactions)
			r.Post("/", transactionHandler.CreateTransaction)
			r.Get("/export", transactionHandler.ExportCSV)
			r.Post("/import", transactionHandler.ImportCSV)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
				r.Put("/", transactionHandler.UpdateTransaction)
				r.Delete("/", transactionHandler.DeleteTransaction)
			})
		})

		r.Route("/analysis", func(r chi.Router) {
			analysisHandler := handlers.NewAnalysisHandler(svc.Analysis)
			r.Get("/", analysisHandler.Portfolio)
			r.With(custommiddleware.ValidateAccountIDMiddleware).Get("/{accountId}", analysisHandler.Account)
		})

		r.Route("/market", func(r chi.Router) {
			marketHandler := handlers.NewMarketHandler(svc.Market, cfg.Market.BaseCurrency, cfg.Market.Currencies)
			r.Get("/prices", marketHandler.Prices)
			r.Get("/rate", marketHandler.Rate)

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.APIKey(cfg.Security.InternalAPIKey))
				r.Post("/refresh", marketHandler.Refresh)
				r.Put("/price", marketHandler.SetPrice)
				r.Put("/rate", marketHandler.SetExchangeRate)
			})
		})
	})

	return r
}
