package service

import (
	"context"
	"time"

	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// PriceProvider returns the latest quote per symbol. Implementations may
// return a partial map together with an error describing the misses.
type PriceProvider interface {
	LatestPrices(ctx context.Context, symbols []string) (map[string]model.SymbolPrice, error)
}

// DividendProvider returns per-share dividend history between from and to.
// Partial results follow the same convention as PriceProvider.
type DividendProvider interface {
	Dividends(ctx context.Context, symbols []string, from, to time.Time) (map[string][]model.DividendEvent, error)
}

// ExchangeRateProvider returns how many to-units one from-unit buys.
type ExchangeRateProvider interface {
	Rate(ctx context.Context, from, to string) (model.ExchangeRate, error)
}
