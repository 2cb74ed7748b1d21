package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/cache"
	"github.com/ndewijer/portfolio-yield-tracker/internal/database"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
)

// dividendHistoryStart is the lower bound of every dividend history request.
var dividendHistoryStart = time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)

// MarketProviders groups the remote sources of market data.
// Any of them may be nil; Rates are tried in order.
type MarketProviders struct {
	Prices    PriceProvider
	Dividends DividendProvider
	Rates     []ExchangeRateProvider
}

// MarketDataService resolves prices, dividends and exchange rates.
// Lookups go cache first, then the providers, then the last stored values,
// so an analysis still runs when the providers are down or disabled.
type MarketDataService struct {
	db              *sql.DB
	marketRepo      *repository.MarketRepository
	transactionRepo *repository.TransactionRepository
	providers       MarketProviders
	cache           *cache.Store
	offline         bool
	log             zerolog.Logger
	now             func() time.Time
}

// NewMarketDataService creates a MarketDataService. When offline is true the
// providers are never called and only stored values are used.
func NewMarketDataService(
	db *sql.DB,
	marketRepo *repository.MarketRepository,
	transactionRepo *repository.TransactionRepository,
	providers MarketProviders,
	store *cache.Store,
	offline bool,
	logger zerolog.Logger,
) *MarketDataService {
	if store == nil {
		store = cache.New(0)
	}
	return &MarketDataService{
		db:              db,
		marketRepo:      marketRepo,
		transactionRepo: transactionRepo,
		providers:       providers,
		cache:           store,
		offline:         offline,
		log:             logger,
		now:             time.Now,
	}
}

// LatestPrices returns the latest known price per symbol. Symbols with no
// price anywhere are absent from the map.
func (s *MarketDataService) LatestPrices(ctx context.Context, symbols []string) (map[string]model.SymbolPrice, error) {
	out := make(map[string]model.SymbolPrice, len(symbols))
	var pending []string
	for _, symbol := range symbols {
		if v, ok := s.cache.Get(priceKey(symbol)); ok {
			out[symbol] = v.(model.SymbolPrice)
			continue
		}
		pending = append(pending, symbol)
	}

	if len(pending) > 0 && !s.offline && s.providers.Prices != nil {
		fetched, err := s.providers.Prices.LatestPrices(ctx, pending)
		if err != nil {
			s.log.Warn().Err(err).Int("symbols", len(pending)).Msg("price provider returned errors")
		}
		for symbol, p := range fetched {
			if err := s.marketRepo.UpsertPrice(ctx, p); err != nil {
				s.log.Error().Err(err).Str("symbol", symbol).Msg("failed to store price")
			}
			s.cache.Set(priceKey(symbol), p)
			out[symbol] = p
		}
		pending = slices.DeleteFunc(pending, func(symbol string) bool {
			_, ok := fetched[symbol]
			return ok
		})
	}

	if len(pending) > 0 {
		stored, err := s.marketRepo.GetLatestPrices(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored prices: %w", err)
		}
		for symbol, p := range stored {
			out[symbol] = p
		}
	}
	return out, nil
}

// PriceMap returns LatestPrices reduced to adjusted closes, the form the
// analyzer consumes.
func (s *MarketDataService) PriceMap(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	prices, err := s.LatestPrices(ctx, symbols)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(prices))
	for symbol, p := range prices {
		price := p.AdjClose
		if price.IsZero() {
			price = p.Close
		}
		out[symbol] = price
	}
	return out, nil
}

// Dividends returns the per-share dividend history of every symbol as
// dividend transactions ordered by date.
func (s *MarketDataService) Dividends(ctx context.Context, symbols []string) (map[string][]model.Transaction, error) {
	events := make(map[string][]model.DividendEvent, len(symbols))
	var pending []string
	for _, symbol := range symbols {
		if v, ok := s.cache.Get(dividendKey(symbol)); ok {
			events[symbol] = v.([]model.DividendEvent)
			continue
		}
		pending = append(pending, symbol)
	}

	if len(pending) > 0 && !s.offline && s.providers.Dividends != nil {
		fetched, err := s.providers.Dividends.Dividends(ctx, pending, dividendHistoryStart, s.now())
		if err != nil {
			s.log.Warn().Err(err).Int("symbols", len(pending)).Msg("dividend provider returned errors")
		}
		for symbol, list := range fetched {
			if err := s.marketRepo.ReplaceDividends(ctx, symbol, list); err != nil {
				s.log.Error().Err(err).Str("symbol", symbol).Msg("failed to store dividends")
			}
			s.cache.Set(dividendKey(symbol), list)
			events[symbol] = list
		}
		pending = slices.DeleteFunc(pending, func(symbol string) bool {
			_, ok := fetched[symbol]
			return ok
		})
	}

	if len(pending) > 0 {
		stored, err := s.marketRepo.GetDividends(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored dividends: %w", err)
		}
		for symbol, list := range stored {
			events[symbol] = list
		}
	}

	out := make(map[string][]model.Transaction, len(events))
	for symbol, list := range events {
		txs := make([]model.Transaction, 0, len(list))
		for _, e := range list {
			txs = append(txs, e.Transaction())
		}
		out[symbol] = txs
	}
	return out, nil
}

// providerRate asks each rate provider in turn and stores the first answer.
func (s *MarketDataService) providerRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if s.offline {
		return decimal.Zero, apperrors.ErrMarketDataOffline
	}
	for _, provider := range s.providers.Rates {
		rate, err := provider.Rate(ctx, from, to)
		if err != nil {
			s.log.Warn().Err(err).Str("from", from).Str("to", to).Msg("exchange rate provider failed")
			continue
		}
		if err := s.marketRepo.UpsertExchangeRate(ctx, rate); err != nil {
			s.log.Error().Err(err).Str("from", from).Str("to", to).Msg("failed to store exchange rate")
		}
		return rate.Rate, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s/%s", apperrors.ErrExchangeRateNotFound, from, to)
}

// ExchangeRate returns how many to-units one from-unit buys. Stored rates
// are used when every provider fails; a stored inverse rate is inverted.
func (s *MarketDataService) ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	rate, err := cache.Remember(s.cache, rateKey(from, to), func() (decimal.Decimal, error) {
		return s.providerRate(ctx, from, to)
	})
	if err == nil {
		return rate, nil
	}

	stored, err := s.marketRepo.GetLatestExchangeRate(ctx, from, to)
	if err == nil {
		return stored.Rate, nil
	}
	if !errors.Is(err, apperrors.ErrExchangeRateNotFound) {
		return decimal.Zero, err
	}

	inverse, err := s.marketRepo.GetLatestExchangeRate(ctx, to, from)
	if err != nil {
		if errors.Is(err, apperrors.ErrExchangeRateNotFound) {
			return decimal.Zero, fmt.Errorf("%w: %s/%s", apperrors.ErrExchangeRateNotFound, from, to)
		}
		return decimal.Zero, err
	}
	if inverse.Rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", apperrors.ErrExchangeRateNotFound, from, to)
	}
	return decimal.NewFromInt(1).DivRound(inverse.Rate, 12), nil
}

// SetPrice stores a manually entered quote and drops the cached one.
func (s *MarketDataService) SetPrice(ctx context.Context, p model.SymbolPrice) error {
	p.Symbol = model.NormalizeSymbol(p.Symbol)
	if p.AdjClose.IsZero() {
		p.AdjClose = p.Close
	}
	p.UpdatedAt = s.now().UTC().Truncate(time.Second)
	if err := s.marketRepo.UpsertPrice(ctx, p); err != nil {
		return err
	}
	s.cache.Delete(priceKey(p.Symbol))
	return nil
}

// SetExchangeRate stores a manually entered rate and drops cached rates for
// the pair in both directions.
func (s *MarketDataService) SetExchangeRate(ctx context.Context, r model.ExchangeRate) error {
	r.Base = strings.ToUpper(strings.TrimSpace(r.Base))
	r.Quote = strings.ToUpper(strings.TrimSpace(r.Quote))
	r.UpdatedAt = s.now().UTC().Truncate(time.Second)
	if err := s.marketRepo.UpsertExchangeRate(ctx, r); err != nil {
		return err
	}
	s.cache.Delete(rateKey(r.Base, r.Quote))
	s.cache.Delete(rateKey(r.Quote, r.Base))
	return nil
}

// RefreshResult summarises one Refresh run.
type RefreshResult struct {
	Symbols   int           `json:"symbols"`
	Prices    int           `json:"prices"`
	Dividends int           `json:"dividends"`
	Rates     int           `json:"rates"`
	Errors    []string      `json:"errors,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Refresh pulls fresh market data for every traded symbol and the given
// currency pairs (base to each of currencies) and stores it in one database
// transaction. Provider failures are collected in the result; only a storage
// failure fails the refresh.
func (s *MarketDataService) Refresh(ctx context.Context, base string, currencies ...string) (RefreshResult, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	start := s.now()
	if s.offline {
		return RefreshResult{}, apperrors.ErrMarketDataOffline
	}

	symbols, err := s.transactionRepo.GetSymbols(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshMarketData, err)
	}
	s.log.Info().Int("symbols", len(symbols)).Msg("starting market data refresh")
	s.cache.Flush()

	var (
		mu        sync.Mutex
		errs      []string
		prices    map[string]model.SymbolPrice
		dividends map[string][]model.DividendEvent
		rates     []model.ExchangeRate
	)
	record := func(what string, err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, fmt.Sprintf("%s: %v", what, err))
	}

	var g errgroup.Group
	if s.providers.Prices != nil && len(symbols) > 0 {
		g.Go(func() error {
			p, err := s.providers.Prices.LatestPrices(ctx, symbols)
			if err != nil {
				record("prices", err)
			}
			prices = p
			return nil
		})
	}
	if s.providers.Dividends != nil && len(symbols) > 0 {
		g.Go(func() error {
			d, err := s.providers.Dividends.Dividends(ctx, symbols, dividendHistoryStart, s.now())
			if err != nil {
				record("dividends", err)
			}
			dividends = d
			return nil
		})
	}
	for _, quote := range currencies {
		quote = strings.ToUpper(strings.TrimSpace(quote))
		if quote == "" || strings.EqualFold(quote, base) {
			continue
		}
		g.Go(func() error {
			for _, provider := range s.providers.Rates {
				rate, err := provider.Rate(ctx, base, quote)
				if err != nil {
					record("rate "+base+"/"+quote, err)
					continue
				}
				mu.Lock()
				rates = append(rates, rate)
				mu.Unlock()
				return nil
			}
			return nil
		})
	}
	_ = g.Wait()

	err = database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.marketRepo.WithTx(tx)
		for _, p := range prices {
			if err := repo.UpsertPrice(ctx, p); err != nil {
				return err
			}
		}
		for symbol, list := range dividends {
			if err := repo.ReplaceDividends(ctx, symbol, list); err != nil {
				return err
			}
		}
		for _, r := range rates {
			if err := repo.UpsertExchangeRate(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return RefreshResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshMarketData, err)
	}

	result := RefreshResult{
		Symbols:   len(symbols),
		Prices:    len(prices),
		Dividends: len(dividends),
		Rates:     len(rates),
		Errors:    errs,
		Duration:  s.now().Sub(start),
	}
	s.log.Info().
		Int("prices", result.Prices).
		Int("dividends", result.Dividends).
		Int("rates", result.Rates).
		Int("errors", len(errs)).
		Dur("duration", result.Duration).
		Msg("market data refresh completed")
	return result, nil
}

func priceKey(symbol string) string    { return "price:" + symbol }
func dividendKey(symbol string) string { return "div:" + symbol }
func rateKey(from, to string) string   { return "fx:" + from + ":" + to }
