package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
)

// MockMarketProvider is an in-memory price, dividend and exchange-rate provider.
// Symbols without a configured price fail, like an unknown ticker would.
//
// Example usage:
//
//	provider := testutil.NewMockMarketProvider().
//	    WithPrice("VTI", "250").
//	    WithDividend("VTI", testutil.Date(t, "2020-06-30"), "0.5").
//	    WithRate("USD", "EUR", "0.9")
type MockMarketProvider struct {
	mu        sync.Mutex
	prices    map[string]decimal.Decimal
	dividends map[string][]model.DividendEvent
	rates     map[string]decimal.Decimal
	// Err, when set, fails every call.
	Err error
	// Calls counts provider calls by method name.
	Calls map[string]int
}

// NewMockMarketProvider creates an empty provider.
func NewMockMarketProvider() *MockMarketProvider {
	return &MockMarketProvider{
		prices:    make(map[string]decimal.Decimal),
		dividends: make(map[string][]model.DividendEvent),
		rates:     make(map[string]decimal.Decimal),
		Calls:     make(map[string]int),
	}
}

// Providers exposes the mock as every market provider.
func (m *MockMarketProvider) Providers() service.MarketProviders {
	return service.MarketProviders{
		Prices:    m,
		Dividends: m,
		Rates:     []service.ExchangeRateProvider{m},
	}
}

// WithPrice sets the latest close of symbol.
func (m *MockMarketProvider) WithPrice(symbol, price string) *MockMarketProvider {
	m.prices[symbol] = decimal.RequireFromString(price)
	return m
}

// WithDividend adds a per-share dividend for symbol.
func (m *MockMarketProvider) WithDividend(symbol string, exDate time.Time, amount string) *MockMarketProvider {
	m.dividends[symbol] = append(m.dividends[symbol], model.DividendEvent{
		Symbol: symbol,
		ExDate: exDate,
		Amount: decimal.RequireFromString(amount),
	})
	return m
}

// WithRate sets from/to.
func (m *MockMarketProvider) WithRate(from, to, rate string) *MockMarketProvider {
	m.rates[from+to] = decimal.RequireFromString(rate)
	return m
}

// WithError makes every call fail with err.
func (m *MockMarketProvider) WithError(err error) *MockMarketProvider {
	m.Err = err
	return m
}

// CallCount returns how often method was called.
func (m *MockMarketProvider) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

func (m *MockMarketProvider) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[method]++
}

// LatestPrices implements service.PriceProvider.
func (m *MockMarketProvider) LatestPrices(_ context.Context, symbols []string) (map[string]model.SymbolPrice, error) {
	m.record("LatestPrices")
	if m.Err != nil {
		return nil, m.Err
	}

	out := make(map[string]model.SymbolPrice)
	var errs []error
	for _, symbol := range symbols {
		price, ok := m.prices[symbol]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: no price", symbol))
			continue
		}
		out[symbol] = model.SymbolPrice{
			Symbol:    symbol,
			Date:      model.Day(time.Now()),
			Close:     price,
			AdjClose:  price,
			Currency:  "USD",
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
	}
	return out, errors.Join(errs...)
}

// Dividends implements service.DividendProvider.
func (m *MockMarketProvider) Dividends(_ context.Context, symbols []string, from, to time.Time) (map[string][]model.DividendEvent, error) {
	m.record("Dividends")
	if m.Err != nil {
		return nil, m.Err
	}

	out := make(map[string][]model.DividendEvent, len(symbols))
	for _, symbol := range symbols {
		events := []model.DividendEvent{}
		for _, e := range m.dividends[symbol] {
			if !e.ExDate.Before(from) && !e.ExDate.After(to) {
				events = append(events, e)
			}
		}
		out[symbol] = events
	}
	return out, nil
}

// Rate implements service.ExchangeRateProvider.
func (m *MockMarketProvider) Rate(_ context.Context, from, to string) (model.ExchangeRate, error) {
	m.record("Rate")
	if m.Err != nil {
		return model.ExchangeRate{}, m.Err
	}

	from, to = strings.ToUpper(from), strings.ToUpper(to)
	rate, ok := m.rates[from+to]
	if !ok {
		return model.ExchangeRate{}, fmt.Errorf("no rate for %s/%s", from, to)
	}
	return model.ExchangeRate{
		Base:      from,
		Quote:     to,
		Date:      model.Day(time.Now()),
		Rate:      rate,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}, nil
}
