// Package yahoo fetches quotes, dividend history and exchange rates from the
// Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// DefaultBaseURL is the public chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrNoResult is returned when Yahoo answers without data for a symbol.
var ErrNoResult = errors.New("yahoo: no result")

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It satisfies the price, dividend and exchange-rate providers used by the
// market data service.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
	// parallel bounds concurrent symbol requests.
	parallel int
}

// Option configures a FinanceClient.
type Option func(*FinanceClient)

// WithBaseURL points the client at another host, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(c *FinanceClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *FinanceClient) { c.httpClient = h }
}

// NewFinanceClient creates a new Yahoo Finance client with default HTTP settings.
func NewFinanceClient(opts ...Option) *FinanceClient {
	c := &FinanceClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		parallel:   4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestPrices fetches the most recent quote for every symbol.
// Symbols that fail are left out of the result and reported together in the error,
// so callers can use the partial map.
func (c *FinanceClient) LatestPrices(ctx context.Context, symbols []string) (map[string]model.SymbolPrice, error) {
	out := make(map[string]model.SymbolPrice, len(symbols))
	var mu sync.Mutex
	var errs []error

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for _, symbol := range symbols {
		g.Go(func() error {
			q, err := c.Quote(ctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
				return nil
			}
			out[symbol] = model.SymbolPrice{
				Symbol:    symbol,
				Date:      model.Day(q.Date),
				Close:     decimal.NewFromFloat(q.Close),
				AdjClose:  decimal.NewFromFloat(q.AdjClose),
				Currency:  q.Currency,
				UpdatedAt: time.Now().UTC(),
			}
			return nil
		})
	}
	_ = g.Wait()

	return out, errors.Join(errs...)
}

// Quote fetches the last five sessions of symbol and returns the latest price.
func (c *FinanceClient) Quote(ctx context.Context, symbol string) (Quote, error) {
	resp, err := c.chart(ctx, symbol, url.Values{"interval": {"1d"}, "range": {"5d"}})
	if err != nil {
		return Quote{}, err
	}
	return ParseQuote(resp)
}

// ParseQuote extracts the latest close and adjusted close from a chart response.
// The last non-null session wins; the meta market price is the fallback.
func ParseQuote(resp Response) (Quote, error) {
	if len(resp.Chart.Result) == 0 {
		return Quote{}, ErrNoResult
	}
	r := resp.Chart.Result[0]
	q := Quote{Symbol: r.Meta.Symbol, Currency: r.Meta.Currency}

	var closes, adj []*float64
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	for i := len(r.Timestamp) - 1; i >= 0; i-- {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		q.Date = time.Unix(r.Timestamp[i], 0).UTC()
		q.Close = *closes[i]
		q.AdjClose = q.Close
		if i < len(adj) && adj[i] != nil && *adj[i] > 0 {
			q.AdjClose = *adj[i]
		}
		return q, nil
	}

	if r.Meta.RegularMarketPrice > 0 {
		q.Date = time.Unix(r.Meta.RegularMarketTime, 0).UTC()
		q.Close = r.Meta.RegularMarketPrice
		q.AdjClose = r.Meta.RegularMarketPrice
		return q, nil
	}
	return Quote{}, fmt.Errorf("%w: no price for %s", ErrNoResult, r.Meta.Symbol)
}

// Dividends fetches the dividend history of every symbol between from and to.
// Failed symbols are reported in the joined error as in LatestPrices.
func (c *FinanceClient) Dividends(ctx context.Context, symbols []string, from, to time.Time) (map[string][]model.DividendEvent, error) {
	out := make(map[string][]model.DividendEvent, len(symbols))
	var mu sync.Mutex
	var errs []error

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for _, symbol := range symbols {
		g.Go(func() error {
			resp, err := c.chart(ctx, symbol, url.Values{
				"interval": {"1d"},
				"period1":  {fmt.Sprint(from.Unix())},
				"period2":  {fmt.Sprint(to.Unix())},
				"events":   {"div"},
			})
			var events []model.DividendEvent
			if err == nil {
				events, err = ParseDividends(symbol, resp)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
				return nil
			}
			out[symbol] = events
			return nil
		})
	}
	_ = g.Wait()

	return out, errors.Join(errs...)
}

// ParseDividends converts the events block of a chart response into
// dividend events ordered by ex-date.
func ParseDividends(symbol string, resp Response) ([]model.DividendEvent, error) {
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoResult
	}
	raw := resp.Chart.Result[0].Events.Dividends

	events := make([]model.DividendEvent, 0, len(raw))
	for _, d := range raw {
		if d.Amount <= 0 {
			continue
		}
		events = append(events, model.DividendEvent{
			Symbol: symbol,
			ExDate: model.Day(time.Unix(d.Date, 0)),
			Amount: decimal.NewFromFloat(d.Amount),
		})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ExDate.Before(events[j].ExDate) })
	return events, nil
}

// Rate returns how many to-units one from-unit buys, using the FROMTO=X pair.
func (c *FinanceClient) Rate(ctx context.Context, from, to string) (model.ExchangeRate, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return model.ExchangeRate{Base: from, Quote: to, Rate: decimal.NewFromInt(1), Date: model.Day(time.Now())}, nil
	}

	resp, err := c.chart(ctx, from+to+"=X", url.Values{"interval": {"1d"}, "range": {"5d"}})
	if err != nil {
		return model.ExchangeRate{}, err
	}
	q, err := ParseQuote(resp)
	if err != nil {
		return model.ExchangeRate{}, fmt.Errorf("fx %s/%s: %w", from, to, err)
	}

	return model.ExchangeRate{
		Base:      from,
		Quote:     to,
		Rate:      decimal.NewFromFloat(q.Close),
		Date:      model.Day(q.Date),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// chart executes a chart API request and decodes the response.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) chart(ctx context.Context, symbol string, params url.Values) (Response, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return Response{}, fmt.Errorf("yahoo http %d: %w", resp.StatusCode, err)
	}
	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %w", response.Chart.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return response, fmt.Errorf("yahoo http %d", resp.StatusCode)
	}
	return response, nil
}
