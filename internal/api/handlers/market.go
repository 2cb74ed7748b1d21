package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
	"github.com/ndewijer/portfolio-yield-tracker/internal/validation"
)

// MarketHandler exposes stored market data and the manual refresh.
type MarketHandler struct {
	market       *service.MarketDataService
	baseCurrency string
	currencies   []string
}

// NewMarketHandler creates a MarketHandler. currencies are the quote
// currencies refreshed when a request names none.
func NewMarketHandler(market *service.MarketDataService, baseCurrency string, currencies []string) *MarketHandler {
	return &MarketHandler{
		market:       market,
		baseCurrency: strings.ToUpper(baseCurrency),
		currencies:   currencies,
	}
}

// splitList parses a comma separated query value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Refresh handles POST requests to pull fresh prices, dividends and rates.
// Provider failures are reported in the result body, not as an error status.
//
// Endpoint: POST /api/market/refresh
// Query Parameters:
//   - currencies: comma separated quote currencies (default: configured list)
//
// Response: 200 OK with RefreshResult
// Error: 503 Service Unavailable when market data is offline
// Error: 500 Internal Server Error if storing the data fails
func (h *MarketHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	currencies := h.currencies
	if v := r.URL.Query().Get("currencies"); v != "" {
		currencies = splitList(strings.ToUpper(v))
	}

	result, err := h.market.Refresh(r.Context(), h.baseCurrency, currencies...)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRefreshMarketData.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Prices handles GET requests for the latest known price of symbols.
// Symbols without any price are left out.
//
// Endpoint: GET /api/market/prices?symbols=VTI,BND
// Response: 200 OK with array of PriceResponse sorted by symbol
// Error: 400 Bad Request if symbols is missing
func (h *MarketHandler) Prices(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	for _, s := range splitList(r.URL.Query().Get("symbols")) {
		symbols = append(symbols, model.NormalizeSymbol(s))
	}
	if len(symbols) == 0 {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", "symbols is required")
		return
	}

	prices, err := h.market.LatestPrices(r.Context(), symbols)
	if err != nil {
		respondServiceError(w, "failed to retrieve prices", err)
		return
	}

	out := make([]response.PriceResponse, 0, len(prices))
	for _, p := range prices {
		out = append(out, response.NewPriceResponse(p))
	}
	slices.SortFunc(out, func(a, b response.PriceResponse) int {
		return strings.Compare(a.Symbol, b.Symbol)
	})

	response.RespondJSON(w, http.StatusOK, out)
}

// RateResponse is the body of the exchange rate endpoint.
type RateResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
}

// Rate handles GET requests for an exchange rate.
//
// Endpoint: GET /api/market/rate?from=USD&to=EUR
// Query Parameters:
//   - from: defaults to the base currency
//   - to: required
//
// Response: 200 OK with RateResponse
// Error: 422 Unprocessable Entity if no rate is known
func (h *MarketHandler) Rate(w http.ResponseWriter, r *http.Request) {
	from := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("from")))
	to := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("to")))
	if from == "" {
		from = h.baseCurrency
	}
	if len(from) != 3 || len(to) != 3 {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", apperrors.ErrInvalidCurrency.Error())
		return
	}

	rate, err := h.market.ExchangeRate(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, "failed to retrieve exchange rate", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, RateResponse{From: from, To: to, Rate: rate.String()})
}

// SetPrice handles PUT requests storing a manual quote. Stored quotes are
// what analyses use when the providers are offline or fail.
//
// Endpoint: PUT /api/market/price
// Request Body: SetPriceRequest
// Response: 200 OK with PriceResponse
// Error: 400 Bad Request if validation fails
func (h *MarketHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetPriceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetPrice(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, _ := model.ParseDate(req.Date)
	price := decimal.RequireFromString(strings.TrimSpace(req.Price))
	p := model.SymbolPrice{
		Symbol:   model.NormalizeSymbol(req.Symbol),
		Date:     date,
		Close:    price,
		AdjClose: price,
	}
	if err := h.market.SetPrice(r.Context(), p); err != nil {
		respondServiceError(w, "failed to store price", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, response.NewPriceResponse(p))
}

// SetExchangeRate handles PUT requests storing a manual exchange rate.
//
// Endpoint: PUT /api/market/rate
// Request Body: SetExchangeRateRequest
// Response: 200 OK with RateResponse
// Error: 400 Bad Request if validation fails
func (h *MarketHandler) SetExchangeRate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetExchangeRateRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetExchangeRate(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, _ := model.ParseDate(req.Date)
	rate := model.ExchangeRate{
		Base:  strings.ToUpper(strings.TrimSpace(req.FromCurrency)),
		Quote: strings.ToUpper(strings.TrimSpace(req.ToCurrency)),
		Rate:  decimal.RequireFromString(strings.TrimSpace(req.Rate)),
		Date:  date,
	}
	if err := h.market.SetExchangeRate(r.Context(), rate); err != nil {
		respondServiceError(w, "failed to store exchange rate", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, RateResponse{From: rate.Base, To: rate.Quote, Rate: rate.Rate.String()})
}
