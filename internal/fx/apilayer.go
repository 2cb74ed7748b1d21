// Package fx fetches exchange rates from the apilayer exchangerates_data API.
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// DefaultBaseURL is the apilayer endpoint.
const DefaultBaseURL = "https://api.apilayer.com/exchangerates_data"

// SecretName is the secret store entry holding the apilayer key.
const SecretName = "exchangerates_key"

// ErrNoKey is returned when no API key is configured.
var ErrNoKey = errors.New("apilayer: no api key")

// KeyFunc resolves the API key at request time so a rotated secret is picked up.
type KeyFunc func(ctx context.Context) (string, error)

// Client is an exchange-rate provider backed by apilayer.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        KeyFunc
}

// NewClient returns a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, key KeyFunc) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
	}
}

type latestResponse struct {
	Success bool               `json:"success"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
	Error   *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Rate returns how many to-units one from-unit buys.
func (c *Client) Rate(ctx context.Context, from, to string) (model.ExchangeRate, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return model.ExchangeRate{Base: from, Quote: to, Rate: decimal.NewFromInt(1), Date: model.Day(time.Now())}, nil
	}

	key, err := c.key(ctx)
	if err != nil {
		return model.ExchangeRate{}, fmt.Errorf("apilayer key: %w", err)
	}
	if key == "" {
		return model.ExchangeRate{}, ErrNoKey
	}

	endpoint := c.baseURL + "/latest?" + url.Values{"base": {from}, "symbols": {to}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.ExchangeRate{}, err
	}
	req.Header.Set("apikey", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.ExchangeRate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.ExchangeRate{}, fmt.Errorf("apilayer http %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.ExchangeRate{}, fmt.Errorf("apilayer decode: %w", err)
	}
	if body.Error != nil {
		return model.ExchangeRate{}, fmt.Errorf("apilayer error %d: %s", body.Error.Code, body.Error.Info)
	}

	rate, ok := body.Rates[to]
	if !ok || rate <= 0 {
		return model.ExchangeRate{}, fmt.Errorf("apilayer: no %s/%s rate", from, to)
	}

	date := model.Day(time.Now())
	if d, err := model.ParseDate(body.Date); err == nil {
		date = d
	}

	return model.ExchangeRate{
		Base:      from,
		Quote:     to,
		Rate:      decimal.NewFromFloat(rate),
		Date:      date,
		UpdatedAt: time.Now().UTC(),
	}, nil
}
