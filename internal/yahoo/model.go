package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata and the latest market price
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Close and adjusted close arrays
//   - Chart.Result[].Events: Dividend events when requested with events=div
//   - Chart.Error: Optional error object from Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart object.
type Chart struct {
	Result []Result    `json:"result"`
	Error  *ChartError `json:"error"`
}

// ChartError is returned by Yahoo for unknown symbols and bad ranges.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *ChartError) Error() string {
	return e.Code + ": " + e.Description
}

// Result holds the data for one symbol.
type Result struct {
	Meta       Meta       `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators Indicators `json:"indicators"`
	Events     Events     `json:"events"`
}

// Meta describes the symbol and its latest trade.
type Meta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	ExchangeName       string  `json:"exchangeName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
}

// Indicators holds the price arrays aligned with Result.Timestamp.
// Entries are pointers because Yahoo sends null for missing sessions.
type Indicators struct {
	Quote []struct {
		Close []*float64 `json:"close"`
	} `json:"quote"`
	AdjClose []struct {
		AdjClose []*float64 `json:"adjclose"`
	} `json:"adjclose"`
}

// Events holds corporate actions keyed by the event's unix timestamp.
type Events struct {
	Dividends map[string]Dividend `json:"dividends"`
}

// Dividend is one per-share cash dividend.
type Dividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

// Quote is the parsed latest price of a symbol.
type Quote struct {
	Symbol   string
	Currency string
	Date     time.Time
	Close    float64
	AdjClose float64
}
