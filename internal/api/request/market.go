package request

// SetPriceRequest is the request body for storing a manual quote.
type SetPriceRequest struct {
	Date   string `json:"date"`   // Date is the quote date in YYYY-MM-DD format.
	Symbol string `json:"symbol"` // Symbol is the ticker, e.g. "VTI".
	Price  string `json:"price"`  // Price is the adjusted close as a decimal string.
}

// SetExchangeRateRequest is the request body for storing a manual exchange rate.
type SetExchangeRateRequest struct {
	Date         string `json:"date"`         // Date is the exchange rate date in YYYY-MM-DD format.
	FromCurrency string `json:"fromCurrency"` // FromCurrency is the source currency code (e.g. "USD").
	ToCurrency   string `json:"toCurrency"`   // ToCurrency is the target currency code (e.g. "EUR").
	Rate         string `json:"rate"`         // Rate is the number of ToCurrency units per FromCurrency unit.
}
