package validation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// ValidateSetExchangeRate validates a manual exchange rate.
func ValidateSetExchangeRate(req request.SetExchangeRateRequest) error {
	errors := make(map[string]string)

	checkDate(errors, req.Date)

	if msg := checkCurrency(req.FromCurrency); msg != "" {
		errors["fromCurrency"] = msg
	}
	if msg := checkCurrency(req.ToCurrency); msg != "" {
		errors["toCurrency"] = msg
	}
	if msg := checkPositive("rate", req.Rate); msg != "" {
		errors["rate"] = msg
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateSetPrice validates a manual quote.
func ValidateSetPrice(req request.SetPriceRequest) error {
	errors := make(map[string]string)

	checkDate(errors, req.Date)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if msg := checkPositive("price", req.Price); msg != "" {
		errors["price"] = msg
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func checkDate(errors map[string]string, date string) {
	if strings.TrimSpace(date) == "" {
		errors["date"] = "date is required"
	} else if _, err := model.ParseDate(date); err != nil {
		errors["date"] = err.Error()
	}
}

func checkCurrency(code string) string {
	code = strings.TrimSpace(code)
	switch {
	case code == "":
		return "currency is required"
	case len(code) != 3:
		return "currency must be a three letter code"
	}
	return ""
}

func checkPositive(field, value string) string {
	if strings.TrimSpace(value) == "" {
		return field + " is required"
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return field + " not a valid number"
	}
	if !d.IsPositive() {
		return field + " must be positive"
	}
	return ""
}
