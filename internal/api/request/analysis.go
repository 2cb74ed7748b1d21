package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// AnalysisQuery holds the optional parameters of an analysis run.
type AnalysisQuery struct {
	// Currency converts money fields; empty keeps the base currency.
	Currency string
	// Now is the evaluation date; zero means today.
	Now time.Time
	// TaxRate overrides the configured dividend tax rate.
	TaxRate decimal.NullDecimal
	// SkipDividends replays transactions without dividend injection.
	SkipDividends bool
}

// ParseAnalysisQuery extracts and validates analysis parameters from query values.
//
// Validation rules:
//   - currency: three letters, case-insensitive
//   - now: YYYY-MM-DD
//   - tax: decimal in [0, 1)
//   - skip_dividends: any value strconv.ParseBool accepts
func ParseAnalysisQuery(currencyParam, nowParam, taxParam, skipDividendsParam string) (AnalysisQuery, error) {
	var q AnalysisQuery

	if currencyParam != "" {
		currency := strings.ToUpper(strings.TrimSpace(currencyParam))
		if len(currency) != 3 {
			return q, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, currencyParam)
		}
		q.Currency = currency
	}

	if nowParam != "" {
		now, err := model.ParseDate(nowParam)
		if err != nil {
			return q, fmt.Errorf("invalid now: %w", err)
		}
		q.Now = now
	}

	if taxParam != "" {
		rate, err := decimal.NewFromString(taxParam)
		if err != nil {
			return q, fmt.Errorf("invalid tax: %w", err)
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return q, fmt.Errorf("invalid tax: %s must be in [0, 1)", taxParam)
		}
		q.TaxRate = decimal.NewNullDecimal(rate)
	}

	if skipDividendsParam != "" {
		skip, err := strconv.ParseBool(skipDividendsParam)
		if err != nil {
			return q, fmt.Errorf("invalid skip_dividends: %w", err)
		}
		q.SkipDividends = skip
	}

	return q, nil
}
