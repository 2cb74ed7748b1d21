package analyzer_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

func day(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(account, symbol, date string, typ model.TransactionType, qty, price string) model.Transaction {
	return model.Transaction{
		ID:            account + "-" + symbol + "-" + date + "-" + string(typ),
		AccountID:     account,
		Symbol:        symbol,
		Date:          day(date),
		Type:          typ,
		Quantity:      dec(qty),
		PricePerShare: dec(price),
	}
}

func buy(account, symbol, date, qty, price string) model.Transaction {
	return tx(account, symbol, date, model.TransactionTypeBuy, qty, price)
}

func sell(account, symbol, date, qty, price string) model.Transaction {
	return tx(account, symbol, date, model.TransactionTypeSell, qty, price)
}

func dividend(symbol, date, amount string) model.Transaction {
	return model.NewDividend(symbol, day(date), dec(amount))
}

func prices(kv ...string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = dec(kv[i+1])
	}
	return out
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s %v", want, got, msgAndArgs)
}

// taxed returns default options with a dividend tax rate.
func taxed(rate string) analyzer.Options {
	return analyzer.Options{DividendTaxRate: decimal.NewNullDecimal(dec(rate))}
}
