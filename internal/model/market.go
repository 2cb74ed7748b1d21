package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SymbolPrice is the latest known quote for a symbol.
// AdjClose is the value used for portfolio valuation.
type SymbolPrice struct {
	Symbol    string
	Date      time.Time
	Close     decimal.Decimal
	AdjClose  decimal.Decimal
	Currency  string
	UpdatedAt time.Time
}

// DividendEvent is a per-share dividend paid on ExDate.
type DividendEvent struct {
	Symbol string
	ExDate time.Time
	Amount decimal.Decimal
}

// Transaction materializes the event as a synthetic dividend entry.
func (d DividendEvent) Transaction() Transaction {
	return NewDividend(d.Symbol, d.ExDate, d.Amount)
}

// ExchangeRate is the number of Quote units per one Base unit.
type ExchangeRate struct {
	Base      string
	Quote     string
	Rate      decimal.Decimal
	Date      time.Time
	UpdatedAt time.Time
}
