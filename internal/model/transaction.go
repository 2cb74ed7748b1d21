package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
)

// DateFormat is the wire and storage format for calendar dates.
const DateFormat = "2006-01-02"

// TransactionType is the kind of ledger entry.
type TransactionType string

const (
	TransactionTypeBuy      TransactionType = "buy"
	TransactionTypeSell     TransactionType = "sell"
	TransactionTypeDividend TransactionType = "dividend"
)

// ParseTransactionType converts a raw type string, case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TransactionTypeBuy, TransactionTypeSell, TransactionTypeDividend:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidTransactionType, s)
	}
}

// Transaction is one ledger entry for an account.
// For dividend entries Quantity is zero and PricePerShare holds the per-share payout.
type Transaction struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"accountId"`
	Symbol        string          `json:"symbol"`
	Date          time.Time       `json:"date"`
	Type          TransactionType `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
}

// Value returns quantity times price per share.
func (t Transaction) Value() decimal.Decimal {
	return t.Quantity.Mul(t.PricePerShare)
}

// Validate rejects entries the yield engine cannot replay.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return apperrors.ErrInvalidSymbol
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: missing date for %s", apperrors.ErrInvalidDate, t.Symbol)
	}
	if _, err := ParseTransactionType(string(t.Type)); err != nil {
		return err
	}
	if t.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity %s", apperrors.ErrNegativeAmount, t.Quantity)
	}
	if t.PricePerShare.IsNegative() {
		return fmt.Errorf("%w: price per share %s", apperrors.ErrNegativeAmount, t.PricePerShare)
	}
	return nil
}

// NewDividend builds a synthetic dividend transaction paying amount per share.
func NewDividend(symbol string, date time.Time, amount decimal.Decimal) Transaction {
	return Transaction{
		Symbol:        NormalizeSymbol(symbol),
		Date:          Day(date),
		Type:          TransactionTypeDividend,
		Quantity:      decimal.Zero,
		PricePerShare: amount,
	}
}

// NormalizeSymbol trims and upper-cases an instrument identifier.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ParseDate parses a YYYY-MM-DD date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, s)
	}
	return d.UTC(), nil
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}
