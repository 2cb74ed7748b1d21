// Package analyzer replays transaction ledgers into positions, cost bases and
// yields. It performs no I/O: prices, dividends and the evaluation date are
// supplied by the caller, and inputs are never modified.
package analyzer

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// AnalyzeAccount replays transactions as of now and returns the resulting snapshot.
//
// Transactions dated after now are left out of the replay. For every symbol
// present in transactions, the dividend events in dividends dated on or after
// the symbol's first transaction (and not after now) are merged into the
// ledger. The merged ledger is sorted by date with a stable sort, so on a
// given day the account's own entries are replayed before injected dividends.
//
// Replay rules:
//   - buy: total invested grows by quantity*price, the average cost is
//     re-weighted and a positive cash flow is recorded.
//   - sell: total withdrawn grows by quantity*price, shares shrink (possibly
//     below zero) and a negative cash flow is recorded.
//   - dividend: applies only while the symbol has a nonzero position; the
//     per-share amount is reduced by the tax rate and multiplied by the shares
//     held, then recorded as received and as a negative cash flow.
//
// Errors: malformed transactions, an InsufficientDataError when there are no
// cash flows or they span zero days, and an UndefinedYieldError when a yield
// has no value.
func AnalyzeAccount(
	transactions []model.Transaction,
	opts Options,
	prices map[string]decimal.Decimal,
	dividends map[string][]model.Transaction,
	now time.Time,
) (*Snapshot, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	today := model.Day(now)

	ledger := make([]model.Transaction, 0, len(transactions))
	firstSeen := make(map[string]time.Time)
	for _, t := range transactions {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if t.Date.After(today) {
			continue
		}
		ledger = append(ledger, t)
		if first, ok := firstSeen[t.Symbol]; !ok || t.Date.Before(first) {
			firstSeen[t.Symbol] = t.Date
		}
	}

	for _, symbol := range slices.Sorted(maps.Keys(dividends)) {
		first, held := firstSeen[symbol]
		if !held {
			continue
		}
		for _, d := range dividends[symbol] {
			if d.Type != model.TransactionTypeDividend {
				return nil, fmt.Errorf("%w: dividend list for %s contains %q", apperrors.ErrInvalidTransactionType, symbol, d.Type)
			}
			if d.Date.Before(first) || d.Date.After(today) {
				continue
			}
			d.Symbol = symbol
			ledger = append(ledger, d)
		}
	}

	slices.SortStableFunc(ledger, func(a, b model.Transaction) int {
		return a.Date.Compare(b.Date)
	})

	s := newSnapshot()
	for symbol := range firstSeen {
		s.DividendsReceived[symbol] = decimal.Zero
	}

	keep := decimal.NewFromInt(1)
	if opts.DividendTaxRate.Valid {
		keep = keep.Sub(opts.DividendTaxRate.Decimal)
	}

	for _, t := range ledger {
		switch t.Type {
		case model.TransactionTypeBuy:
			value := t.Value()
			held := s.Shares[t.Symbol]
			avg := t.PricePerShare
			if held.IsPositive() {
				avg = s.AverageCost[t.Symbol].Mul(held).Add(value).Div(held.Add(t.Quantity))
			}
			s.TotalInvested = s.TotalInvested.Add(value)
			s.AverageCost[t.Symbol] = avg
			s.Shares[t.Symbol] = held.Add(t.Quantity)
			s.CashFlows = append(s.CashFlows, CashFlow{Date: t.Date, Amount: value})
			s.LastTransactions[t.Symbol] = LastTransaction{Date: t.Date, Type: t.Type}

		case model.TransactionTypeSell:
			value := t.Value()
			s.TotalWithdrawn = s.TotalWithdrawn.Add(value)
			s.Shares[t.Symbol] = s.Shares[t.Symbol].Sub(t.Quantity)
			s.CashFlows = append(s.CashFlows, CashFlow{Date: t.Date, Amount: value.Neg()})
			s.LastTransactions[t.Symbol] = LastTransaction{Date: t.Date, Type: t.Type}

		case model.TransactionTypeDividend:
			held := s.Shares[t.Symbol]
			if held.IsZero() {
				continue
			}
			value := t.PricePerShare.Mul(keep).Mul(held)
			s.DividendsReceived[t.Symbol] = s.DividendsReceived[t.Symbol].Add(value)
			s.CashFlows = append(s.CashFlows, CashFlow{Date: t.Date, Amount: value.Neg()})

		default:
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidTransactionType, t.Type)
		}
	}

	for _, symbol := range s.Symbols() {
		held := s.Shares[symbol]
		price, ok := prices[symbol]
		if !ok {
			if !held.IsZero() {
				s.MissingPrices = append(s.MissingPrices, symbol)
			}
			if opts.MissingPrice == MissingPriceAverageCost {
				price = s.AverageCost[symbol]
			}
		}
		s.CurrentValue = s.CurrentValue.Add(price.Mul(held))
	}

	for _, v := range s.DividendsReceived {
		s.TotalDividends = s.TotalDividends.Add(v)
	}
	s.PortfolioGain = s.CurrentValue.Add(s.TotalWithdrawn).Add(s.TotalDividends).Sub(s.TotalInvested)

	if err := s.computeYields(today, opts); err != nil {
		return nil, err
	}
	return s, nil
}
