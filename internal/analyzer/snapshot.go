package analyzer

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// CashFlow is a signed amount on a date. Buys are positive; sells and
// dividends are negative.
type CashFlow struct {
	Date   time.Time
	Amount decimal.Decimal
}

// LastTransaction is the most recent buy or sell of a symbol.
type LastTransaction struct {
	Date time.Time
	Type model.TransactionType
}

// Snapshot is the result of replaying one account's ledger.
type Snapshot struct {
	TotalInvested  decimal.Decimal
	TotalWithdrawn decimal.Decimal
	TotalDividends decimal.Decimal
	PortfolioGain  decimal.Decimal
	CurrentValue   decimal.Decimal

	Shares            map[string]decimal.Decimal
	AverageCost       map[string]decimal.Decimal
	DividendsReceived map[string]decimal.Decimal
	LastTransactions  map[string]LastTransaction

	ModifiedDietzYield float64
	AnnualizedYield    float64
	SimpleYield        float64

	CashFlows      []CashFlow
	DaysSinceStart int
	// MissingPrices lists held symbols that had no price.
	MissingPrices []string
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Shares:            make(map[string]decimal.Decimal),
		AverageCost:       make(map[string]decimal.Decimal),
		DividendsReceived: make(map[string]decimal.Decimal),
		LastTransactions:  make(map[string]LastTransaction),
	}
}

// Symbols returns every symbol with a position, sorted.
func (s *Snapshot) Symbols() []string {
	return slices.Sorted(maps.Keys(s.Shares))
}

// Convert returns a copy with every monetary field multiplied by rate.
// Share counts, dates and yields are unchanged.
func (s *Snapshot) Convert(rate decimal.Decimal) *Snapshot {
	scale := func(in map[string]decimal.Decimal) map[string]decimal.Decimal {
		out := make(map[string]decimal.Decimal, len(in))
		for k, v := range in {
			out[k] = v.Mul(rate)
		}
		return out
	}

	out := *s
	out.TotalInvested = s.TotalInvested.Mul(rate)
	out.TotalWithdrawn = s.TotalWithdrawn.Mul(rate)
	out.TotalDividends = s.TotalDividends.Mul(rate)
	out.PortfolioGain = s.PortfolioGain.Mul(rate)
	out.CurrentValue = s.CurrentValue.Mul(rate)
	out.Shares = maps.Clone(s.Shares)
	out.AverageCost = scale(s.AverageCost)
	out.DividendsReceived = scale(s.DividendsReceived)
	out.LastTransactions = maps.Clone(s.LastTransactions)
	out.MissingPrices = slices.Clone(s.MissingPrices)
	out.CashFlows = make([]CashFlow, len(s.CashFlows))
	for i, cf := range s.CashFlows {
		out.CashFlows[i] = CashFlow{Date: cf.Date, Amount: cf.Amount.Mul(rate)}
	}
	return &out
}
