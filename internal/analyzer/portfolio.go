package analyzer

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

const (
	// TotalKey is the key of the snapshot computed over every account.
	TotalKey = "total"
	// DefaultAccountID groups transactions that carry no account ID.
	DefaultAccountID = "default"
)

// Portfolio holds one snapshot per account plus the "total" snapshot.
type Portfolio struct {
	// AccountIDs lists accounts in order of first appearance in the input.
	AccountIDs []string
	// Snapshots is keyed by account ID and TotalKey.
	Snapshots map[string]*Snapshot
}

// Total returns the snapshot computed over every transaction.
func (p *Portfolio) Total() *Snapshot {
	return p.Snapshots[TotalKey]
}

// Snapshot returns the snapshot of one account or TotalKey, nil if absent.
func (p *Portfolio) Snapshot(id string) *Snapshot {
	return p.Snapshots[id]
}

// ByAccount returns the per-account snapshots without the total.
func (p *Portfolio) ByAccount() map[string]*Snapshot {
	out := make(map[string]*Snapshot, len(p.AccountIDs))
	for _, id := range p.AccountIDs {
		out[id] = p.Snapshots[id]
	}
	return out
}

// Keys returns the account IDs followed by TotalKey.
func (p *Portfolio) Keys() []string {
	return append(slices.Clone(p.AccountIDs), TotalKey)
}

// Convert returns a copy with every snapshot converted by rate.
func (p *Portfolio) Convert(rate decimal.Decimal) *Portfolio {
	out := &Portfolio{
		AccountIDs: slices.Clone(p.AccountIDs),
		Snapshots:  make(map[string]*Snapshot, len(p.Snapshots)),
	}
	for id, s := range p.Snapshots {
		out.Snapshots[id] = s.Convert(rate)
	}
	return out
}

// AnalyzePortfolio partitions transactions by account and analyzes each
// partition, then replays the full list again for the "total" snapshot.
// The total is a fresh replay, not a sum: average cost and dividend
// injection depend on the combined order and quantities.
//
// Accounts are analyzed concurrently; the first failure is returned,
// wrapped with the account ID.
func AnalyzePortfolio(
	transactions []model.Transaction,
	opts Options,
	prices map[string]decimal.Decimal,
	dividends map[string][]model.Transaction,
	now time.Time,
) (*Portfolio, error) {
	groups := make(map[string][]model.Transaction)
	var ids []string
	for _, t := range transactions {
		id := t.AccountID
		if id == "" {
			id = DefaultAccountID
		}
		if id == TotalKey {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrReservedAccountID, id)
		}
		if _, ok := groups[id]; !ok {
			ids = append(ids, id)
		}
		groups[id] = append(groups[id], t)
	}

	results := make([]*Snapshot, len(ids)+1)
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			s, err := AnalyzeAccount(groups[id], opts, prices, dividends, now)
			if err != nil {
				return fmt.Errorf("account %s: %w", id, err)
			}
			results[i] = s
			return nil
		})
	}
	g.Go(func() error {
		s, err := AnalyzeAccount(transactions, opts, prices, dividends, now)
		if err != nil {
			return fmt.Errorf("%s: %w", TotalKey, err)
		}
		results[len(ids)] = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := &Portfolio{
		AccountIDs: ids,
		Snapshots:  make(map[string]*Snapshot, len(results)),
	}
	for i, id := range ids {
		p.Snapshots[id] = results[i]
	}
	p.Snapshots[TotalKey] = results[len(ids)]
	return p, nil
}
