package analyzer_test

import (
	"errors"
	"math"
	"math/cmplx"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// TestAnalyzeAccount_SingleBuy replays one buy held for a leap year.
//
// WHY: This is the reference scenario for every yield; if it drifts, all
// reported performance numbers drift with it.
func TestAnalyzeAccount_SingleBuy(t *testing.T) {
	txs := []model.Transaction{buy("a", "X", "2020-01-01", "10", "100")}
	now := day("2021-01-01")

	t.Run("positions and totals", func(t *testing.T) {
		s, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "150"), nil, now)
		require.NoError(t, err)

		assertDecimal(t, "10", s.Shares["X"])
		assertDecimal(t, "100", s.AverageCost["X"])
		assertDecimal(t, "1000", s.TotalInvested)
		assertDecimal(t, "0", s.TotalWithdrawn)
		assertDecimal(t, "1500", s.CurrentValue)
		assertDecimal(t, "500", s.PortfolioGain)
		assert.Equal(t, 366, s.DaysSinceStart)
		assert.InDelta(t, 500.0/1500.0, s.SimpleYield, 1e-12)
	})

	t.Run("invested base divides by invested plus weighted flows", func(t *testing.T) {
		s, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "150"), nil, now)
		require.NoError(t, err)

		assert.InDelta(t, 0.25, s.ModifiedDietzYield, 1e-12)
		assert.InDelta(t, math.Pow(1.25, 365.0/366.0)-1, s.AnnualizedYield, 1e-12)
	})

	t.Run("weighted base gives the textbook yield", func(t *testing.T) {
		opts := analyzer.Options{DietzBase: analyzer.DietzBaseWeighted}
		s, err := analyzer.AnalyzeAccount(txs, opts, prices("X", "150"), nil, now)
		require.NoError(t, err)

		assert.InDelta(t, 0.5, s.ModifiedDietzYield, 1e-12)
		assert.InDelta(t, math.Pow(1.5, 365.0/366.0)-1, s.AnnualizedYield, 1e-12)
		assert.InDelta(t, 0.4983, s.AnnualizedYield, 1e-3)
	})
}

// TestAnalyzeAccount_PartialSell checks the sell scenario and its cash flow sign.
//
// WHY: Sells must reduce shares, accumulate withdrawals and enter the Dietz
// sum as negative flows weighted by the remaining period.
func TestAnalyzeAccount_PartialSell(t *testing.T) {
	txs := []model.Transaction{
		buy("a", "X", "2020-01-01", "10", "100"),
		sell("a", "X", "2020-06-01", "4", "120"),
	}
	now := day("2021-01-01")

	s, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "150"), nil, now)
	require.NoError(t, err)

	assertDecimal(t, "6", s.Shares["X"])
	assertDecimal(t, "480", s.TotalWithdrawn)
	assertDecimal(t, "900", s.CurrentValue)
	assertDecimal(t, "380", s.PortfolioGain)

	require.Len(t, s.CashFlows, 2)
	assertDecimal(t, "1000", s.CashFlows[0].Amount)
	assertDecimal(t, "-480", s.CashFlows[1].Amount)

	weighted := 1000.0 - 480.0*214.0/366.0
	assert.InDelta(t, 380.0/(1000.0+weighted), s.ModifiedDietzYield, 1e-9)

	assert.Equal(t, model.TransactionTypeSell, s.LastTransactions["X"].Type)
	assert.Equal(t, day("2020-06-01"), s.LastTransactions["X"].Date)
}

// TestAnalyzeAccount_AverageCost verifies the weighted average over two buys.
func TestAnalyzeAccount_AverageCost(t *testing.T) {
	tests := []struct {
		name string
		txs  []model.Transaction
		want string
	}{
		{
			name: "two equal lots",
			txs: []model.Transaction{
				buy("a", "X", "2020-01-01", "10", "100"),
				buy("a", "X", "2020-02-01", "10", "200"),
			},
			want: "150",
		},
		{
			name: "unequal lots",
			txs: []model.Transaction{
				buy("a", "X", "2020-01-01", "30", "10"),
				buy("a", "X", "2020-02-01", "10", "50"),
			},
			want: "20",
		},
		{
			name: "new lot after full liquidation starts at buy price",
			txs: []model.Transaction{
				buy("a", "X", "2020-01-01", "10", "100"),
				sell("a", "X", "2020-02-01", "10", "110"),
				buy("a", "X", "2020-03-01", "5", "80"),
			},
			want: "80",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := analyzer.AnalyzeAccount(tt.txs, analyzer.Options{}, prices("X", "100"), nil, day("2021-01-01"))
			require.NoError(t, err)
			assertDecimal(t, tt.want, s.AverageCost["X"])
		})
	}
}

// TestAnalyzeAccount_Conservation checks that buy-only ledgers keep totals intact.
func TestAnalyzeAccount_Conservation(t *testing.T) {
	txs := []model.Transaction{
		buy("a", "X", "2020-01-01", "10", "100"),
		buy("a", "Y", "2020-01-15", "3", "33.5"),
		buy("a", "X", "2020-03-01", "2.5", "120"),
		buy("a", "Y", "2020-04-01", "7", "40"),
	}

	s, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "1", "Y", "1"), nil, day("2021-01-01"))
	require.NoError(t, err)

	invested := decimal.Zero
	for _, entry := range txs {
		invested = invested.Add(entry.Value())
	}
	assert.True(t, invested.Equal(s.TotalInvested), "invested %s != %s", invested, s.TotalInvested)
	assertDecimal(t, "12.5", s.Shares["X"])
	assertDecimal(t, "10", s.Shares["Y"])
	assert.Equal(t, []string{"X", "Y"}, s.Symbols())
}

// TestAnalyzeAccount_Dividends covers injection, gating and tax.
//
// WHY: Dividends are merged from market data; only those the account was
// entitled to may count, and the same-day ordering after buys matters.
func TestAnalyzeAccount_Dividends(t *testing.T) {
	txs := []model.Transaction{buy("a", "X", "2020-01-01", "10", "100")}
	divs := map[string][]model.Transaction{
		"X": {
			dividend("X", "2019-12-01", "1"),
			dividend("X", "2020-01-01", "0.5"),
			dividend("X", "2020-07-01", "1"),
		},
		"Y": {dividend("Y", "2020-03-01", "2")},
	}

	t.Run("only entitled dividends count", func(t *testing.T) {
		s, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "100"), divs, day("2021-01-01"))
		require.NoError(t, err)

		assertDecimal(t, "15", s.DividendsReceived["X"])
		assertDecimal(t, "15", s.TotalDividends)
		_, hasY := s.DividendsReceived["Y"]
		assert.False(t, hasY, "dividends for symbols never held must be ignored")
		require.Len(t, s.CashFlows, 3)
		assertDecimal(t, "-5", s.CashFlows[1].Amount)
		assertDecimal(t, "-10", s.CashFlows[2].Amount)
		assert.Equal(t, model.TransactionTypeBuy, s.LastTransactions["X"].Type)
	})

	t.Run("tax rate reduces the per-share amount", func(t *testing.T) {
		opts := taxed("0.25")
		s, err := analyzer.AnalyzeAccount(txs, opts, prices("X", "100"), divs, day("2021-01-01"))
		require.NoError(t, err)

		assertDecimal(t, "11.25", s.DividendsReceived["X"])
	})

	t.Run("dividends after full liquidation are dropped", func(t *testing.T) {
		liquidated := []model.Transaction{
			buy("a", "X", "2020-01-01", "10", "100"),
			sell("a", "X", "2020-02-01", "10", "100"),
		}
		s, err := analyzer.AnalyzeAccount(liquidated, analyzer.Options{}, prices("X", "100"), divs, day("2021-01-01"))
		require.NoError(t, err)

		assertDecimal(t, "5", s.DividendsReceived["X"])
		assert.Len(t, s.CashFlows, 3)
	})

	t.Run("dividends dated after now are ignored", func(t *testing.T) {
		s, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "100"), divs, day("2020-06-01"))
		require.NoError(t, err)

		assertDecimal(t, "5", s.DividendsReceived["X"])
	})

	t.Run("non-dividend entries in the dividend list are rejected", func(t *testing.T) {
		bad := map[string][]model.Transaction{"X": {buy("", "X", "2020-02-01", "1", "1")}}
		_, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "100"), bad, day("2021-01-01"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransactionType)
	})
}

// TestAnalyzeAccount_MissingPrice documents the valuation of unpriced positions.
func TestAnalyzeAccount_MissingPrice(t *testing.T) {
	txs := []model.Transaction{buy("a", "X", "2020-01-01", "10", "100")}

	t.Run("defaults to zero", func(t *testing.T) {
		s, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, nil, nil, day("2021-01-01"))
		require.NoError(t, err)

		assertDecimal(t, "0", s.CurrentValue)
		assertDecimal(t, "-1000", s.PortfolioGain)
		assert.Equal(t, []string{"X"}, s.MissingPrices)
		assert.Zero(t, s.SimpleYield)
	})

	t.Run("average cost fallback", func(t *testing.T) {
		opts := analyzer.Options{MissingPrice: analyzer.MissingPriceAverageCost}
		s, err := analyzer.AnalyzeAccount(txs, opts, map[string]decimal.Decimal{}, nil, day("2021-01-01"))
		require.NoError(t, err)

		assertDecimal(t, "1000", s.CurrentValue)
		assertDecimal(t, "0", s.PortfolioGain)
		assert.Equal(t, []string{"X"}, s.MissingPrices)
	})
}

// TestAnalyzeAccount_InsufficientData guards the Dietz division.
//
// WHY: A ledger whose first flow is today would otherwise divide by zero and
// report NaN or Inf as a yield.
func TestAnalyzeAccount_InsufficientData(t *testing.T) {
	tests := []struct {
		name string
		txs  []model.Transaction
		now  string
	}{
		{name: "empty ledger", txs: nil, now: "2021-01-01"},
		{name: "first buy is today", txs: []model.Transaction{buy("a", "X", "2021-01-01", "1", "10")}, now: "2021-01-01"},
		{name: "all transactions in the future", txs: []model.Transaction{buy("a", "X", "2022-01-01", "1", "10")}, now: "2021-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := analyzer.AnalyzeAccount(tt.txs, analyzer.Options{}, prices("X", "10"), nil, day(tt.now))
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, apperrors.ErrInsufficientData)

			var insufficient *apperrors.InsufficientDataError
			assert.True(t, errors.As(err, &insufficient))
		})
	}
}

// TestAnalyzeAccount_UndefinedYield covers zero denominators and complex powers.
func TestAnalyzeAccount_UndefinedYield(t *testing.T) {
	t.Run("zero weighted denominator", func(t *testing.T) {
		txs := []model.Transaction{
			buy("a", "X", "2020-01-01", "10", "100"),
			sell("a", "X", "2020-01-01", "10", "100"),
		}
		opts := analyzer.Options{DietzBase: analyzer.DietzBaseWeighted}
		_, err := analyzer.AnalyzeAccount(txs, opts, prices("X", "100"), nil, day("2021-01-01"))
		assert.ErrorIs(t, err, apperrors.ErrUndefinedYield)
	})

	txs := []model.Transaction{
		buy("a", "X", "2020-01-01", "10", "100"),
		sell("a", "X", "2020-01-02", "10", "300"),
	}
	now := day("2021-01-01")

	t.Run("strict policy rejects complex annualization", func(t *testing.T) {
		opts := analyzer.Options{DietzBase: analyzer.DietzBaseWeighted, Annualized: analyzer.AnnualizedStrict}
		_, err := analyzer.AnalyzeAccount(txs, opts, prices("X", "100"), nil, now)
		assert.ErrorIs(t, err, apperrors.ErrUndefinedYield)
	})

	t.Run("real part policy keeps the real component", func(t *testing.T) {
		opts := analyzer.Options{DietzBase: analyzer.DietzBaseWeighted}
		s, err := analyzer.AnalyzeAccount(txs, opts, prices("X", "100"), nil, now)
		require.NoError(t, err)

		require.Less(t, s.ModifiedDietzYield, -1.0)
		want := real(cmplx.Pow(complex(1+s.ModifiedDietzYield, 0), complex(365.0/366.0, 0))) - 1
		assert.InDelta(t, want, s.AnnualizedYield, 1e-12)
		assert.False(t, math.IsNaN(s.AnnualizedYield))
	})

	t.Run("one day span overflows annualization", func(t *testing.T) {
		oneDay := []model.Transaction{buy("a", "X", "2020-12-31", "10", "10")}
		s, err := analyzer.AnalyzeAccount(oneDay, analyzer.Options{}, prices("X", "200"), nil, day("2021-01-01"))
		require.ErrorIs(t, err, apperrors.ErrUndefinedYield)
		assert.Nil(t, s)

		var undefined *apperrors.UndefinedYieldError
		require.True(t, errors.As(err, &undefined))
		assert.Equal(t, "annualized", undefined.Yield)
	})
}

// TestAnalyzeAccount_Validation rejects malformed input instead of skipping it.
func TestAnalyzeAccount_Validation(t *testing.T) {
	tests := []struct {
		name string
		tx   model.Transaction
		opts analyzer.Options
		want error
	}{
		{name: "unknown type", tx: tx("a", "X", "2020-01-01", "split", "2", "1"), want: apperrors.ErrInvalidTransactionType},
		{name: "negative quantity", tx: buy("a", "X", "2020-01-01", "-1", "10"), want: apperrors.ErrNegativeAmount},
		{name: "negative price", tx: buy("a", "X", "2020-01-01", "1", "-10"), want: apperrors.ErrNegativeAmount},
		{name: "empty symbol", tx: buy("a", "", "2020-01-01", "1", "10"), want: apperrors.ErrInvalidSymbol},
		{name: "tax rate of one", tx: buy("a", "X", "2020-01-01", "1", "10"), opts: taxed("1"), want: apperrors.ErrInvalidTaxRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzer.AnalyzeAccount([]model.Transaction{tt.tx}, tt.opts, nil, nil, day("2021-01-01"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestAnalyzeAccount_NegativeHoldings keeps sells without buys instead of rejecting them.
func TestAnalyzeAccount_NegativeHoldings(t *testing.T) {
	txs := []model.Transaction{sell("a", "X", "2020-01-01", "5", "10")}

	s, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "10"), nil, day("2020-12-31"))
	require.NoError(t, err)

	assertDecimal(t, "-5", s.Shares["X"])
	assertDecimal(t, "50", s.TotalWithdrawn)
	_, hasAvg := s.AverageCost["X"]
	assert.False(t, hasAvg)
}

// TestAnalyzeAccount_Purity checks idempotence and that inputs are left untouched.
func TestAnalyzeAccount_Purity(t *testing.T) {
	txs := []model.Transaction{
		buy("a", "X", "2020-01-01", "10", "100"),
		sell("a", "X", "2020-06-01", "4", "120"),
	}
	divs := map[string][]model.Transaction{"X": {dividend("X", "2020-03-01", "1")}}
	origTxs := slices.Clone(txs)
	origDivs := slices.Clone(divs["X"])
	now := day("2021-01-01")

	first, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "150"), divs, now)
	require.NoError(t, err)
	second, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "150"), divs, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, origTxs, txs)
	assert.Len(t, divs["X"], len(origDivs))
	assert.Equal(t, origDivs, divs["X"])
}

// TestSnapshot_Convert multiplies money but leaves shares and yields alone.
func TestSnapshot_Convert(t *testing.T) {
	txs := []model.Transaction{buy("a", "X", "2020-01-01", "10", "100")}
	s, err := analyzer.AnalyzeAccount(txs, analyzer.Options{}, prices("X", "150"), nil, day("2021-01-01"))
	require.NoError(t, err)

	converted := s.Convert(dec("3.5"))

	assertDecimal(t, "3500", converted.TotalInvested)
	assertDecimal(t, "5250", converted.CurrentValue)
	assertDecimal(t, "350", converted.AverageCost["X"])
	assertDecimal(t, "10", converted.Shares["X"])
	assertDecimal(t, "3500", converted.CashFlows[0].Amount)
	assert.Equal(t, s.ModifiedDietzYield, converted.ModifiedDietzYield)
	assertDecimal(t, "1000", s.TotalInvested)
}
