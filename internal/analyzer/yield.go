package analyzer

import (
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

const daysPerYear = 365

// computeYields fills the Modified Dietz, annualized and simple yields.
func (s *Snapshot) computeYields(now time.Time, opts Options) error {
	if len(s.CashFlows) == 0 {
		return &apperrors.InsufficientDataError{Reason: "no cash flows"}
	}

	days := model.DaysBetween(s.CashFlows[0].Date, now)
	if days <= 0 {
		return &apperrors.InsufficientDataError{
			Reason: fmt.Sprintf("cash flows span %d days up to %s", days, now.Format(model.DateFormat)),
		}
	}
	s.DaysSinceStart = days

	span := decimal.NewFromInt(int64(days))
	weighted := decimal.Zero
	for _, cf := range s.CashFlows {
		remaining := decimal.NewFromInt(int64(model.DaysBetween(cf.Date, now)))
		weighted = weighted.Add(cf.Amount.Mul(remaining).Div(span))
	}

	base := weighted
	if opts.DietzBase == DietzBaseInvested {
		base = s.TotalInvested.Add(weighted)
	}
	if base.IsZero() {
		return &apperrors.UndefinedYieldError{Yield: "modified_dietz", Reason: "denominator is zero"}
	}
	s.ModifiedDietzYield = s.PortfolioGain.Div(base).InexactFloat64()
	if err := checkFinite("modified_dietz", s.ModifiedDietzYield); err != nil {
		return err
	}

	annualized, err := annualize(s.ModifiedDietzYield, float64(days)/daysPerYear, opts.Annualized)
	if err != nil {
		return err
	}
	s.AnnualizedYield = annualized

	if !s.CurrentValue.IsZero() {
		s.SimpleYield = s.PortfolioGain.Div(s.CurrentValue).InexactFloat64()
		if err := checkFinite("simple", s.SimpleYield); err != nil {
			return err
		}
	}
	return nil
}

// annualize converts a period yield over years into a yearly rate.
// A negative growth factor raised to a non-integer power has no real value;
// the policy decides between the principal complex power's real part and an error.
func annualize(periodYield, years float64, policy AnnualizedPolicy) (float64, error) {
	growth := 1 + periodYield
	exponent := 1 / years

	var annualized float64
	switch {
	case growth >= 0 || exponent == math.Trunc(exponent):
		annualized = math.Pow(growth, exponent) - 1
	case policy == AnnualizedStrict:
		return 0, &apperrors.UndefinedYieldError{
			Yield:  "annualized",
			Reason: fmt.Sprintf("growth factor %g raised to %g is complex", growth, exponent),
		}
	default:
		annualized = real(cmplx.Pow(complex(growth, 0), complex(exponent, 0))) - 1
	}
	if err := checkFinite("annualized", annualized); err != nil {
		return 0, err
	}
	return annualized, nil
}

// checkFinite rejects yields that overflowed float64 or are not a number.
// JSON cannot carry either value.
func checkFinite(yield string, v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return &apperrors.UndefinedYieldError{Yield: yield, Reason: fmt.Sprintf("result %g is not finite", v)}
	}
	return nil
}
