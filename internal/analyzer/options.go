package analyzer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
)

// MissingPricePolicy decides how a held symbol without a price is valued.
type MissingPricePolicy int

const (
	// MissingPriceZero values the position at zero.
	MissingPriceZero MissingPricePolicy = iota
	// MissingPriceAverageCost values the position at its average cost per share.
	MissingPriceAverageCost
)

// DietzBase selects the Modified Dietz denominator.
type DietzBase int

const (
	// DietzBaseInvested divides by total invested plus weighted cash flows.
	DietzBaseInvested DietzBase = iota
	// DietzBaseWeighted divides by the weighted cash flows alone.
	DietzBaseWeighted
)

// AnnualizedPolicy decides what happens when (1+yield)^(1/years) has no real value.
type AnnualizedPolicy int

const (
	// AnnualizedRealPart keeps the real part of the principal complex power.
	AnnualizedRealPart AnnualizedPolicy = iota
	// AnnualizedStrict returns an UndefinedYieldError.
	AnnualizedStrict
)

// Options tune a replay. The zero value matches the historical tracker output:
// no dividend tax, missing prices count as zero, invested-based Dietz
// denominator and real-part annualization.
type Options struct {
	DividendTaxRate decimal.NullDecimal
	MissingPrice    MissingPricePolicy
	DietzBase       DietzBase
	Annualized      AnnualizedPolicy
}

func (o Options) validate() error {
	if !o.DividendTaxRate.Valid {
		return nil
	}
	rate := o.DividendTaxRate.Decimal
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidTaxRate, rate)
	}
	return nil
}

// ParseMissingPricePolicy accepts "zero" or "average_cost".
func ParseMissingPricePolicy(s string) (MissingPricePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return MissingPriceZero, nil
	case "average_cost", "avg_cost":
		return MissingPriceAverageCost, nil
	}
	return 0, fmt.Errorf("unknown missing price policy %q", s)
}

func (p MissingPricePolicy) String() string {
	if p == MissingPriceAverageCost {
		return "average_cost"
	}
	return "zero"
}

// ParseDietzBase accepts "invested" or "weighted".
func ParseDietzBase(s string) (DietzBase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "invested":
		return DietzBaseInvested, nil
	case "weighted":
		return DietzBaseWeighted, nil
	}
	return 0, fmt.Errorf("unknown dietz base %q", s)
}

func (b DietzBase) String() string {
	if b == DietzBaseWeighted {
		return "weighted"
	}
	return "invested"
}

// ParseAnnualizedPolicy accepts "real_part" or "strict".
func ParseAnnualizedPolicy(s string) (AnnualizedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "real_part", "real":
		return AnnualizedRealPart, nil
	case "strict":
		return AnnualizedStrict, nil
	}
	return 0, fmt.Errorf("unknown annualized policy %q", s)
}

func (p AnnualizedPolicy) String() string {
	if p == AnnualizedStrict {
		return "strict"
	}
	return "real_part"
}
