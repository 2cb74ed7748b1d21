package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
)

// AnalysisService loads ledgers and market data and runs the yield engine.
type AnalysisService struct {
	transactionRepo *repository.TransactionRepository
	accountRepo     *repository.AccountRepository
	market          *MarketDataService
	options         analyzer.Options
	baseCurrency    string
	log             zerolog.Logger
	now             func() time.Time
}

// NewAnalysisService creates a new AnalysisService. Amounts in the ledger are
// assumed to be in baseCurrency.
func NewAnalysisService(
	transactionRepo *repository.TransactionRepository,
	accountRepo *repository.AccountRepository,
	market *MarketDataService,
	options analyzer.Options,
	baseCurrency string,
	logger zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		market:          market,
		options:         options,
		baseCurrency:    strings.ToUpper(baseCurrency),
		log:             logger,
		now:             time.Now,
	}
}

// PortfolioReport is the result of analyzing every account.
type PortfolioReport struct {
	Currency     string
	AsOf         time.Time
	ExchangeRate decimal.Decimal
	Portfolio    *analyzer.Portfolio
}

// AccountReport is the result of analyzing one account.
type AccountReport struct {
	AccountID    string
	Currency     string
	AsOf         time.Time
	ExchangeRate decimal.Decimal
	Snapshot     *analyzer.Snapshot
}

// AnalyzePortfolio analyzes every account plus the "total" aggregate.
func (s *AnalysisService) AnalyzePortfolio(ctx context.Context, q request.AnalysisQuery) (*PortfolioReport, error) {
	transactions, err := s.transactionRepo.GetTransactions(ctx, repository.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveTransactions, err)
	}

	asOf, opts := s.prepare(q)
	prices, dividends, err := s.marketInputs(ctx, transactions, q.SkipDividends)
	if err != nil {
		return nil, err
	}

	portfolio, err := analyzer.AnalyzePortfolio(transactions, opts, prices, dividends, asOf)
	if err != nil {
		return nil, err
	}
	for _, id := range portfolio.Keys() {
		s.warnMissing(id, portfolio.Snapshot(id))
	}

	currency, rate, err := s.conversion(ctx, q.Currency)
	if err != nil {
		return nil, err
	}
	if !rate.Equal(decimal.NewFromInt(1)) {
		portfolio = portfolio.Convert(rate)
	}

	return &PortfolioReport{
		Currency:     currency,
		AsOf:         asOf,
		ExchangeRate: rate,
		Portfolio:    portfolio,
	}, nil
}

// AnalyzeAccount analyzes a single account. An unknown account yields
// apperrors.ErrAccountNotFound; a known account without transactions yields
// an InsufficientDataError from the engine.
func (s *AnalysisService) AnalyzeAccount(ctx context.Context, accountID string, q request.AnalysisQuery) (*AccountReport, error) {
	transactions, err := s.transactionRepo.GetTransactions(ctx, repository.TransactionFilter{AccountID: accountID})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveTransactions, err)
	}
	if len(transactions) == 0 {
		if _, err := s.accountRepo.GetAccount(ctx, accountID); err != nil {
			return nil, err
		}
	}

	asOf, opts := s.prepare(q)
	prices, dividends, err := s.marketInputs(ctx, transactions, q.SkipDividends)
	if err != nil {
		return nil, err
	}

	snapshot, err := analyzer.AnalyzeAccount(transactions, opts, prices, dividends, asOf)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", accountID, err)
	}
	s.warnMissing(accountID, snapshot)

	currency, rate, err := s.conversion(ctx, q.Currency)
	if err != nil {
		return nil, err
	}
	if !rate.Equal(decimal.NewFromInt(1)) {
		snapshot = snapshot.Convert(rate)
	}

	return &AccountReport{
		AccountID:    accountID,
		Currency:     currency,
		AsOf:         asOf,
		ExchangeRate: rate,
		Snapshot:     snapshot,
	}, nil
}

// prepare resolves the evaluation date and applies the query's tax override.
func (s *AnalysisService) prepare(q request.AnalysisQuery) (time.Time, analyzer.Options) {
	asOf := q.Now
	if asOf.IsZero() {
		asOf = s.now()
	}
	opts := s.options
	if q.TaxRate.Valid {
		opts.DividendTaxRate = q.TaxRate
	}
	return model.Day(asOf), opts
}

func (s *AnalysisService) marketInputs(
	ctx context.Context,
	transactions []model.Transaction,
	skipDividends bool,
) (map[string]decimal.Decimal, map[string][]model.Transaction, error) {
	symbols := symbolsOf(transactions)
	if len(symbols) == 0 {
		return nil, nil, nil
	}

	prices, err := s.market.PriceMap(ctx, symbols)
	if err != nil {
		return nil, nil, err
	}
	if skipDividends {
		return prices, nil, nil
	}
	dividends, err := s.market.Dividends(ctx, symbols)
	if err != nil {
		return nil, nil, err
	}
	return prices, dividends, nil
}

// conversion returns the display currency and the rate from the base currency.
func (s *AnalysisService) conversion(ctx context.Context, currency string) (string, decimal.Decimal, error) {
	if currency == "" || strings.EqualFold(currency, s.baseCurrency) {
		return s.baseCurrency, decimal.NewFromInt(1), nil
	}
	rate, err := s.market.ExchangeRate(ctx, s.baseCurrency, currency)
	if err != nil {
		return "", decimal.Zero, err
	}
	return strings.ToUpper(currency), rate, nil
}

func (s *AnalysisService) warnMissing(id string, snapshot *analyzer.Snapshot) {
	if snapshot == nil || len(snapshot.MissingPrices) == 0 {
		return
	}
	s.log.Warn().
		Str("account", id).
		Strs("symbols", snapshot.MissingPrices).
		Msg("held symbols have no price")
}

// symbolsOf returns the distinct symbols of transactions in first-seen order.
func symbolsOf(transactions []model.Transaction) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, t := range transactions {
		if !seen[t.Symbol] {
			seen[t.Symbol] = true
			symbols = append(symbols, t.Symbol)
		}
	}
	return symbols
}
