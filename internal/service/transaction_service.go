package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/database"
	"github.com/ndewijer/portfolio-yield-tracker/internal/importer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
	"github.com/ndewijer/portfolio-yield-tracker/internal/validation"
)

// TransactionService handles ledger business logic operations.
type TransactionService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	accountRepo     *repository.AccountRepository
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	accountRepo *repository.AccountRepository,
) *TransactionService {
	return &TransactionService{
		db:              db,
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		now:             time.Now,
	}
}

// GetTransactions retrieves the ledger rows matching filter in replay order.
func (s *TransactionService) GetTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, error) {
	return s.transactionRepo.GetTransactions(ctx, filter)
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	return s.transactionRepo.GetTransaction(ctx, transactionID)
}

// CreateTransaction stores a new transaction for an existing account.
func (s *TransactionService) CreateTransaction(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	txType, err := model.ParseTransactionType(req.Type)
	if err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.GetAccount(ctx, req.AccountID); err != nil {
		return nil, err
	}

	transaction := &model.Transaction{
		ID:            uuid.New().String(),
		AccountID:     req.AccountID,
		Symbol:        model.NormalizeSymbol(req.Symbol),
		Date:          date,
		Type:          txType,
		Quantity:      req.Quantity,
		PricePerShare: req.PricePerShare,
		CreatedAt:     s.now().UTC().Truncate(time.Second),
	}
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.InsertTransaction(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return transaction, nil
}

// UpdateTransaction applies the non-nil fields of req to the transaction.
func (s *TransactionService) UpdateTransaction(ctx context.Context, transactionID string, req request.UpdateTransactionRequest) (*model.Transaction, error) {
	transaction, err := s.transactionRepo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if req.AccountID != nil && *req.AccountID != transaction.AccountID {
		if _, err := s.accountRepo.GetAccount(ctx, *req.AccountID); err != nil {
			return nil, err
		}
		transaction.AccountID = *req.AccountID
	}
	if req.Symbol != nil {
		transaction.Symbol = model.NormalizeSymbol(*req.Symbol)
	}
	if req.Date != nil {
		if transaction.Date, err = model.ParseDate(*req.Date); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if transaction.Type, err = model.ParseTransactionType(*req.Type); err != nil {
			return nil, err
		}
	}
	if req.Quantity != nil {
		transaction.Quantity = *req.Quantity
	}
	if req.PricePerShare != nil {
		transaction.PricePerShare = *req.PricePerShare
	}
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.UpdateTransaction(ctx, &transaction); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return &transaction, nil
}

// DeleteTransaction removes a transaction by ID.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	return s.transactionRepo.DeleteTransaction(ctx, transactionID)
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Transactions    int      `json:"transactions"`
	CreatedAccounts []string `json:"createdAccounts"`
}

// ImportCSV reads a ledger and stores every row in one database transaction,
// so a bad row leaves the ledger untouched. Rows without an account go to
// defaultAccountID (analyzer.DefaultAccountID when empty). Unknown accounts
// are created with their ID as name.
func (s *TransactionService) ImportCSV(ctx context.Context, r io.Reader, defaultAccountID string) (ImportResult, error) {
	if strings.TrimSpace(defaultAccountID) == "" {
		defaultAccountID = analyzer.DefaultAccountID
	}
	if err := validation.ValidateAccountID(defaultAccountID); err != nil {
		return ImportResult{}, err
	}

	transactions, err := importer.Read(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToImportTransactions, err)
	}

	now := s.now().UTC().Truncate(time.Second)
	for i := range transactions {
		t := &transactions[i]
		if t.AccountID == "" {
			t.AccountID = defaultAccountID
		}
		if err := validation.ValidateAccountID(t.AccountID); err != nil {
			return ImportResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToImportTransactions,
				&importer.LineError{Line: i + 2, Err: err})
		}
		t.ID = uuid.New().String()
		t.CreatedAt = now
	}

	result := ImportResult{Transactions: len(transactions), CreatedAccounts: []string{}}
	err = database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		accounts := s.accountRepo.WithTx(tx)
		ledger := s.transactionRepo.WithTx(tx)

		seen := make(map[string]bool)
		for i := range transactions {
			t := &transactions[i]
			if !seen[t.AccountID] {
				seen[t.AccountID] = true
				created, err := accounts.EnsureAccount(ctx, &model.Account{
					ID:        t.AccountID,
					Name:      t.AccountID,
					Tags:      []string{},
					CreatedAt: now,
					UpdatedAt: now,
				})
				if err != nil {
					return err
				}
				if created {
					result.CreatedAccounts = append(result.CreatedAccounts, t.AccountID)
				}
			}
			if err := ledger.InsertTransaction(ctx, t); err != nil {
				return &importer.LineError{Line: i + 2, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToImportTransactions, err)
	}
	return result, nil
}

// ExportCSV writes the transactions matching filter in import format.
func (s *TransactionService) ExportCSV(ctx context.Context, w io.Writer, filter repository.TransactionFilter) error {
	transactions, err := s.transactionRepo.GetTransactions(ctx, filter)
	if err != nil {
		return err
	}
	return importer.Write(w, transactions)
}
