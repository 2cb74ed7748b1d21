package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
)

// AccountService handles account-related business logic operations.
type AccountService struct {
	accountRepo *repository.AccountRepository
	now         func() time.Time
}

// NewAccountService creates a new AccountService with the provided repository dependencies.
func NewAccountService(accountRepo *repository.AccountRepository) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		now:         time.Now,
	}
}

// GetAccounts retrieves all accounts ordered by name.
func (s *AccountService) GetAccounts(ctx context.Context) ([]model.Account, error) {
	return s.accountRepo.GetAccounts(ctx)
}

// GetAccount retrieves a single account by its ID.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	return s.accountRepo.GetAccount(ctx, accountID)
}

// CreateAccount stores a new account. A UUID is assigned when the request has no ID.
func (s *AccountService) CreateAccount(ctx context.Context, req request.CreateAccountRequest) (*model.Account, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.New().String()
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	now := s.now().UTC().Truncate(time.Second)
	account := &model.Account{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		Owner:         req.Owner,
		Institution:   req.Institution,
		InstitutionID: req.InstitutionID,
		Description:   req.Description,
		Tags:          tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.accountRepo.InsertAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// UpdateAccount applies the non-nil fields of req to the account.
func (s *AccountService) UpdateAccount(ctx context.Context, accountID string, req request.UpdateAccountRequest) (*model.Account, error) {
	account, err := s.accountRepo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Owner != nil {
		account.Owner = *req.Owner
	}
	if req.Institution != nil {
		account.Institution = *req.Institution
	}
	if req.InstitutionID != nil {
		account.InstitutionID = *req.InstitutionID
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.Tags != nil {
		account.Tags = *req.Tags
	}
	account.UpdatedAt = s.now().UTC().Truncate(time.Second)

	if err := s.accountRepo.UpdateAccount(ctx, &account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return &account, nil
}

// DeleteAccount removes the account and, through the foreign key, its transactions.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID string) error {
	return s.accountRepo.DeleteAccount(ctx, accountID)
}
