package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// AccountRepository provides data access methods for the account table.
type AccountRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *AccountRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const accountColumns = `id, name, owner, institution, institution_id, description, tags, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (model.Account, error) {
	var a model.Account
	var tags, createdAtStr, updatedAtStr string

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Owner,
		&a.Institution,
		&a.InstitutionID,
		&a.Description,
		&tags,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return a, err
	}
	a.Tags = splitTags(tags)

	if a.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return a, err
	}
	if a.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return a, err
	}
	return a, nil
}

// GetAccounts retrieves all accounts ordered by name.
// Returns an empty slice if no accounts exist.
func (r *AccountRepository) GetAccounts(ctx context.Context) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account ORDER BY name ASC, id ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account table results: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}

	return accounts, nil
}

// GetAccount retrieves one account by ID.
// Returns apperrors.ErrAccountNotFound if it does not exist.
func (r *AccountRepository) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE id = ?`

	a, err := scanAccount(r.getQuerier().QueryRowContext(ctx, query, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to scan account table results: %w", err)
	}
	return a, nil
}

// InsertAccount stores a new account.
func (r *AccountRepository) InsertAccount(ctx context.Context, a *model.Account) error {
	query := `
		INSERT INTO account (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		a.ID,
		a.Name,
		a.Owner,
		a.Institution,
		a.InstitutionID,
		a.Description,
		joinTags(a.Tags),
		formatTimestamp(a.CreatedAt),
		formatTimestamp(a.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicateEntry, a.ID)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// UpdateAccount replaces the metadata of an existing account.
func (r *AccountRepository) UpdateAccount(ctx context.Context, a *model.Account) error {
	query := `
		UPDATE account
		SET name = ?, owner = ?, institution = ?, institution_id = ?, description = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		a.Name,
		a.Owner,
		a.Institution,
		a.InstitutionID,
		a.Description,
		joinTags(a.Tags),
		formatTimestamp(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return requireAffected(result, apperrors.ErrAccountNotFound)
}

// DeleteAccount removes an account and, through the foreign key, its transactions.
func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM account WHERE id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return requireAffected(result, apperrors.ErrAccountNotFound)
}

// EnsureAccount inserts a bare account named after its ID unless one exists.
// Reports whether a row was created.
func (r *AccountRepository) EnsureAccount(ctx context.Context, a *model.Account) (bool, error) {
	query := `
		INSERT INTO account (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		a.ID,
		a.Name,
		a.Owner,
		a.Institution,
		a.InstitutionID,
		a.Description,
		joinTags(a.Tags),
		formatTimestamp(a.CreatedAt),
		formatTimestamp(a.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to ensure account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
