package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
)

// SecretRepository stores encrypted secrets. It never sees plaintext.
type SecretRepository struct {
	db *sql.DB
}

// NewSecretRepository creates a new SecretRepository with the provided database connection.
func NewSecretRepository(db *sql.DB) *SecretRepository {
	return &SecretRepository{db: db}
}

// PutSecret stores or replaces the ciphertext for name.
func (r *SecretRepository) PutSecret(ctx context.Context, name, ciphertext string, now time.Time) error {
	query := `
		INSERT INTO secret (name, ciphertext, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			ciphertext = excluded.ciphertext,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, name, ciphertext, formatTimestamp(now)); err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}
	return nil
}

// GetSecret returns the ciphertext for name or apperrors.ErrSecretNotFound.
func (r *SecretRepository) GetSecret(ctx context.Context, name string) (string, error) {
	var ciphertext string
	err := r.db.QueryRowContext(ctx, `SELECT ciphertext FROM secret WHERE name = ?`, name).Scan(&ciphertext)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return ciphertext, nil
}

// DeleteSecret removes name.
func (r *SecretRepository) DeleteSecret(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM secret WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	return requireAffected(result, apperrors.ErrSecretNotFound)
}
