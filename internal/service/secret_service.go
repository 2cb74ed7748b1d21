package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
)

// SecretService encrypts provider credentials with a fernet key before they
// reach the database. Without a key every operation fails with
// apperrors.ErrSecretsDisabled.
type SecretService struct {
	repo *repository.SecretRepository
	key  *fernet.Key
	now  func() time.Time
}

// NewSecretService creates a SecretService. encodedKey is a base64 fernet key
// as produced by GenerateSecretKey; an empty key disables the store.
func NewSecretService(repo *repository.SecretRepository, encodedKey string) (*SecretService, error) {
	s := &SecretService{repo: repo, now: time.Now}
	if encodedKey == "" {
		return s, nil
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid secret key: %w", err)
	}
	s.key = key
	return s, nil
}

// GenerateSecretKey returns a fresh encoded fernet key.
func GenerateSecretKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", err
	}
	return k.Encode(), nil
}

// Enabled reports whether a key is configured.
func (s *SecretService) Enabled() bool {
	return s.key != nil
}

// Set encrypts and stores value under name.
func (s *SecretService) Set(ctx context.Context, name, value string) error {
	if !s.Enabled() {
		return apperrors.ErrSecretsDisabled
	}
	token, err := fernet.EncryptAndSign([]byte(value), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret: %w", err)
	}
	return s.repo.PutSecret(ctx, name, string(token), s.now())
}

// Get returns the decrypted value stored under name.
func (s *SecretService) Get(ctx context.Context, name string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.ErrSecretsDisabled
	}
	token, err := s.repo.GetSecret(ctx, name)
	if err != nil {
		return "", err
	}
	plain := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{s.key})
	if plain == nil {
		return "", fmt.Errorf("secret %s cannot be decrypted with the configured key", name)
	}
	return string(plain), nil
}

// Delete removes name.
func (s *SecretService) Delete(ctx context.Context, name string) error {
	if !s.Enabled() {
		return apperrors.ErrSecretsDisabled
	}
	return s.repo.DeleteSecret(ctx, name)
}
