package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
	"github.com/ndewijer/portfolio-yield-tracker/internal/testutil"
)

// TestSecretService checks that secrets are stored encrypted and round trip.
//
// WHY: Provider API keys live in the same SQLite file as the ledger; a
// plaintext copy there would leak with every backup.
func TestSecretService(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip stores ciphertext", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSecretService(t, db)
		require.True(t, svc.Enabled())

		require.NoError(t, svc.Set(ctx, "exchangerates_key", "s3cr3t"))

		raw, err := repository.NewSecretRepository(db).GetSecret(ctx, "exchangerates_key")
		require.NoError(t, err)
		assert.NotContains(t, raw, "s3cr3t")

		value, err := svc.Get(ctx, "exchangerates_key")
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", value)

		require.NoError(t, svc.Delete(ctx, "exchangerates_key"))
		_, err = svc.Get(ctx, "exchangerates_key")
		assert.ErrorIs(t, err, apperrors.ErrSecretNotFound)
	})

	t.Run("another key cannot decrypt", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		require.NoError(t, testutil.NewTestSecretService(t, db).Set(ctx, "k", "v"))

		key, err := service.GenerateSecretKey()
		require.NoError(t, err)
		other, err := service.NewSecretService(repository.NewSecretRepository(db), key)
		require.NoError(t, err)

		_, err = other.Get(ctx, "k")
		assert.Error(t, err)
	})

	t.Run("disabled without a key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc, err := service.NewSecretService(repository.NewSecretRepository(db), "")
		require.NoError(t, err)

		assert.False(t, svc.Enabled())
		assert.ErrorIs(t, svc.Set(ctx, "k", "v"), apperrors.ErrSecretsDisabled)
		_, err = svc.Get(ctx, "k")
		assert.ErrorIs(t, err, apperrors.ErrSecretsDisabled)
	})

	t.Run("malformed key", func(t *testing.T) {
		_, err := service.NewSecretService(nil, "not-a-key")
		assert.Error(t, err)
	})
}
