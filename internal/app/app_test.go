package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-yield-tracker/internal/config"
	"github.com/ndewijer/portfolio-yield-tracker/internal/database"
	"github.com/ndewijer/portfolio-yield-tracker/internal/fx"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
	"github.com/ndewijer/portfolio-yield-tracker/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Path: database.MemoryPath},
		Market: config.MarketConfig{
			Offline:         true,
			RefreshSchedule: "0 22 * * 1-5",
			BaseCurrency:    "USD",
			Currencies:      []string{"EUR"},
		},
	}
}

func TestNew(t *testing.T) {
	a, err := New(context.Background(), testConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	job := a.RefreshJob()
	assert.Equal(t, "USD", job.Base)
	assert.Equal(t, []string{"EUR"}, job.Currencies)

	assert.False(t, a.Secrets.Enabled())
}

func TestNew_InvalidSecretKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security.SecretKey = "not-a-key"

	_, err := New(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "invalid secret key")
}

func TestScheduler(t *testing.T) {
	t.Run("offline has no scheduler", func(t *testing.T) {
		a, err := New(context.Background(), testConfig(), zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = a.Close() })

		s, err := a.Scheduler()
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("online registers the refresh job", func(t *testing.T) {
		cfg := testConfig()
		cfg.Market.Offline = false
		a, err := New(context.Background(), cfg, zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = a.Close() })

		s, err := a.Scheduler()
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("bad schedule", func(t *testing.T) {
		cfg := testConfig()
		cfg.Market.Offline = false
		cfg.Market.RefreshSchedule = "whenever"
		a, err := New(context.Background(), cfg, zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = a.Close() })

		_, err = a.Scheduler()
		assert.ErrorContains(t, err, "market-refresh")
	})
}

// TestMarketProviders checks apilayer is only consulted with a secret store.
func TestMarketProviders(t *testing.T) {
	db := testutil.SetupTestDB(t)

	disabled, err := service.NewSecretService(repository.NewSecretRepository(db), "")
	require.NoError(t, err)
	assert.Len(t, marketProviders(disabled).Rates, 1)

	rates := marketProviders(testutil.NewTestSecretService(t, db)).Rates
	require.Len(t, rates, 2)
	_, isAPILayer := rates[0].(*fx.Client)
	assert.True(t, isAPILayer)
}
