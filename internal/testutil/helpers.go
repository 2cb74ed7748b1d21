package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/cache"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
)

// TestSecretKey is a fixed fernet key for tests that need the secret store.
const TestSecretKey = "oXMnADTHilAp6xGUFKqPYSkoXvVfX0DBNs6T9suaqsM="

func NewTestAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()

	return service.NewAccountService(repository.NewAccountRepository(db))
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		db,
		repository.NewTransactionRepository(db),
		repository.NewAccountRepository(db),
	)
}

// NewTestMarketDataService wires a MarketDataService without a cache so every
// call reaches the providers or the database.
func NewTestMarketDataService(t *testing.T, db *sql.DB, providers service.MarketProviders) *service.MarketDataService {
	t.Helper()

	return service.NewMarketDataService(
		db,
		repository.NewMarketRepository(db),
		repository.NewTransactionRepository(db),
		providers,
		cache.New(0),
		false,
		zerolog.Nop(),
	)
}

// NewTestAnalysisService wires an AnalysisService with USD as base currency.
// A nil provider falls back to whatever prices and dividends are stored.
func NewTestAnalysisService(t *testing.T, db *sql.DB, provider *MockMarketProvider, opts analyzer.Options) *service.AnalysisService {
	t.Helper()

	var providers service.MarketProviders
	if provider != nil {
		providers = provider.Providers()
	}

	return service.NewAnalysisService(
		repository.NewTransactionRepository(db),
		repository.NewAccountRepository(db),
		NewTestMarketDataService(t, db, providers),
		opts,
		"USD",
		zerolog.Nop(),
	)
}

func NewTestSecretService(t *testing.T, db *sql.DB) *service.SecretService {
	t.Helper()

	s, err := service.NewSecretService(repository.NewSecretRepository(db), TestSecretKey)
	if err != nil {
		t.Fatalf("Failed to create secret service: %v", err)
	}
	return s
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("VTI")
//	// Returns: "VTI1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeAccountName generates a unique account name for testing.
//
// Example usage:
//
//	name := testutil.MakeAccountName("Brokerage")
//	// Returns: "Brokerage ABC123"
func MakeAccountName(base string) string {
	if base == "" {
		base = "Account"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
