package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
)

// clearEnv blanks every variable FromEnv reads so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_HOST", "SERVER_PORT", "DB_PATH", "CORS_ALLOWED_ORIGINS",
		"LOG_LEVEL", "LOG_PRETTY", "DIVIDEND_TAX_RATE", "ANNUALIZED_POLICY",
		"MISSING_PRICE_POLICY", "DIETZ_BASE", "MARKET_OFFLINE", "MARKET_CACHE_TTL",
		"MARKET_REFRESH_SCHEDULE", "MARKET_CURRENCIES", "BASE_CURRENCY", "INTERNAL_API_KEY", "SECRET_KEY",
	} {
		t.Setenv(key, "")
	}
}

// TestFromEnv_Defaults verifies the configuration produced by an empty environment.
//
// WHY: The zero Options must reproduce the historical tracker output; a drifting
// default would silently change every reported yield.
func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "localhost:5001", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, 15*time.Minute, cfg.Market.CacheTTL)
	assert.Equal(t, "USD", cfg.Market.BaseCurrency)
	assert.Equal(t, []string{"EUR"}, cfg.Market.Currencies)
	assert.False(t, cfg.Analysis.Options.DividendTaxRate.Valid)
	assert.Equal(t, analyzer.Options{}, cfg.Analysis.Options)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("DIVIDEND_TAX_RATE", "0.15")
	t.Setenv("ANNUALIZED_POLICY", "strict")
	t.Setenv("MISSING_PRICE_POLICY", "average_cost")
	t.Setenv("DIETZ_BASE", "weighted")
	t.Setenv("MARKET_OFFLINE", "1")
	t.Setenv("MARKET_CACHE_TTL", "1h")
	t.Setenv("BASE_CURRENCY", "eur")
	t.Setenv("MARKET_CURRENCIES", "usd,gbp")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Log.Pretty)
	assert.True(t, cfg.Market.Offline)
	assert.Equal(t, time.Hour, cfg.Market.CacheTTL)
	assert.Equal(t, "EUR", cfg.Market.BaseCurrency)
	assert.Equal(t, []string{"USD", "GBP"}, cfg.Market.Currencies)

	opts := cfg.Analysis.Options
	require.True(t, opts.DividendTaxRate.Valid)
	assert.Equal(t, "0.15", opts.DividendTaxRate.Decimal.String())
	assert.Equal(t, analyzer.AnnualizedStrict, opts.Annualized)
	assert.Equal(t, analyzer.MissingPriceAverageCost, opts.MissingPrice)
	assert.Equal(t, analyzer.DietzBaseWeighted, opts.DietzBase)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"DIVIDEND_TAX_RATE", "abc"},
		{"DIVIDEND_TAX_RATE", "1"},
		{"DIVIDEND_TAX_RATE", "-0.1"},
		{"ANNUALIZED_POLICY", "imaginary"},
		{"MISSING_PRICE_POLICY", "guess"},
		{"DIETZ_BASE", "textbook"},
		{"LOG_PRETTY", "sometimes"},
		{"MARKET_OFFLINE", "maybe"},
		{"MARKET_CACHE_TTL", "soon"},
		{"MARKET_REFRESH_SCHEDULE", "every day"},
		{"BASE_CURRENCY", "EURO"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
