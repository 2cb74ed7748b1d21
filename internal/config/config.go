package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Analysis AnalysisConfig
	Market   MarketConfig
	Security SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// AnalysisConfig holds the default replay options used when a request
// does not override them.
type AnalysisConfig struct {
	Options analyzer.Options
}

// MarketConfig holds market data configuration
type MarketConfig struct {
	// Offline disables every remote provider; only stored data is used.
	Offline         bool
	CacheTTL        time.Duration
	RefreshSchedule string
	BaseCurrency    string
	// Currencies are the quote currencies refreshed against BaseCurrency.
	Currencies []string
}

// SecurityConfig holds keys guarding internal endpoints and stored secrets
type SecurityConfig struct {
	InternalAPIKey string
	// SecretKey is a fernet key; empty disables the secret store.
	SecretKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Market: MarketConfig{
			RefreshSchedule: getEnv("MARKET_REFRESH_SCHEDULE", "0 22 * * 1-5"),
			BaseCurrency:    strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
			Currencies:      splitList(strings.ToUpper(getEnv("MARKET_CURRENCIES", "EUR"))),
		},
		Security: SecurityConfig{
			InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),
			SecretKey:      os.Getenv("SECRET_KEY"),
		},
	}

	var err error
	if config.Log.Pretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if config.Market.Offline, err = getBool("MARKET_OFFLINE", false); err != nil {
		return nil, err
	}
	if config.Market.CacheTTL, err = getDuration("MARKET_CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if config.Market.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(config.Market.RefreshSchedule); err != nil {
			return nil, fmt.Errorf("invalid MARKET_REFRESH_SCHEDULE: %w", err)
		}
	}
	if len(config.Market.BaseCurrency) != 3 {
		return nil, fmt.Errorf("invalid BASE_CURRENCY %q", config.Market.BaseCurrency)
	}

	if config.Analysis.Options, err = analysisOptions(); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

func analysisOptions() (analyzer.Options, error) {
	var opts analyzer.Options
	var err error

	if raw := os.Getenv("DIVIDEND_TAX_RATE"); raw != "" {
		rate, perr := decimal.NewFromString(raw)
		if perr != nil {
			return opts, fmt.Errorf("invalid DIVIDEND_TAX_RATE %q: %w", raw, perr)
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return opts, fmt.Errorf("invalid DIVIDEND_TAX_RATE %q: must be in [0, 1)", raw)
		}
		opts.DividendTaxRate = decimal.NewNullDecimal(rate)
	}
	if opts.Annualized, err = analyzer.ParseAnnualizedPolicy(os.Getenv("ANNUALIZED_POLICY")); err != nil {
		return opts, fmt.Errorf("invalid ANNUALIZED_POLICY: %w", err)
	}
	if opts.MissingPrice, err = analyzer.ParseMissingPricePolicy(os.Getenv("MISSING_PRICE_POLICY")); err != nil {
		return opts, fmt.Errorf("invalid MISSING_PRICE_POLICY: %w", err)
	}
	if opts.DietzBase, err = analyzer.ParseDietzBase(os.Getenv("DIETZ_BASE")); err != nil {
		return opts, fmt.Errorf("invalid DIETZ_BASE: %w", err)
	}
	return opts, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
