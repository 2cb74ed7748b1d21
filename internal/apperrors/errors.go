package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAccountNotFound indicates that an account with the given ID does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrExchangeRateNotFound indicates that no provider or stored record could supply a rate.
	ErrExchangeRateNotFound = errors.New("exchange rate not found")

	// ErrSecretNotFound indicates that no secret is stored under the given name.
	ErrSecretNotFound = errors.New("secret not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidTransactionType indicates a transaction type other than buy, sell or dividend.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidSymbol indicates an empty or malformed instrument symbol.
	ErrInvalidSymbol = errors.New("symbol is required")

	// ErrInvalidDate indicates a date that is missing or not in YYYY-MM-DD format.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrReservedAccountID indicates an account ID that collides with the aggregate "total" entry.
	ErrReservedAccountID = errors.New("account ID is reserved")

	// ErrInvalidTaxRate indicates a dividend tax rate outside [0, 1).
	ErrInvalidTaxRate = errors.New("dividend tax rate must be in [0, 1)")

	// ErrInvalidCurrency indicates a currency code that is not three letters.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidCSVHeaders indicates an import file missing required columns.
	ErrInvalidCSVHeaders = errors.New("invalid CSV headers")

	// ErrMarketDataOffline indicates a refresh was requested while providers are disabled.
	ErrMarketDataOffline = errors.New("market data providers are offline")

	// ErrSecretsDisabled indicates that no encryption key is configured for the secret store.
	ErrSecretsDisabled = errors.New("secret store is not configured")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrieveAccounts     = errors.New("failed to retrieve accounts")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToImportTransactions   = errors.New("failed to import transactions")
	ErrFailedToAnalyzePortfolio     = errors.New("failed to analyze portfolio")
	ErrFailedToRefreshMarketData    = errors.New("failed to refresh market data")
)
