package testutil

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// Date parses a YYYY-MM-DD literal and fails the test on error.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("Invalid test date %q: %v", s, err)
	}
	return d
}

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	// Simple creation with defaults
//	account := testutil.NewAccount().Build(t, db)
//
//	// Customized account
//	account := testutil.NewAccount().
//	    WithID("brokerage").
//	    WithOwner("Sam").
//	    WithTags("taxable", "us").
//	    Build(t, db)
type AccountBuilder struct {
	ID          string
	Name        string
	Owner       string
	Institution string
	Tags        []string
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:          MakeID(),
		Name:        MakeAccountName("Test Account"),
		Owner:       "Test Owner",
		Institution: "Test Broker",
		Tags:        []string{},
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.Name = name
	return b
}

// WithOwner sets the owner.
func (b *AccountBuilder) WithOwner(owner string) *AccountBuilder {
	b.Owner = owner
	return b
}

// WithTags sets the tags.
func (b *AccountBuilder) WithTags(tags ...string) *AccountBuilder {
	b.Tags = tags
	return b
}

// Build creates the account in the database.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO account (id, name, owner, institution, institution_id, description, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, '', '', ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Owner, b.Institution, strings.Join(b.Tags, ","),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}

	return model.Account{
		ID:          b.ID,
		Name:        b.Name,
		Owner:       b.Owner,
		Institution: b.Institution,
		Tags:        b.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransactionBuilder provides a fluent interface for creating transactions
type TransactionBuilder struct {
	ID            string
	AccountID     string
	Symbol        string
	Date          time.Time
	Type          model.TransactionType
	Quantity      decimal.Decimal
	PricePerShare decimal.Decimal
	CreatedAt     time.Time
}

// NewTransaction creates a TransactionBuilder with defaults: a buy of
// 10 shares at 100 on 2020-01-01.
func NewTransaction(accountID, symbol string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:            MakeID(),
		AccountID:     accountID,
		Symbol:        symbol,
		Date:          time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:          model.TransactionTypeBuy,
		Quantity:      decimal.NewFromInt(10),
		PricePerShare: decimal.NewFromInt(100),
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

// WithID sets a custom ID
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithDate sets the transaction date
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// WithType sets the transaction type
func (b *TransactionBuilder) WithType(txType model.TransactionType) *TransactionBuilder {
	b.Type = txType
	return b
}

// Sell marks the transaction as a sell
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.TransactionTypeSell
	return b
}

// WithQuantity sets the number of shares
func (b *TransactionBuilder) WithQuantity(qty string) *TransactionBuilder {
	b.Quantity = decimal.RequireFromString(qty)
	return b
}

// WithPrice sets the price per share
func (b *TransactionBuilder) WithPrice(price string) *TransactionBuilder {
	b.PricePerShare = decimal.RequireFromString(price)
	return b
}

// WithCreatedAt sets the insertion timestamp, which orders same-day rows.
func (b *TransactionBuilder) WithCreatedAt(ts time.Time) *TransactionBuilder {
	b.CreatedAt = ts.UTC().Truncate(time.Second)
	return b
}

// Build creates the transaction in the database
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, account_id, symbol, date, type, quantity, price_per_share, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.AccountID, b.Symbol, b.Date.Format("2006-01-02"), string(b.Type),
		b.Quantity.String(), b.PricePerShare.String(), b.CreatedAt.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	return model.Transaction{
		ID:            b.ID,
		AccountID:     b.AccountID,
		Symbol:        b.Symbol,
		Date:          b.Date,
		Type:          b.Type,
		Quantity:      b.Quantity,
		PricePerShare: b.PricePerShare,
		CreatedAt:     b.CreatedAt,
	}
}

// CreatePrice stores a quote for symbol on date with close = adjusted close.
func CreatePrice(t *testing.T, db *sql.DB, symbol string, date time.Time, price string) model.SymbolPrice {
	t.Helper()

	p := model.SymbolPrice{
		Symbol:    symbol,
		Date:      date,
		Close:     decimal.RequireFromString(price),
		AdjClose:  decimal.RequireFromString(price),
		Currency:  "USD",
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, err := db.Exec(`
		INSERT INTO symbol_price (symbol, date, close, adj_close, currency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Symbol, p.Date.Format("2006-01-02"), price, price, p.Currency, p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create price: %v", err)
	}
	return p
}

// CreateDividendEvent stores a per-share dividend for symbol.
func CreateDividendEvent(t *testing.T, db *sql.DB, symbol string, exDate time.Time, amount string) model.DividendEvent {
	t.Helper()

	_, err := db.Exec(`INSERT INTO dividend_event (symbol, ex_date, amount) VALUES (?, ?, ?)`,
		symbol, exDate.Format("2006-01-02"), amount)
	if err != nil {
		t.Fatalf("Failed to create dividend event: %v", err)
	}
	return model.DividendEvent{Symbol: symbol, ExDate: exDate, Amount: decimal.RequireFromString(amount)}
}

// CreateExchangeRate stores base/quote = rate on date.
func CreateExchangeRate(t *testing.T, db *sql.DB, base, quote string, date time.Time, rate string) model.ExchangeRate {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	_, err := db.Exec(`
		INSERT INTO exchange_rate (base, quote, date, rate, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, base, quote, date.Format("2006-01-02"), rate, now.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create exchange rate: %v", err)
	}
	return model.ExchangeRate{Base: base, Quote: quote, Date: date, Rate: decimal.RequireFromString(rate), UpdatedAt: now}
}
