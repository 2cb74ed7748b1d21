package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// MarketRepository stores the market data fetched from providers: prices,
// dividend history and exchange rates. It is the fallback when a provider
// is unreachable and the only source in offline mode.
type MarketRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewMarketRepository creates a new MarketRepository with the provided database connection.
func NewMarketRepository(db *sql.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *MarketRepository) WithTx(tx *sql.Tx) *MarketRepository {
	return &MarketRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *MarketRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// UpsertPrice stores a quote, replacing any quote for the same symbol and date.
func (r *MarketRepository) UpsertPrice(ctx context.Context, p model.SymbolPrice) error {
	query := `
		INSERT INTO symbol_price (symbol, date, close, adj_close, currency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			close = excluded.close,
			adj_close = excluded.adj_close,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.Symbol,
		formatDate(p.Date),
		p.Close.String(),
		p.AdjClose.String(),
		p.Currency,
		formatTimestamp(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert symbol_price: %w", err)
	}
	return nil
}

// GetLatestPrices returns the most recent stored quote per symbol.
// Symbols without any stored quote are absent from the result.
func (r *MarketRepository) GetLatestPrices(ctx context.Context, symbols []string) (map[string]model.SymbolPrice, error) {
	result := make(map[string]model.SymbolPrice)
	if len(symbols) == 0 {
		return result, nil
	}

	query := `
		SELECT sp.symbol, sp.date, sp.close, sp.adj_close, sp.currency, sp.updated_at
		FROM symbol_price sp
		INNER JOIN (
			SELECT symbol, MAX(date) AS latest_date
			FROM symbol_price
			WHERE symbol IN (` + placeholders(len(symbols)) + `)
			GROUP BY symbol
		) latest ON sp.symbol = latest.symbol AND sp.date = latest.latest_date
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, stringArgs(symbols)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbol_price table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.SymbolPrice
		var dateStr, updatedAtStr string
		if err := rows.Scan(&p.Symbol, &dateStr, &p.Close, &p.AdjClose, &p.Currency, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan symbol_price table results: %w", err)
		}
		if p.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if p.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
			return nil, err
		}
		result[p.Symbol] = p
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbol_price table: %w", err)
	}
	return result, nil
}

// ReplaceDividends stores the full dividend history of symbol, replacing what was stored.
func (r *MarketRepository) ReplaceDividends(ctx context.Context, symbol string, events []model.DividendEvent) error {
	q := r.getQuerier()

	if _, err := q.ExecContext(ctx, `DELETE FROM dividend_event WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("failed to clear dividend_event: %w", err)
	}

	query := `
		INSERT INTO dividend_event (symbol, ex_date, amount)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol, ex_date) DO UPDATE SET amount = excluded.amount
	`
	for _, e := range events {
		if _, err := q.ExecContext(ctx, query, symbol, formatDate(e.ExDate), e.Amount.String()); err != nil {
			return fmt.Errorf("failed to insert dividend_event: %w", err)
		}
	}
	return nil
}

// GetDividends returns the stored dividend history per symbol in ex-date order.
func (r *MarketRepository) GetDividends(ctx context.Context, symbols []string) (map[string][]model.DividendEvent, error) {
	result := make(map[string][]model.DividendEvent)
	if len(symbols) == 0 {
		return result, nil
	}

	query := `
		SELECT symbol, ex_date, amount
		FROM dividend_event
		WHERE symbol IN (` + placeholders(len(symbols)) + `)
		ORDER BY symbol ASC, ex_date ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, stringArgs(symbols)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend_event table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e model.DividendEvent
		var dateStr string
		if err := rows.Scan(&e.Symbol, &dateStr, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan dividend_event table results: %w", err)
		}
		if e.ExDate, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		result[e.Symbol] = append(result[e.Symbol], e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend_event table: %w", err)
	}
	return result, nil
}

// UpsertExchangeRate stores a rate, replacing any rate for the same pair and date.
func (r *MarketRepository) UpsertExchangeRate(ctx context.Context, rate model.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rate (base, quote, date, rate, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(base, quote, date) DO UPDATE SET
			rate = excluded.rate,
			updated_at = excluded.updated_at
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		rate.Base,
		rate.Quote,
		formatDate(rate.Date),
		rate.Rate.String(),
		formatTimestamp(rate.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange_rate: %w", err)
	}
	return nil
}

// GetLatestExchangeRate returns the most recent stored rate for base/quote.
// Returns apperrors.ErrExchangeRateNotFound when none is stored.
func (r *MarketRepository) GetLatestExchangeRate(ctx context.Context, base, quote string) (model.ExchangeRate, error) {
	query := `
		SELECT base, quote, date, rate, updated_at
		FROM exchange_rate
		WHERE base = ? AND quote = ?
		ORDER BY date DESC
		LIMIT 1
	`

	var rate model.ExchangeRate
	var dateStr, updatedAtStr string
	err := r.getQuerier().QueryRowContext(ctx, query, base, quote).Scan(
		&rate.Base,
		&rate.Quote,
		&dateStr,
		&rate.Rate,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExchangeRate{}, apperrors.ErrExchangeRateNotFound
	}
	if err != nil {
		return model.ExchangeRate{}, fmt.Errorf("failed to scan exchange_rate table results: %w", err)
	}

	if rate.Date, err = ParseTime(dateStr); err != nil {
		return model.ExchangeRate{}, err
	}
	if rate.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.ExchangeRate{}, err
	}
	return rate, nil
}
