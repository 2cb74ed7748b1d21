// Package importer reads and writes transaction ledgers as CSV.
//
// The header row is required and must name every column in Columns; extra
// columns are ignored. Dates are YYYY-MM-DD, amounts are plain decimals.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// Columns lists the required header names in export order.
var Columns = []string{"account_id", "symbol", "date", "type", "quantity", "price_per_share"}

// Row is one CSV line. Every field stays a string so parse errors can name the line.
type Row struct {
	AccountID     string `csv:"account_id"`
	Symbol        string `csv:"symbol"`
	Date          string `csv:"date"`
	Type          string `csv:"type"`
	Quantity      string `csv:"quantity"`
	PricePerShare string `csv:"price_per_share"`
}

// LineError reports a malformed row. Line counts the header as line 1.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Read parses a CSV ledger. Rows come back in file order without IDs;
// a row with an empty account_id keeps it empty.
func Read(r io.Reader) ([]model.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if err := checkHeader(data); err != nil {
		return nil, err
	}

	var rows []Row
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	out := make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		t, err := row.Transaction()
		if err != nil {
			return nil, &LineError{Line: i + 2, Err: err}
		}
		out = append(out, t)
	}
	return out, nil
}

func checkHeader(data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return fmt.Errorf("%w: empty file", apperrors.ErrInvalidCSVHeaders)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidCSVHeaders, err)
	}

	var missing []string
	for _, col := range Columns {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", apperrors.ErrInvalidCSVHeaders, strings.Join(missing, ", "))
	}
	return nil
}

// Transaction converts and validates the row.
func (r Row) Transaction() (model.Transaction, error) {
	date, err := model.ParseDate(r.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	typ, err := model.ParseTransactionType(r.Type)
	if err != nil {
		return model.Transaction{}, err
	}
	qty, err := parseAmount("quantity", r.Quantity)
	if err != nil {
		return model.Transaction{}, err
	}
	price, err := parseAmount("price_per_share", r.PricePerShare)
	if err != nil {
		return model.Transaction{}, err
	}

	t := model.Transaction{
		AccountID:     strings.TrimSpace(r.AccountID),
		Symbol:        model.NormalizeSymbol(r.Symbol),
		Date:          date,
		Type:          typ,
		Quantity:      qty,
		PricePerShare: price,
	}
	if err := t.Validate(); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s %q: %w", field, s, err)
	}
	return d, nil
}

// Write exports transactions in Columns order with a header row.
func Write(w io.Writer, transactions []model.Transaction) error {
	rows := make([]Row, len(transactions))
	for i, t := range transactions {
		rows[i] = Row{
			AccountID:     t.AccountID,
			Symbol:        t.Symbol,
			Date:          t.Date.Format(model.DateFormat),
			Type:          string(t.Type),
			Quantity:      t.Quantity.String(),
			PricePerShare: t.PricePerShare.String(),
		}
	}
	if len(rows) == 0 {
		// An empty ledger still gets its header so the file re-imports.
		cw := csv.NewWriter(w)
		if err := cw.Write(Columns); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}
	return gocsv.Marshal(&rows, w)
}
