package request

import "github.com/shopspring/decimal"

// CreateTransactionRequest represents the request body for creating a transaction.
// Quantity and PricePerShare accept JSON numbers or numeric strings.
type CreateTransactionRequest struct {
	AccountID     string          `json:"accountId"`
	Symbol        string          `json:"symbol"`
	Date          string          `json:"date"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
}

type UpdateTransactionRequest struct {
	AccountID     *string          `json:"accountId,omitempty"`
	Symbol        *string          `json:"symbol,omitempty"`
	Date          *string          `json:"date,omitempty"`
	Type          *string          `json:"type,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	PricePerShare *decimal.Decimal `json:"pricePerShare,omitempty"`
}
