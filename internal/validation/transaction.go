package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

// ValidateCreateTransaction validates a transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - accountId: Must be a valid account ID
//   - symbol: Must not be blank
//   - date: Must be in YYYY-MM-DD format
//   - type: Must be one of: buy, sell, dividend
//   - quantity: Must not be negative
//   - pricePerShare: Must not be negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if err := ValidateAccountID(req.AccountID); err != nil {
		errors["accountId"] = err.Error()
	}

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := model.ParseDate(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if _, err := model.ParseTransactionType(req.Type); err != nil {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.Quantity.IsNegative() {
		errors["quantity"] = "quantity must not be negative"
	}

	if req.PricePerShare.IsNegative() {
		errors["pricePerShare"] = "pricePerShare must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateTransaction validates a transaction update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateTransaction(req request.UpdateTransactionRequest) error {
	errors := make(map[string]string)

	if req.AccountID != nil {
		if err := ValidateAccountID(*req.AccountID); err != nil {
			errors["accountId"] = err.Error()
		}
	}
	if req.Symbol != nil && strings.TrimSpace(*req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if req.Date != nil {
		if _, err := model.ParseDate(*req.Date); err != nil {
			errors["date"] = err.Error()
		}
	}
	if req.Type != nil {
		if _, err := model.ParseTransactionType(*req.Type); err != nil {
			errors["type"] = fmt.Sprintf("invalid type: %s", *req.Type)
		}
	}
	if req.Quantity != nil && req.Quantity.IsNegative() {
		errors["quantity"] = "quantity must not be negative"
	}
	if req.PricePerShare != nil && req.PricePerShare.IsNegative() {
		errors["pricePerShare"] = "pricePerShare must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
