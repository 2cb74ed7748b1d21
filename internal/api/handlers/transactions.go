package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
	"github.com/ndewijer/portfolio-yield-tracker/internal/validation"
)

// TransactionHandler handles HTTP requests for ledger endpoints.
// It parses requests and delegates to the TransactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// parseTransactionFilter reads the account, symbol, from and to query parameters.
func parseTransactionFilter(q url.Values) (repository.TransactionFilter, error) {
	filter := repository.TransactionFilter{
		AccountID: q.Get("account"),
		Symbol:    model.NormalizeSymbol(q.Get("symbol")),
	}
	if v := q.Get("from"); v != "" {
		from, err := model.ParseDate(v)
		if err != nil {
			return filter, fmt.Errorf("invalid from: %w", err)
		}
		filter.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := model.ParseDate(v)
		if err != nil {
			return filter, fmt.Errorf("invalid to: %w", err)
		}
		filter.To = to
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return filter, fmt.Errorf("from %s is after to %s", q.Get("from"), q.Get("to"))
	}
	return filter, nil
}

// Transactions handles GET requests to list ledger entries.
//
// Endpoint: GET /api/transaction
// Query Parameters:
//   - account: only this account
//   - symbol: only this symbol
//   - from, to: inclusive YYYY-MM-DD bounds
//
// Response: 200 OK with array of Transaction ordered by date
// Error: 400 Bad Request if a query parameter is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	transactions, err := h.transactionService.GetTransactions(r.Context(), filter)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with Transaction
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.transactionService.GetTransaction(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTransactions.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// CreateTransaction handles POST requests to add a ledger entry.
//
// Endpoint: POST /api/transaction
// Request Body: CreateTransactionRequest
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the account does not exist
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, err := h.transactionService.CreateTransaction(r.Context(), req)
	if err != nil {
		respondServiceError(w, "failed to create transaction", err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// UpdateTransaction handles PUT requests to change a ledger entry.
//
// Endpoint: PUT /api/transaction/{uuid}
// Request Body: UpdateTransactionRequest (all fields optional)
// Response: 200 OK with updated Transaction
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the transaction or target account does not exist
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, "failed to update transaction", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to remove a ledger entry.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if transaction not found
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.transactionService.DeleteTransaction(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, "failed to delete transaction", err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ImportCSV handles POST requests carrying a CSV ledger as the raw body.
// The import is all or nothing.
//
// Endpoint: POST /api/transaction/import
// Query Parameters:
//   - account: account for rows without one (default "default")
//
// Response: 201 Created with ImportResult
// Error: 400 Bad Request with the offending line if a row is invalid
func (h *TransactionHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	result, err := h.transactionService.ImportCSV(r.Context(), body, r.URL.Query().Get("account"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToImportTransactions.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// ExportCSV handles GET requests to download the ledger in import format.
//
// Endpoint: GET /api/transaction/export
// Query Parameters: same as Transactions
// Response: 200 OK with text/csv attachment
func (h *TransactionHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.transactionService.ExportCSV(r.Context(), &buf, filter); err != nil {
		respondServiceError(w, "failed to export transactions", err)
		return
	}

	response.RespondCSV(w, "transactions.csv", buf.Bytes())
}
