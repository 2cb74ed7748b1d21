package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
	"github.com/ndewijer/portfolio-yield-tracker/internal/validation"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependency.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// Accounts handles GET requests to list every account.
//
// Endpoint: GET /api/account
// Response: 200 OK with array of Account
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.GetAccounts(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccounts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, accounts)
}

// GetAccount handles GET requests to retrieve a single account.
//
// Endpoint: GET /api/account/{accountId}
// Response: 200 OK with Account
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the account does not exist
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetAccount(r.Context(), chi.URLParam(r, "accountId"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveAccounts.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// CreateAccount handles POST requests to create an account.
//
// Endpoint: POST /api/account
// Request Body: CreateAccountRequest (name required; id optional)
// Response: 201 Created with Account
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the ID is taken
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateAccount(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.accountService.CreateAccount(r.Context(), req)
	if err != nil {
		respondServiceError(w, "failed to create account", err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// UpdateAccount handles PUT requests to change account metadata.
//
// Endpoint: PUT /api/account/{accountId}
// Request Body: UpdateAccountRequest (all fields optional)
// Response: 200 OK with updated Account
// Error: 404 Not Found if the account does not exist
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateAccount(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.accountService.UpdateAccount(r.Context(), chi.URLParam(r, "accountId"), req)
	if err != nil {
		respondServiceError(w, "failed to update account", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// DeleteAccount handles DELETE requests. The account's transactions go with it.
//
// Endpoint: DELETE /api/account/{accountId}
// Response: 204 No Content
// Error: 404 Not Found if the account does not exist
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accountService.DeleteAccount(r.Context(), chi.URLParam(r, "accountId")); err != nil {
		respondServiceError(w, "failed to delete account", err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
