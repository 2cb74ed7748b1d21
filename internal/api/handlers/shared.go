package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/importer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/validation"
)

// maxBodyBytes bounds JSON and CSV request bodies.
const maxBodyBytes = 10 << 20

// parseJSON decodes the request body into T, rejecting unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	var validationErr *validation.Error
	var lineErr *importer.LineError

	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrSecretNotFound):
		return http.StatusNotFound

	case errors.Is(err, apperrors.ErrDuplicateEntry):
		return http.StatusConflict

	case errors.As(err, &validationErr),
		errors.As(err, &lineErr),
		errors.Is(err, apperrors.ErrInvalidCSVHeaders),
		errors.Is(err, apperrors.ErrInvalidTransactionType),
		errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrInvalidSymbol),
		errors.Is(err, apperrors.ErrNegativeAmount),
		errors.Is(err, apperrors.ErrInvalidTaxRate),
		errors.Is(err, apperrors.ErrInvalidCurrency),
		errors.Is(err, apperrors.ErrReservedAccountID),
		errors.Is(err, apperrors.ErrEmptyID):
		return http.StatusBadRequest

	case errors.Is(err, apperrors.ErrInsufficientData),
		errors.Is(err, apperrors.ErrUndefinedYield),
		errors.Is(err, apperrors.ErrExchangeRateNotFound):
		return http.StatusUnprocessableEntity

	case errors.Is(err, apperrors.ErrMarketDataOffline):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondServiceError writes err with the status errorStatus picks. message
// is used for server errors; client errors carry the error's own text.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	status := errorStatus(err)
	if status != http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	response.RespondError(w, status, message, err.Error())
}
