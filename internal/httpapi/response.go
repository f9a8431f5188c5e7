package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atmledger/ledger-service/internal/domain"
)

// errorBody is the error envelope returned for every failed request.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func sendError(w http.ResponseWriter, status int, code, message string) {
	sendJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// sendDomainError maps ledger errors to HTTP statuses. Every mapped error
// is a recoverable outcome for the caller; only STORAGE_UNAVAILABLE is
// worth retrying unchanged.
func sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		sendError(w, http.StatusBadRequest, "INVALID_AMOUNT", domain.ErrInvalidAmount.Error())
	case errors.Is(err, domain.ErrSameAccount):
		sendError(w, http.StatusBadRequest, "SAME_ACCOUNT", domain.ErrSameAccount.Error())
	case errors.Is(err, domain.ErrSourceAccountNotFound):
		sendError(w, http.StatusNotFound, "SOURCE_ACCOUNT_NOT_FOUND", domain.ErrSourceAccountNotFound.Error())
	case errors.Is(err, domain.ErrDestinationAccountNotFound):
		sendError(w, http.StatusNotFound, "DESTINATION_ACCOUNT_NOT_FOUND", domain.ErrDestinationAccountNotFound.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		sendError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", domain.ErrAccountNotFound.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		sendError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", domain.ErrInsufficientFunds.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		sendError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", domain.ErrStorageUnavailable.Error())
	default:
		sendError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
