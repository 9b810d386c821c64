package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

const (
	codeMethodNotAllowed        = "method_not_allowed"
	codeNotFound                = "not_found"
	codeInvalidRequestBody      = "invalid_request_body"
	codeInvalidID               = "invalid_id"
	codeInvalidAmount           = "invalid_amount"
	codeInvalidCurrency         = "invalid_currency"
	codeSameParties             = "same_parties"
	codeInvalidFilter           = "invalid_filter"
	codeRecipientMethodRequired = "recipient_method_required"
	codeMethodNotFound          = "payment_method_not_found"
	codeMethodInactive          = "payment_method_inactive"
	codeMethodOwnerMismatch     = "payment_method_owner_mismatch"
	codeUnsupportedMethodType   = "unsupported_method_type"
	codeTransactionNotFound     = "transaction_not_found"
	codeEscrowNotFound          = "escrow_not_found"
	codeEscrowAlreadyHeld       = "escrow_already_held"
	codeInvalidState            = "invalid_state"
	codeEscrowNotHolding        = "escrow_not_holding"
	codeProcessorFailure        = "processor_failure"
	codeForbidden               = "forbidden"
	codeInternalError           = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps engine errors onto HTTP responses. Raw rail error
// text never reaches clients; processor failures get a fixed message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, codeInvalidAmount, domain.ErrInvalidAmount.Error())
	case errors.Is(err, domain.ErrInvalidCurrency):
		writeError(w, http.StatusBadRequest, codeInvalidCurrency, domain.ErrInvalidCurrency.Error())
	case errors.Is(err, domain.ErrSameParties):
		writeError(w, http.StatusBadRequest, codeSameParties, domain.ErrSameParties.Error())
	case errors.Is(err, domain.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, codeInvalidFilter, domain.ErrInvalidFilter.Error())
	case errors.Is(err, domain.ErrRecipientMethodRequired):
		writeError(w, http.StatusBadRequest, codeRecipientMethodRequired, domain.ErrRecipientMethodRequired.Error())
	case errors.Is(err, domain.ErrUnsupportedMethodType):
		writeError(w, http.StatusBadRequest, codeUnsupportedMethodType, domain.ErrUnsupportedMethodType.Error())
	case errors.Is(err, domain.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, codeTransactionNotFound, domain.ErrTransactionNotFound.Error())
	case errors.Is(err, domain.ErrEscrowNotFound):
		writeError(w, http.StatusNotFound, codeEscrowNotFound, domain.ErrEscrowNotFound.Error())
	case errors.Is(err, domain.ErrMethodNotFound):
		writeError(w, http.StatusNotFound, codeMethodNotFound, domain.ErrMethodNotFound.Error())
	case errors.Is(err, domain.ErrMethodInactive):
		writeError(w, http.StatusConflict, codeMethodInactive, domain.ErrMethodInactive.Error())
	case errors.Is(err, domain.ErrMethodOwnerMismatch):
		writeError(w, http.StatusConflict, codeMethodOwnerMismatch, domain.ErrMethodOwnerMismatch.Error())
	case errors.Is(err, domain.ErrEscrowAlreadyHeld):
		writeError(w, http.StatusConflict, codeEscrowAlreadyHeld, domain.ErrEscrowAlreadyHeld.Error())
	case errors.Is(err, domain.ErrEscrowNotHolding):
		writeError(w, http.StatusConflict, codeEscrowNotHolding, domain.ErrEscrowNotHolding.Error())
	case errors.Is(err, domain.ErrInvalidTransactionState):
		writeError(w, http.StatusConflict, codeInvalidState, domain.ErrInvalidTransactionState.Error())
	case errors.Is(err, domain.ErrProcessorFailure):
		writeError(w, http.StatusBadGateway, codeProcessorFailure, "payment processor rejected the operation")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
