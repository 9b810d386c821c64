package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

// TransactionReader is the minimal interface needed to fetch one transaction.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
}

// PaymentSettler is the minimal interface needed to settle an escrowed
// payment in either direction.
type PaymentSettler interface {
	ReleasePayment(ctx context.Context, transactionID, recipientMethodID string) (domain.Transaction, error)
	ReturnPayment(ctx context.Context, transactionID string) (domain.Transaction, error)
}

// HandlePayment routes /payments/{id} and its release/return sub-resources.
func HandlePayment(reader TransactionReader, settler PaymentSettler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txID, action, ok := parsePaymentPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			tx, err := reader.GetTransaction(r.Context(), txID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toTransactionResponse(tx))
		case "release":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			var req releasePaymentRequest
			if r.Body != nil && r.ContentLength != 0 {
				dec := json.NewDecoder(r.Body)
				dec.DisallowUnknownFields()
				if err := dec.Decode(&req); err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
					return
				}
			}
			tx, err := settler.ReleasePayment(r.Context(), txID, req.RecipientMethodID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toTransactionResponse(tx))
		case "return":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			tx, err := settler.ReturnPayment(r.Context(), txID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toTransactionResponse(tx))
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

// parsePaymentPath accepts /payments/{id} and /payments/{id}/{action}.
func parsePaymentPath(path string) (id, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", false
	}
	if parts[0] != "payments" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 3 {
		if parts[2] == "" {
			return "", "", false
		}
		return parts[1], parts[2], true
	}
	return parts[1], "", true
}

type releasePaymentRequest struct {
	RecipientMethodID string `json:"recipient_method_id,omitempty"`
}
