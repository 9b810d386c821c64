package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Enochthedev/Oink-bot-sub001/internal/app"
	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

// PaymentInitiator is the minimal interface needed to create a payment.
type PaymentInitiator interface {
	InitiatePayment(ctx context.Context, in app.InitiatePaymentInput) (domain.Transaction, error)
}

// HandleCreatePayment returns an HTTP handler for initiating payments.
func HandleCreatePayment(svc PaymentInitiator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createPaymentRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidAmount, domain.ErrInvalidAmount.Error())
			return
		}

		tx, err := svc.InitiatePayment(r.Context(), app.InitiatePaymentInput{
			SenderID:          req.SenderID,
			RecipientID:       req.RecipientID,
			Amount:            amount,
			Currency:          req.Currency,
			SenderMethodID:    req.SenderMethodID,
			RecipientMethodID: req.RecipientMethodID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toTransactionResponse(tx))
	}
}

type createPaymentRequest struct {
	SenderID          string `json:"sender_id"`
	RecipientID       string `json:"recipient_id"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency,omitempty"`
	SenderMethodID    string `json:"sender_method_id"`
	RecipientMethodID string `json:"recipient_method_id,omitempty"`
}

type feeResponse struct {
	Processing string `json:"processing"`
	Escrow     string `json:"escrow"`
	Total      string `json:"total"`
}

type transactionResponse struct {
	ID                string      `json:"id"`
	SenderID          string      `json:"sender_id"`
	RecipientID       string      `json:"recipient_id"`
	Amount            string      `json:"amount"`
	Currency          string      `json:"currency"`
	SenderMethodID    string      `json:"sender_method_id"`
	RecipientMethodID string      `json:"recipient_method_id,omitempty"`
	Fees              feeResponse `json:"fees"`
	Status            string      `json:"status"`
	FailureReason     string      `json:"failure_reason,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	CompletedAt       *time.Time  `json:"completed_at,omitempty"`
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:                tx.ID,
		SenderID:          tx.SenderID,
		RecipientID:       tx.RecipientID,
		Amount:            tx.Amount.StringFixed(2),
		Currency:          tx.Currency,
		SenderMethodID:    tx.SenderMethodID,
		RecipientMethodID: tx.RecipientMethodID,
		Fees: feeResponse{
			Processing: tx.Fees.Processing.StringFixed(2),
			Escrow:     tx.Fees.Escrow.StringFixed(2),
			Total:      tx.Fees.Total.StringFixed(2),
		},
		Status:        string(tx.Status),
		FailureReason: tx.FailureReason,
		CreatedAt:     tx.CreatedAt,
		CompletedAt:   tx.CompletedAt,
	}
}
