package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

// LedgerReader is the minimal interface needed for account-side queries.
type LedgerReader interface {
	History(ctx context.Context, accountID string, f domain.HistoryFilter) ([]domain.Transaction, error)
	AccountActivity(ctx context.Context, accountID string) (domain.AccountActivity, error)
}

// HandleAccounts routes /accounts/{id}/transactions and
// /accounts/{id}/activity.
func HandleAccounts(svc LedgerReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, resource, ok := parseAccountPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		switch resource {
		case "transactions":
			filter, err := parseHistoryFilter(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())
				return
			}
			txs, err := svc.History(r.Context(), accountID, filter)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]transactionResponse, 0, len(txs))
			for _, tx := range txs {
				resp = append(resp, toTransactionResponse(tx))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		case "activity":
			activity, err := svc.AccountActivity(r.Context(), accountID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			recent := make([]transactionResponse, 0, len(activity.Recent))
			for _, tx := range activity.Recent {
				recent = append(recent, toTransactionResponse(tx))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(activityResponse{
				AccountID:     activity.AccountID,
				SentTotal:     activity.SentTotal.StringFixed(2),
				SentCount:     activity.SentCount,
				ReceivedTotal: activity.ReceivedTotal.StringFixed(2),
				ReceivedCount: activity.ReceivedCount,
				Recent:        recent,
			})
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func parseAccountPath(path string) (id, resource string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "accounts" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func parseHistoryFilter(r *http.Request) (domain.HistoryFilter, error) {
	q := r.URL.Query()
	var f domain.HistoryFilter

	f.Direction = domain.HistoryDirection(q.Get("direction"))
	f.Status = domain.TransactionStatus(q.Get("status"))

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.HistoryFilter{}, domain.ErrInvalidFilter
		}
		f.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.HistoryFilter{}, domain.ErrInvalidFilter
		}
		f.Offset = n
	}
	return f, nil
}

type activityResponse struct {
	AccountID     string                `json:"account_id"`
	SentTotal     string                `json:"sent_total"`
	SentCount     int                   `json:"sent_count"`
	ReceivedTotal string                `json:"received_total"`
	ReceivedCount int                   `json:"received_count"`
	Recent        []transactionResponse `json:"recent"`
}
