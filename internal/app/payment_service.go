package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Enochthedev/Oink-bot-sub001/internal/clock"
	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

// MethodDirectory resolves payment-method ids. Method storage and encryption
// belong to account management; the engine only validates ownership and
// liveness before moving money.
type MethodDirectory interface {
	GetMethod(ctx context.Context, methodID string) (domain.PaymentMethod, error)
}

// LedgerRepository is the persistence surface for transaction records and the
// read-side queries over them.
type LedgerRepository interface {
	CreateTransaction(ctx context.Context, tx domain.Transaction) error
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, from, to domain.TransactionStatus) error
	MarkTransactionFailed(ctx context.Context, id, reason string) error
	ListTransactionsByAccount(ctx context.Context, accountID string, f domain.HistoryFilter) ([]domain.Transaction, error)
	AccountActivity(ctx context.Context, accountID string, recentLimit int) (domain.AccountActivity, error)
}

const defaultCurrency = "USD"

// PaymentService is the entry point of the engine: it validates a payment
// request, opens the transaction record and delegates fund custody to the
// escrow manager.
type PaymentService struct {
	ledger  LedgerRepository
	escrow  *EscrowService
	fees    *FeeCalculator
	methods MethodDirectory
	clock   clock.Clock
	logger  *slog.Logger
}

func NewPaymentService(ledger LedgerRepository, escrow *EscrowService, fees *FeeCalculator, methods MethodDirectory, clk clock.Clock, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		ledger:  ledger,
		escrow:  escrow,
		fees:    fees,
		methods: methods,
		clock:   clk,
		logger:  logger,
	}
}

type InitiatePaymentInput struct {
	SenderID          string
	RecipientID       string
	Amount            decimal.Decimal
	Currency          string
	SenderMethodID    string
	RecipientMethodID string // optional until release
}

// InitiatePayment validates the request, records a pending transaction and
// holds the funds. After it returns, the transaction is either escrowed or
// failed, never pending.
func (s *PaymentService) InitiatePayment(ctx context.Context, in InitiatePaymentInput) (domain.Transaction, error) {
	if in.SenderID == "" || in.RecipientID == "" || in.SenderMethodID == "" {
		return domain.Transaction{}, domain.ErrInvalidID
	}
	if in.SenderID == in.RecipientID {
		return domain.Transaction{}, domain.ErrSameParties
	}
	if !in.Amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return domain.Transaction{}, err
	}

	senderMethod, err := s.resolveMethod(ctx, in.SenderMethodID, in.SenderID)
	if err != nil {
		return domain.Transaction{}, err
	}

	recipientMethodID := ""
	if in.RecipientMethodID != "" {
		m, err := s.resolveMethod(ctx, in.RecipientMethodID, in.RecipientID)
		if err != nil {
			return domain.Transaction{}, err
		}
		recipientMethodID = m.ID
	}

	fees, err := s.fees.Calculate(ctx, in.Amount, senderMethod.Type)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx := domain.Transaction{
		ID:                newID(),
		SenderID:          in.SenderID,
		RecipientID:       in.RecipientID,
		Amount:            in.Amount.Round(2),
		Currency:          currency,
		SenderMethodID:    senderMethod.ID,
		SenderMethodType:  senderMethod.Type,
		RecipientMethodID: recipientMethodID,
		Fees:              fees,
		Status:            domain.TransactionPending,
		CreatedAt:         s.clock.Now(),
	}
	if err := s.ledger.CreateTransaction(ctx, tx); err != nil {
		return domain.Transaction{}, err
	}

	if _, err := s.escrow.HoldFunds(ctx, tx.ID, senderMethod); err != nil {
		// The record must never stay pending once this call returns.
		if markErr := s.ledger.MarkTransactionFailed(ctx, tx.ID, err.Error()); markErr != nil {
			s.logger.Error("failed to mark transaction after hold failure",
				"transaction_id", tx.ID, "error", markErr)
		}
		return domain.Transaction{}, fmt.Errorf("hold funds: %w", err)
	}

	return s.ledger.GetTransaction(ctx, tx.ID)
}

// ReleasePayment resolves the recipient's method and releases the escrowed
// funds to it. With no explicit method id it falls back to the method chosen
// at initiation.
func (s *PaymentService) ReleasePayment(ctx context.Context, transactionID, recipientMethodID string) (domain.Transaction, error) {
	tx, err := s.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}

	methodID := recipientMethodID
	if methodID == "" {
		methodID = tx.RecipientMethodID
	}
	if methodID == "" {
		return domain.Transaction{}, domain.ErrRecipientMethodRequired
	}

	method, err := s.resolveMethod(ctx, methodID, tx.RecipientID)
	if err != nil {
		return domain.Transaction{}, err
	}

	return s.escrow.ReleaseFunds(ctx, transactionID, method)
}

// ReturnPayment reverses the hold back to the sender.
func (s *PaymentService) ReturnPayment(ctx context.Context, transactionID string) (domain.Transaction, error) {
	return s.escrow.ReturnFunds(ctx, transactionID)
}

// PaymentRequest carries the terms of a request-based flow. The request
// lifecycle itself is tracked by the caller; only approval has a monetary
// effect here.
type PaymentRequest struct {
	ID            string
	PayerID       string // becomes the sender once approved
	PayeeID       string // the requester, paid on approval
	Amount        decimal.Decimal
	Currency      string
	PayerMethodID string
	PayeeMethodID string
}

// ProcessPaymentRequest turns an approved request into a payment. A declined
// request performs no monetary action and yields no transaction.
func (s *PaymentService) ProcessPaymentRequest(ctx context.Context, req PaymentRequest, approved bool) (*domain.Transaction, error) {
	if !approved {
		s.logger.Info("payment request declined", "request_id", req.ID)
		return nil, nil
	}

	tx, err := s.InitiatePayment(ctx, InitiatePaymentInput{
		SenderID:          req.PayerID,
		RecipientID:       req.PayeeID,
		Amount:            req.Amount,
		Currency:          req.Currency,
		SenderMethodID:    req.PayerMethodID,
		RecipientMethodID: req.PayeeMethodID,
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *PaymentService) resolveMethod(ctx context.Context, methodID, ownerID string) (domain.PaymentMethod, error) {
	m, err := s.methods.GetMethod(ctx, methodID)
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	if m.OwnerID != ownerID {
		return domain.PaymentMethod{}, domain.ErrMethodOwnerMismatch
	}
	if !m.Active {
		return domain.PaymentMethod{}, domain.ErrMethodInactive
	}
	return m, nil
}

func normalizeCurrency(c string) (string, error) {
	if c == "" {
		return defaultCurrency, nil
	}
	if len(c) != 3 {
		return "", domain.ErrInvalidCurrency
	}
	up := strings.ToUpper(c)
	for _, r := range up {
		if r < 'A' || r > 'Z' {
			return "", domain.ErrInvalidCurrency
		}
	}
	return up, nil
}
