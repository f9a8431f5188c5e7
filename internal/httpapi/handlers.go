package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atmledger/ledger-service/internal/domain"
)

// Handler exposes the ledger engine and query facade over HTTP. It is
// presentation glue only; every invariant lives in the domain layer.
type Handler struct {
	ledger  *domain.Ledger
	queries *domain.Queries
	logger  *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(ledger *domain.Ledger, queries *domain.Queries, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{ledger: ledger, queries: queries, logger: logger}
}

type openAccountRequest struct {
	OwnerID string `json:"owner_id"`
}

type accountResponse struct {
	AccountNumber string `json:"account_number"`
	OwnerID       string `json:"owner_id"`
	Balance       string `json:"balance"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type transferRequest struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      string `json:"amount"`
}

type balanceResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
}

type transactionResponse struct {
	ID            string  `json:"id"`
	AccountNumber string  `json:"account_number"`
	Type          string  `json:"type"`
	Amount        string  `json:"amount"`
	Date          string  `json:"date"`
	ToAccount     *string `json:"to_account,omitempty"`
}

type historyResponse struct {
	Transactions []transactionResponse `json:"transactions"`
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// OpenAccount creates a new account with a zero balance.
func (h *Handler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid owner_id")
		return
	}

	account, err := h.ledger.OpenAccount(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("open account failed", "error", err)
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, accountResponse{
		AccountNumber: account.AccountNumber,
		OwnerID:       account.OwnerID.String(),
		Balance:       account.Balance.StringFixed(2),
	})
}

// Deposit credits funds to an account.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")

	amount, ok := h.parseAmount(w, r)
	if !ok {
		return
	}

	balance, err := h.ledger.Deposit(r.Context(), accountNumber, amount)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	h.logger.Info("deposit completed", "account_number", accountNumber, "amount", amount.StringFixed(2))
	sendJSON(w, http.StatusOK, balanceResponse{
		AccountNumber: accountNumber,
		Balance:       balance.StringFixed(2),
	})
}

// Withdraw debits funds from an account.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")

	amount, ok := h.parseAmount(w, r)
	if !ok {
		return
	}

	balance, err := h.ledger.Withdraw(r.Context(), accountNumber, amount)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	h.logger.Info("withdrawal completed", "account_number", accountNumber, "amount", amount.StringFixed(2))
	sendJSON(w, http.StatusOK, balanceResponse{
		AccountNumber: accountNumber,
		Balance:       balance.StringFixed(2),
	})
}

// Transfer moves funds between two accounts. Self-transfers are rejected
// here at the boundary; the engine enforces the same rule.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return
	}
	if req.FromAccount == "" || req.ToAccount == "" {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "from_account and to_account are required")
		return
	}
	if req.FromAccount == req.ToAccount {
		sendDomainError(w, domain.ErrSameAccount)
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	balance, err := h.ledger.Transfer(r.Context(), req.FromAccount, req.ToAccount, amount)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	h.logger.Info("transfer completed",
		"from_account", req.FromAccount,
		"to_account", req.ToAccount,
		"amount", amount.StringFixed(2),
	)
	sendJSON(w, http.StatusOK, balanceResponse{
		AccountNumber: req.FromAccount,
		Balance:       balance.StringFixed(2),
	})
}

// GetBalance returns the account's current balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")

	balance, err := h.queries.CurrentBalance(r.Context(), accountNumber)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, balanceResponse{
		AccountNumber: accountNumber,
		Balance:       balance.StringFixed(2),
	})
}

// GetHistory returns the account's ledger entries, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")

	entries, err := h.queries.History(r.Context(), accountNumber)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, transactionResponse{
			ID:            strconv.FormatInt(entry.ID, 10),
			AccountNumber: entry.AccountNumber,
			Type:          string(entry.Type),
			Amount:        entry.Amount.StringFixed(2),
			Date:          entry.CreatedAt.UTC().Format(time.RFC3339),
			ToAccount:     entry.ToAccount,
		})
	}
	sendJSON(w, http.StatusOK, historyResponse{Transactions: out})
}

func (h *Handler) parseAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
		return decimal.Zero, false
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		sendDomainError(w, err)
		return decimal.Zero, false
	}
	return amount, true
}
