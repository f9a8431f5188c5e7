package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the core entity of the ledger. Its balance is mutated only
// through the Ledger engine and never goes negative.
type Account struct {
	AccountNumber string          // Opaque unique identifier, immutable once created
	OwnerID       uuid.UUID       // Owning user; the ownership relation is not enforced here
	Balance       decimal.Decimal // Current balance, two fraction digits
	CreatedAt     time.Time       // Timestamp when the account was opened
	UpdatedAt     time.Time       // Timestamp of the last balance change
}

// TransactionType identifies the kind of ledger operation an entry records.
type TransactionType string

const (
	TypeDeposit  TransactionType = "deposit"
	TypeWithdraw TransactionType = "withdraw"
	TypeTransfer TransactionType = "transfer"
)

// Transaction is one immutable ledger entry. Exactly one entry is written
// per committed operation; a transfer entry is recorded against the source
// account and carries the destination in ToAccount.
type Transaction struct {
	ID            int64           // Monotonically assigned by the log
	AccountNumber string          // Primary account the entry is recorded against
	Type          TransactionType // deposit, withdraw or transfer
	Amount        decimal.Decimal // Positive amount, two fraction digits
	ToAccount     *string         // Counterparty account, set only for transfers
	CreatedAt     time.Time       // Commit timestamp assigned by the log
}

// NewAccount creates a new Account for the given owner with a zero balance.
func NewAccount(accountNumber string, ownerID uuid.UUID) *Account {
	now := time.Now()
	return &Account{
		AccountNumber: accountNumber,
		OwnerID:       ownerID,
		Balance:       decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Debit subtracts amount from the balance. The caller must have verified
// sufficiency under the same lock; Debit only guards the non-negative invariant.
func (a *Account) Debit(amount decimal.Decimal) error {
	newBalance := a.Balance.Sub(amount)
	if newBalance.IsNegative() {
		return ErrInsufficientFunds
	}
	a.Balance = newBalance
	a.UpdatedAt = time.Now()
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now()
}

// HasSufficientFunds reports whether the balance covers the given amount.
func (a *Account) HasSufficientFunds(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
