package domain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Queries is the read-only facade over the ledger. It never mutates state
// and takes no locks beyond what the store needs for a consistent read.
type Queries struct {
	accounts AccountStore
	log      TransactionLog
}

// NewQueries creates a Queries facade.
func NewQueries(accounts AccountStore, log TransactionLog) *Queries {
	return &Queries{accounts: accounts, log: log}
}

// CurrentBalance returns the account's current balance.
func (q *Queries) CurrentBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	account, err := q.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// GetAccount returns the full account record.
func (q *Queries) GetAccount(ctx context.Context, accountNumber string) (*Account, error) {
	return q.accounts.GetByNumber(ctx, accountNumber)
}

// History returns the account's ledger entries, newest first. Repeated
// calls with no intervening writes return identical sequences.
func (q *Queries) History(ctx context.Context, accountNumber string) ([]Transaction, error) {
	if _, err := q.accounts.GetByNumber(ctx, accountNumber); err != nil {
		return nil, err
	}
	entries, err := q.log.ListByAccount(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}
