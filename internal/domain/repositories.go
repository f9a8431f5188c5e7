package domain

import (
	"context"
)

// AccountStore defines data access for accounts. Implementations must make
// a successful balance update durable before returning.
type AccountStore interface {
	// Create persists a new account. The account number must be unique.
	Create(ctx context.Context, account *Account) error

	// GetByNumber retrieves an account by its account number.
	// Returns ErrAccountNotFound if the account doesn't exist.
	GetByNumber(ctx context.Context, accountNumber string) (*Account, error)

	// Lock retrieves the account and holds a write lock on it for the
	// duration of the surrounding unit of work, serializing concurrent
	// operations touching the same account. Must be called within a
	// transaction context.
	Lock(ctx context.Context, accountNumber string) (*Account, error)

	// UpdateBalance persists a new balance for the account.
	// Returns ErrAccountNotFound if the account doesn't exist.
	UpdateBalance(ctx context.Context, account *Account) error
}

// TransactionLog defines the append-only store of ledger entries.
type TransactionLog interface {
	// Append stores a new entry durably, filling in its ID and commit
	// timestamp. Prior entries are never mutated.
	Append(ctx context.Context, entry *Transaction) error

	// ListByAccount returns all entries recorded against the account,
	// newest first. Repeated calls reflect the current durable state.
	ListByAccount(ctx context.Context, accountNumber string) ([]Transaction, error)
}

// TransactionManager groups store mutations into a single unit of work.
// If fn returns an error the unit is rolled back, otherwise committed;
// no partial effect is ever observable.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
