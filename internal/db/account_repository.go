package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atmledger/ledger-service/internal/domain"
)

// AccountRepository implements domain.AccountStore using PostgreSQL.
// Balances are stored as NUMERIC(15,2) and scanned through strings into
// decimals; binary floating point never touches an amount.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `account_number, owner_id, balance, created_at, updated_at`

// Create persists a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (account_number, owner_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.exec(ctx, query,
		account.AccountNumber,
		account.OwnerID,
		account.Balance.StringFixed(2),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create account: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// GetByNumber retrieves an account by its account number.
func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1
	`
	return r.scanAccount(r.row(ctx, query, accountNumber))
}

// Lock retrieves the account and holds a row lock on it for the duration of
// the transaction, via SELECT ... FOR UPDATE. Must be called within a
// transaction context.
func (r *AccountRepository) Lock(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1
		FOR UPDATE
	`
	return r.scanAccount(r.row(ctx, query, accountNumber))
}

// UpdateBalance persists the account's balance.
func (r *AccountRepository) UpdateBalance(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET balance = $2,
		    updated_at = $3
		WHERE account_number = $1
	`

	tag, err := r.exec(ctx, query,
		account.AccountNumber,
		account.Balance.StringFixed(2),
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update balance: %v", domain.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	var balance string

	err := row.Scan(
		&account.AccountNumber,
		&account.OwnerID,
		&balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: failed to get account: %v", domain.ErrStorageUnavailable, err)
	}

	account.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q in store: %w", balance, err)
	}
	return &account, nil
}

// row issues a single-row query on the open transaction if one rides in the
// context, otherwise on the pool.
func (r *AccountRepository) row(ctx context.Context, query string, args ...any) pgx.Row {
	if tx := getTx(ctx); tx != nil {
		return tx.QueryRow(ctx, query, args...)
	}
	return r.pool.QueryRow(ctx, query, args...)
}

func (r *AccountRepository) exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if tx := getTx(ctx); tx != nil {
		return tx.Exec(ctx, query, args...)
	}
	return r.pool.Exec(ctx, query, args...)
}
