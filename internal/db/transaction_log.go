package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atmledger/ledger-service/internal/domain"
)

// TransactionLogRepository implements domain.TransactionLog using
// PostgreSQL. Entries are append-only; ids come from a BIGSERIAL sequence
// and commit timestamps from the database clock.
type TransactionLogRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionLogRepository creates a new TransactionLogRepository.
func NewTransactionLogRepository(pool *pgxpool.Pool) *TransactionLogRepository {
	return &TransactionLogRepository{pool: pool}
}

// Append stores a new ledger entry and fills in its assigned id and commit
// timestamp.
func (r *TransactionLogRepository) Append(ctx context.Context, entry *domain.Transaction) error {
	query := `
		INSERT INTO transactions (account_number, type, amount, to_account)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	var row pgx.Row
	if tx := getTx(ctx); tx != nil {
		row = tx.QueryRow(ctx, query,
			entry.AccountNumber,
			string(entry.Type),
			entry.Amount.StringFixed(2),
			entry.ToAccount,
		)
	} else {
		row = r.pool.QueryRow(ctx, query,
			entry.AccountNumber,
			string(entry.Type),
			entry.Amount.StringFixed(2),
			entry.ToAccount,
		)
	}

	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("%w: failed to append entry: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// ListByAccount returns all entries recorded against the account, newest
// first. The id tiebreak keeps the order strict when timestamps collide.
func (r *TransactionLogRepository) ListByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	query := `
		SELECT id, account_number, type, amount, to_account, created_at
		FROM transactions
		WHERE account_number = $1
		ORDER BY created_at DESC, id DESC
	`

	var rows pgx.Rows
	var err error
	if tx := getTx(ctx); tx != nil {
		rows, err = tx.Query(ctx, query, accountNumber)
	} else {
		rows, err = r.pool.Query(ctx, query, accountNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query entries: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		var entry domain.Transaction
		var entryType string
		var amount string

		err := rows.Scan(
			&entry.ID,
			&entry.AccountNumber,
			&entryType,
			&amount,
			&entry.ToAccount,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan entry: %v", domain.ErrStorageUnavailable, err)
		}

		entry.Type = domain.TransactionType(entryType)
		entry.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q in store: %w", amount, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read entries: %v", domain.ErrStorageUnavailable, err)
	}
	return entries, nil
}
