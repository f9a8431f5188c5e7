package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger executes deposit, withdraw and transfer as atomic units of work
// spanning the account store and the transaction log. It holds no mutable
// state of its own; multiple instances may run against the same store.
type Ledger struct {
	accounts AccountStore
	log      TransactionLog
	tx       TransactionManager
	// Optional publisher of committed-operation events.
	events EventPublisher
	logger *slog.Logger
}

// NewLedger creates a Ledger. Pass nil for events if no events should be
// emitted.
func NewLedger(
	accounts AccountStore,
	log TransactionLog,
	tx TransactionManager,
	events EventPublisher,
	logger *slog.Logger,
) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		accounts: accounts,
		log:      log,
		tx:       tx,
		events:   events,
		logger:   logger,
	}
}

// OpenAccount creates a new account for the given owner with a zero balance.
// The account number is generated and opaque to callers.
func (l *Ledger) OpenAccount(ctx context.Context, ownerID uuid.UUID) (*Account, error) {
	account := NewAccount(uuid.NewString(), ownerID)
	if err := l.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	l.logger.Info("account opened",
		"account_number", account.AccountNumber,
		"owner_id", ownerID.String(),
	)
	return account, nil
}

// Deposit credits amount to the account and appends a deposit entry, as one
// atomic unit. Returns the new balance.
func (l *Ledger) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	var entry *Transaction
	err := l.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := l.accounts.Lock(txCtx, accountNumber)
		if err != nil {
			return err
		}

		account.Credit(amount)
		if err := l.accounts.UpdateBalance(txCtx, account); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		entry = &Transaction{
			AccountNumber: accountNumber,
			Type:          TypeDeposit,
			Amount:        amount,
		}
		if err := l.log.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append deposit entry: %w", err)
		}

		newBalance = account.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	l.publishCommitted(entry, newBalance)
	return newBalance, nil
}

// Withdraw debits amount from the account and appends a withdraw entry, as
// one atomic unit. The sufficiency check and the debit happen under the same
// account lock, so two concurrent withdrawals can never jointly overdraw.
// Returns the new balance.
func (l *Ledger) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	var entry *Transaction
	err := l.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := l.accounts.Lock(txCtx, accountNumber)
		if err != nil {
			return err
		}

		if !account.HasSufficientFunds(amount) {
			return ErrInsufficientFunds
		}
		if err := account.Debit(amount); err != nil {
			return err
		}
		if err := l.accounts.UpdateBalance(txCtx, account); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		entry = &Transaction{
			AccountNumber: accountNumber,
			Type:          TypeWithdraw,
			Amount:        amount,
		}
		if err := l.log.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append withdraw entry: %w", err)
		}

		newBalance = account.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	l.publishCommitted(entry, newBalance)
	return newBalance, nil
}

// Transfer moves amount from one account to another and appends a single
// transfer entry against the source, as one atomic unit. Returns the new
// balance of the source account.
//
// Both accounts are locked in account-number order regardless of transfer
// direction, so two transfers targeting each other's accounts cannot
// deadlock. Validation short-circuits before any mutation: amount, source
// existence and sufficiency, then destination existence.
func (l *Ledger) Transfer(ctx context.Context, fromAccount, toAccount string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	if fromAccount == toAccount {
		return decimal.Zero, ErrSameAccount
	}

	var newBalance decimal.Decimal
	var entry *Transaction
	err := l.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		source, dest, err := l.lockPair(txCtx, fromAccount, toAccount)
		if err != nil {
			return err
		}

		// Error precedence: missing source, then insufficiency, then
		// missing destination.
		if source == nil {
			return ErrSourceAccountNotFound
		}
		if !source.HasSufficientFunds(amount) {
			return ErrInsufficientFunds
		}
		if dest == nil {
			return ErrDestinationAccountNotFound
		}

		if err := source.Debit(amount); err != nil {
			return err
		}
		dest.Credit(amount)

		if err := l.accounts.UpdateBalance(txCtx, source); err != nil {
			return fmt.Errorf("failed to update source balance: %w", err)
		}
		if err := l.accounts.UpdateBalance(txCtx, dest); err != nil {
			return fmt.Errorf("failed to update destination balance: %w", err)
		}

		entry = &Transaction{
			AccountNumber: fromAccount,
			Type:          TypeTransfer,
			Amount:        amount,
			ToAccount:     &toAccount,
		}
		if err := l.log.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append transfer entry: %w", err)
		}

		newBalance = source.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	l.publishCommitted(entry, newBalance)
	return newBalance, nil
}

// lockPair locks the source and destination accounts in account-number
// order. A missing account is reported as a nil pointer rather than an
// error so the caller can apply the documented error precedence.
func (l *Ledger) lockPair(ctx context.Context, fromAccount, toAccount string) (source, dest *Account, err error) {
	lock := func(accountNumber string) (*Account, error) {
		account, err := l.accounts.Lock(ctx, accountNumber)
		if errors.Is(err, ErrAccountNotFound) {
			return nil, nil
		}
		return account, err
	}

	if fromAccount < toAccount {
		if source, err = lock(fromAccount); err != nil {
			return nil, nil, fmt.Errorf("failed to lock source account: %w", err)
		}
		if dest, err = lock(toAccount); err != nil {
			return nil, nil, fmt.Errorf("failed to lock destination account: %w", err)
		}
	} else {
		if dest, err = lock(toAccount); err != nil {
			return nil, nil, fmt.Errorf("failed to lock destination account: %w", err)
		}
		if source, err = lock(fromAccount); err != nil {
			return nil, nil, fmt.Errorf("failed to lock source account: %w", err)
		}
	}
	return source, dest, nil
}

// publishCommitted emits a committed-operation event, best-effort. The unit
// of work has already committed; a failed publish must not make the
// operation appear to fail, so it is only logged.
func (l *Ledger) publishCommitted(entry *Transaction, newBalance decimal.Decimal) {
	if l.events == nil || entry == nil {
		return
	}

	event := &OperationEvent{
		EventID:       uuid.NewString(),
		EntryID:       entry.ID,
		OperationType: entry.Type,
		AccountNumber: entry.AccountNumber,
		ToAccount:     entry.ToAccount,
		Amount:        entry.Amount.StringFixed(2),
		NewBalance:    newBalance.StringFixed(2),
		Timestamp:     FormatEventTimestamp(entry.CreatedAt),
	}

	go func() {
		if err := l.events.PublishOperationCompleted(context.Background(), event); err != nil {
			l.logger.Warn("failed to publish operation event",
				"entry_id", event.EntryID,
				"operation", string(event.OperationType),
				"error", err,
			)
		}
	}()
}
