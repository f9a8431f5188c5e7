package domain_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/atmledger/ledger-service/internal/domain"
	"github.com/atmledger/ledger-service/internal/memstore"
)

func newTestLedger(t *testing.T) (*domain.Ledger, *domain.Queries, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := domain.NewLedger(store, store, store, nil, logger)
	queries := domain.NewQueries(store, store)
	return ledger, queries, store
}

// createAccount seeds an account with the given balance without going
// through the engine, so tests start from a clean transaction log.
func createAccount(t *testing.T, store *memstore.Store, number, balance string) {
	t.Helper()
	account := domain.NewAccount(number, uuid.New())
	account.Balance = dec(t, balance)
	if err := store.Create(context.Background(), account); err != nil {
		t.Fatalf("failed to create account %s: %v", number, err)
	}
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", value, err)
	}
	return d
}

func TestDeposit(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "100.00")
	ctx := context.Background()

	balance, err := ledger.Deposit(ctx, "A", dec(t, "25.50"))
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if !balance.Equal(dec(t, "125.50")) {
		t.Errorf("expected balance 125.50, got %s", balance)
	}

	entries, err := queries.History(ctx, "A")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Type != domain.TypeDeposit {
		t.Errorf("expected deposit entry, got %s", entries[0].Type)
	}
	if !entries[0].Amount.Equal(dec(t, "25.50")) {
		t.Errorf("expected entry amount 25.50, got %s", entries[0].Amount)
	}
	if entries[0].ToAccount != nil {
		t.Errorf("deposit entry must not carry a counterparty")
	}
}

func TestDeposit_InvalidAmount(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "100.00")
	ctx := context.Background()

	for _, value := range []string{"0", "-5.00", "1.001"} {
		_, err := ledger.Deposit(ctx, "A", dec(t, value))
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("amount %s: expected ErrInvalidAmount, got %v", value, err)
		}
	}

	balance, err := queries.CurrentBalance(ctx, "A")
	if err != nil {
		t.Fatalf("CurrentBalance failed: %v", err)
	}
	if !balance.Equal(dec(t, "100.00")) {
		t.Errorf("balance changed after failed deposits: %s", balance)
	}
	entries, _ := queries.History(ctx, "A")
	if len(entries) != 0 {
		t.Errorf("expected no entries after failed deposits, got %d", len(entries))
	}
}

func TestDeposit_AccountNotFound(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.Deposit(context.Background(), "missing", dec(t, "10.00"))
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "100.00")
	ctx := context.Background()

	balance, err := ledger.Withdraw(ctx, "A", dec(t, "40.00"))
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !balance.Equal(dec(t, "60.00")) {
		t.Errorf("expected balance 60.00, got %s", balance)
	}

	entries, _ := queries.History(ctx, "A")
	if len(entries) != 1 || entries[0].Type != domain.TypeWithdraw {
		t.Fatalf("expected one withdraw entry, got %+v", entries)
	}
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "30.00")
	ctx := context.Background()

	_, err := ledger.Withdraw(ctx, "A", dec(t, "30.01"))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	balance, _ := queries.CurrentBalance(ctx, "A")
	if !balance.Equal(dec(t, "30.00")) {
		t.Errorf("balance changed after failed withdrawal: %s", balance)
	}
	entries, _ := queries.History(ctx, "A")
	if len(entries) != 0 {
		t.Errorf("expected no entries after failed withdrawal, got %d", len(entries))
	}
}

func TestDepositThenWithdraw_RoundTrip(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "100.00")
	ctx := context.Background()

	if _, err := ledger.Deposit(ctx, "A", dec(t, "15.00")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	balance, err := ledger.Withdraw(ctx, "A", dec(t, "15.00"))
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !balance.Equal(dec(t, "100.00")) {
		t.Errorf("expected balance back at 100.00, got %s", balance)
	}

	entries, _ := queries.History(ctx, "A")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first: the withdraw entry precedes the deposit entry.
	if entries[0].Type != domain.TypeWithdraw || entries[1].Type != domain.TypeDeposit {
		t.Errorf("expected [withdraw, deposit], got [%s, %s]", entries[0].Type, entries[1].Type)
	}
}

func TestTransfer(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "100.00")
	createAccount(t, store, "B", "50.00")
	ctx := context.Background()

	balance, err := ledger.Transfer(ctx, "A", "B", dec(t, "30.00"))
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if !balance.Equal(dec(t, "70.00")) {
		t.Errorf("expected source balance 70.00, got %s", balance)
	}

	destBalance, _ := queries.CurrentBalance(ctx, "B")
	if !destBalance.Equal(dec(t, "80.00")) {
		t.Errorf("expected destination balance 80.00, got %s", destBalance)
	}

	// Exactly one entry, recorded against the source, carrying the destination.
	sourceEntries, _ := queries.History(ctx, "A")
	if len(sourceEntries) != 1 {
		t.Fatalf("expected 1 entry on source, got %d", len(sourceEntries))
	}
	entry := sourceEntries[0]
	if entry.Type != domain.TypeTransfer {
		t.Errorf("expected transfer entry, got %s", entry.Type)
	}
	if entry.ToAccount == nil || *entry.ToAccount != "B" {
		t.Errorf("expected ToAccount B, got %v", entry.ToAccount)
	}

	destEntries, _ := queries.History(ctx, "B")
	if len(destEntries) != 0 {
		t.Errorf("expected no mirrored entry on destination, got %d", len(destEntries))
	}
}

func TestTransfer_SelfTransfer(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "100.00")
	ctx := context.Background()

	_, err := ledger.Transfer(ctx, "A", "A", dec(t, "10.00"))
	if !errors.Is(err, domain.ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}

	balance, _ := queries.CurrentBalance(ctx, "A")
	if !balance.Equal(dec(t, "100.00")) {
		t.Errorf("balance changed after rejected self-transfer: %s", balance)
	}
}

func TestTransfer_ErrorPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid amount checked before accounts", func(t *testing.T) {
		ledger, _, _ := newTestLedger(t)
		_, err := ledger.Transfer(ctx, "missing", "also-missing", dec(t, "-1"))
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("missing source reported first", func(t *testing.T) {
		ledger, _, store := newTestLedger(t)
		createAccount(t, store, "B", "50.00")
		_, err := ledger.Transfer(ctx, "missing", "B", dec(t, "10.00"))
		if !errors.Is(err, domain.ErrSourceAccountNotFound) {
			t.Errorf("expected ErrSourceAccountNotFound, got %v", err)
		}
	})

	t.Run("insufficiency reported before missing destination", func(t *testing.T) {
		ledger, _, store := newTestLedger(t)
		createAccount(t, store, "A", "5.00")
		_, err := ledger.Transfer(ctx, "A", "missing", dec(t, "10.00"))
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Errorf("expected ErrInsufficientFunds, got %v", err)
		}
	})

	t.Run("missing destination leaves source untouched", func(t *testing.T) {
		ledger, queries, store := newTestLedger(t)
		createAccount(t, store, "A", "100.00")
		_, err := ledger.Transfer(ctx, "A", "missing", dec(t, "10.00"))
		if !errors.Is(err, domain.ErrDestinationAccountNotFound) {
			t.Fatalf("expected ErrDestinationAccountNotFound, got %v", err)
		}
		balance, _ := queries.CurrentBalance(ctx, "A")
		if !balance.Equal(dec(t, "100.00")) {
			t.Errorf("source balance changed: %s", balance)
		}
		entries, _ := queries.History(ctx, "A")
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %d", len(entries))
		}
	})
}

func TestConcurrentWithdrawals_NeverOverdraw(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "100.00")
	ctx := context.Background()

	results := make([]error, 2)
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		i := i
		g.Go(func() error {
			_, err := ledger.Withdraw(ctx, "A", dec(t, "60.00"))
			results[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var succeeded, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || insufficient != 1 {
		t.Errorf("expected exactly one success and one insufficient-funds, got %d/%d", succeeded, insufficient)
	}

	balance, _ := queries.CurrentBalance(ctx, "A")
	if !balance.Equal(dec(t, "40.00")) {
		t.Errorf("expected final balance 40.00, got %s", balance)
	}
	if balance.IsNegative() {
		t.Errorf("balance went negative: %s", balance)
	}
}

func TestConcurrentOpposingTransfers_NoDeadlockNoLostUpdate(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "100.00")
	createAccount(t, store, "B", "100.00")
	ctx := context.Background()

	var g errgroup.Group
	g.Go(func() error {
		_, err := ledger.Transfer(ctx, "A", "B", dec(t, "30.00"))
		return err
	})
	g.Go(func() error {
		_, err := ledger.Transfer(ctx, "B", "A", dec(t, "20.00"))
		return err
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	balanceA, _ := queries.CurrentBalance(ctx, "A")
	balanceB, _ := queries.CurrentBalance(ctx, "B")
	if !balanceA.Equal(dec(t, "90.00")) {
		t.Errorf("expected A=90.00, got %s", balanceA)
	}
	if !balanceB.Equal(dec(t, "110.00")) {
		t.Errorf("expected B=110.00, got %s", balanceB)
	}
}

func TestHistory_OrderAndIdempotence(t *testing.T) {
	ledger, queries, store := newTestLedger(t)
	createAccount(t, store, "A", "100.00")
	createAccount(t, store, "B", "0.00")
	ctx := context.Background()

	if _, err := ledger.Deposit(ctx, "A", dec(t, "10.00")); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Withdraw(ctx, "A", dec(t, "5.00")); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Transfer(ctx, "A", "B", dec(t, "20.00")); err != nil {
		t.Fatal(err)
	}

	first, err := queries.History(ctx, "A")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i].CreatedAt.After(first[i-1].CreatedAt) {
			t.Errorf("entries not in descending timestamp order at %d", i)
		}
		if first[i].ID >= first[i-1].ID {
			t.Errorf("entries not in strictly descending id order at %d", i)
		}
	}

	second, err := queries.History(ctx, "A")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("repeated call returned different length")
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("repeated call returned different order at %d", i)
		}
	}
}

func TestHistory_AccountNotFound(t *testing.T) {
	_, queries, _ := newTestLedger(t)

	_, err := queries.History(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestOpenAccount(t *testing.T) {
	ledger, queries, _ := newTestLedger(t)
	ctx := context.Background()

	ownerID := uuid.New()
	account, err := ledger.OpenAccount(ctx, ownerID)
	if err != nil {
		t.Fatalf("OpenAccount failed: %v", err)
	}
	if account.AccountNumber == "" {
		t.Error("expected generated account number")
	}
	if !account.Balance.IsZero() {
		t.Errorf("expected zero opening balance, got %s", account.Balance)
	}
	if account.OwnerID != ownerID {
		t.Errorf("expected owner %s, got %s", ownerID, account.OwnerID)
	}

	balance, err := queries.CurrentBalance(ctx, account.AccountNumber)
	if err != nil {
		t.Fatalf("CurrentBalance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("expected zero balance, got %s", balance)
	}
}
