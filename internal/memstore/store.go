// Package memstore provides an in-memory implementation of the ledger's
// account store, transaction log and transaction manager. It backs unit
// tests and the memory store mode of the server; durability is process
// lifetime only.
package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/atmledger/ledger-service/internal/domain"
)

// txKey marks a context as belonging to an open unit of work.
type txKey struct{}

// Store holds all state behind a single mutex. A unit of work owns the
// mutex for its whole duration, so operations inside it are serialized and
// atomic relative to each other; on error the pre-transaction snapshot is
// restored, making the unit all-or-nothing like a database transaction.
type Store struct {
	mu       chan struct{} // buffered size 1, used as a context-aware mutex
	nextID   int64
	accounts map[string]*domain.Account
	entries  []domain.Transaction
}

// New creates an empty Store.
func New() *Store {
	mu := make(chan struct{}, 1)
	return &Store{
		mu:       mu,
		accounts: make(map[string]*domain.Account),
	}
}

var _ domain.AccountStore = (*Store)(nil)
var _ domain.TransactionLog = (*Store)(nil)
var _ domain.TransactionManager = (*Store)(nil)

// WithTransaction runs fn as a single unit of work. The store lock is held
// across fn, and on error all state changes made inside fn are rolled back.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	snapshotAccounts := make(map[string]*domain.Account, len(s.accounts))
	for number, account := range s.accounts {
		cp := *account
		snapshotAccounts[number] = &cp
	}
	snapshotEntries := make([]domain.Transaction, len(s.entries))
	copy(snapshotEntries, s.entries)
	snapshotNextID := s.nextID

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.accounts = snapshotAccounts
		s.entries = snapshotEntries
		s.nextID = snapshotNextID
		return err
	}
	return nil
}

// Create persists a new account.
func (s *Store) Create(ctx context.Context, account *domain.Account) error {
	unlock, err := s.enter(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	cp := *account
	s.accounts[account.AccountNumber] = &cp
	return nil
}

// GetByNumber returns a copy of the account.
func (s *Store) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	unlock, err := s.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	account, ok := s.accounts[accountNumber]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

// Lock returns the account for exclusive use inside the current unit of
// work. The store mutex held by WithTransaction already serializes access.
func (s *Store) Lock(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.GetByNumber(ctx, accountNumber)
}

// UpdateBalance persists the account's balance.
func (s *Store) UpdateBalance(ctx context.Context, account *domain.Account) error {
	unlock, err := s.enter(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	stored, ok := s.accounts[account.AccountNumber]
	if !ok {
		return domain.ErrAccountNotFound
	}
	stored.Balance = account.Balance
	stored.UpdatedAt = account.UpdatedAt
	return nil
}

// Append assigns the next id and a commit timestamp to the entry and stores it.
func (s *Store) Append(ctx context.Context, entry *domain.Transaction) error {
	unlock, err := s.enter(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s.nextID++
	entry.ID = s.nextID
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, *entry)
	return nil
}

// ListByAccount returns entries recorded against the account, newest first.
func (s *Store) ListByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	unlock, err := s.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out []domain.Transaction
	for _, entry := range s.entries {
		if entry.AccountNumber == accountNumber {
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// enter takes the store lock unless the context already runs inside a unit
// of work, which holds it for its whole duration.
func (s *Store) enter(ctx context.Context) (func(), error) {
	if inTx(ctx) {
		return func() {}, nil
	}
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	return s.release, nil
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.mu <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.mu
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}
