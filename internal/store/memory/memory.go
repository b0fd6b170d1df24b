// Package memory is an in-memory Store used by tests and as a development
// fallback. A single mutex serializes all access; accounts are handed out as
// copies so callers cannot mutate internal state.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/egabank/ledger/internal/domain"
	"github.com/egabank/ledger/internal/store"
)

type Store struct {
	mu           sync.Mutex
	accounts     map[string]*domain.Account
	transactions map[string][]domain.Transaction
}

func New() *Store {
	return &Store{
		accounts:     make(map[string]*domain.Account),
		transactions: make(map[string][]domain.Transaction),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Number]; ok {
		return domain.ErrDuplicateAccountNumber
	}
	cp := *account
	s.accounts[account.Number] = &cp
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[number]
	if !ok {
		return domain.ErrAccountNotFound
	}
	// Re-checked under the mutex: a deposit may have landed since the caller
	// looked at the balance.
	if !a.Balance.IsZero() {
		return domain.ErrNonZeroBalance
	}
	// History stays: transaction records outlive the account.
	delete(s.accounts, number)
	return nil
}

func (s *Store) AccountExists(ctx context.Context, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[number]
	return ok, nil
}

func (s *Store) ListAccountsByClient(ctx context.Context, clientID string) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Account
	for _, a := range s.accounts {
		if a.ClientID == clientID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) Apply(ctx context.Context, change store.BalanceChange, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.checkVersion(change)
	if err != nil {
		return err
	}
	a.Balance = change.NewBalance
	a.Version++
	s.transactions[txn.AccountNumber] = append(s.transactions[txn.AccountNumber], *txn)
	return nil
}

func (s *Store) ApplyTransfer(ctx context.Context, debit, credit store.BalanceChange, out, in *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, err := s.checkVersion(debit)
	if err != nil {
		return err
	}
	dst, err := s.checkVersion(credit)
	if err != nil {
		return err
	}
	src.Balance = debit.NewBalance
	src.Version++
	dst.Balance = credit.NewBalance
	dst.Version++
	s.transactions[out.AccountNumber] = append(s.transactions[out.AccountNumber], *out)
	s.transactions[in.AccountNumber] = append(s.transactions[in.AccountNumber], *in)
	return nil
}

// checkVersion must be called with the mutex held.
func (s *Store) checkVersion(change store.BalanceChange) (*domain.Account, error) {
	a, ok := s.accounts[change.AccountNumber]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if a.Version != change.ExpectedVersion {
		return nil, domain.ErrStorageConflict
	}
	return a, nil
}

func (s *Store) AppendTransaction(ctx context.Context, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[txn.AccountNumber] = append(s.transactions[txn.AccountNumber], *txn)
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, number string, from, to *time.Time) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[number]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	var out []domain.Transaction
	for _, t := range s.transactions[number] {
		if from != nil && t.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && t.CreatedAt.After(*to) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Reference < out[j].Reference
	})
	return out, nil
}
