// Package store defines the durable ledger storage boundary. Balance writes
// are version-guarded: every mutation names the account version it read, and
// the store rejects the write with domain.ErrStorageConflict when the account
// has moved on, so the engine can re-run its checks against fresh state.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/egabank/ledger/internal/domain"
)

// BalanceChange describes a version-guarded balance write for one account.
type BalanceChange struct {
	AccountNumber   string
	NewBalance      decimal.Decimal
	ExpectedVersion int64
}

// Store is the persistence boundary for accounts and their transaction
// history. Transaction history is append-only; records are never updated or
// deleted, and deleting an account keeps its history.
type Store interface {
	GetAccount(ctx context.Context, number string) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) error

	// DeleteAccount removes the account only while its balance is zero,
	// checked atomically with the delete; a non-zero balance yields
	// domain.ErrNonZeroBalance regardless of what the caller observed before.
	DeleteAccount(ctx context.Context, number string) error
	AccountExists(ctx context.Context, number string) (bool, error)
	ListAccountsByClient(ctx context.Context, clientID string) ([]domain.Account, error)

	// Apply commits one balance change and its transaction record atomically.
	Apply(ctx context.Context, change BalanceChange, txn *domain.Transaction) error

	// ApplyTransfer commits both balance changes and both transaction records
	// atomically: either all four writes land or none do.
	ApplyTransfer(ctx context.Context, debit, credit BalanceChange, out, in *domain.Transaction) error

	// AppendTransaction records an entry without a balance change. The engine
	// does not use it on its hot path; it exists for reconciliation tooling.
	AppendTransaction(ctx context.Context, txn *domain.Transaction) error

	// ListTransactions returns the account's history ordered by creation time
	// then reference, optionally bounded by the inclusive [from, to] window.
	ListTransactions(ctx context.Context, number string, from, to *time.Time) ([]domain.Transaction, error)
}
