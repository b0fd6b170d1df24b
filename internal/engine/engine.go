// Package engine implements the transaction engine, the only code path that
// mutates account balances. Every operation runs its precondition checks,
// balance mutation and transaction append as one critical section under the
// involved accounts' locks, and retries version conflicts from the store with
// all checks re-run against fresh state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/egabank/ledger/internal/domain"
	"github.com/egabank/ledger/internal/events"
	"github.com/egabank/ledger/internal/store"
)

// maxConflictRetries bounds transparent retries of domain.ErrStorageConflict
// before the operation surfaces as domain.ErrOperationFailed.
const maxConflictRetries = 3

// Limits are the caller-supplied global ceilings, independent of the per-kind
// account limits.
type Limits struct {
	MaxWithdrawal decimal.Decimal
	MaxTransfer   decimal.Decimal
}

type Engine struct {
	store     store.Store
	locks     *accountLocks
	limits    Limits
	publisher events.Publisher
	logger    *zap.Logger
}

// New builds an engine. publisher may be nil; events are then skipped.
func New(st store.Store, limits Limits, publisher events.Publisher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:     st,
		locks:     newAccountLocks(),
		limits:    limits,
		publisher: publisher,
		logger:    logger,
	}
}

// Deposit credits the account and records a DEPOSIT entry.
func (e *Engine) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := e.locks.lock(accountNumber)
	defer unlock()

	var txn *domain.Transaction
	err := e.withRetry(ctx, "deposit", func() error {
		account, err := e.store.GetAccount(ctx, accountNumber)
		if err != nil {
			return err
		}
		txn = newEntry(domain.TxDeposit, account, amount, orDefault(description, "Deposit"), "")
		change := store.BalanceChange{
			AccountNumber:   account.Number,
			NewBalance:      account.Balance.Add(amount),
			ExpectedVersion: account.Version,
		}
		err = e.store.Apply(ctx, change, txn)
		if err == nil {
			e.emitTransaction(ctx, txn, change.NewBalance)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Withdraw debits the account and records a WITHDRAWAL entry. Preconditions
// are checked in order, first failure wins: amount, existence, global ceiling,
// per-kind ceiling, funds.
func (e *Engine) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := e.locks.lock(accountNumber)
	defer unlock()

	var txn *domain.Transaction
	err := e.withRetry(ctx, "withdraw", func() error {
		account, err := e.store.GetAccount(ctx, accountNumber)
		if err != nil {
			return err
		}
		if amount.GreaterThan(e.limits.MaxWithdrawal) {
			return &domain.LimitExceededError{Scope: "withdrawal", Limit: e.limits.MaxWithdrawal}
		}
		if kindLimit := account.Kind.WithdrawalLimit(); amount.GreaterThan(kindLimit) {
			return &domain.LimitExceededError{Scope: "account", Limit: kindLimit}
		}
		if !account.CanWithdraw(amount) {
			return &domain.InsufficientFundsError{Balance: account.Balance, Amount: amount}
		}
		txn = newEntry(domain.TxWithdrawal, account, amount, orDefault(description, "Withdrawal"), "")
		change := store.BalanceChange{
			AccountNumber:   account.Number,
			NewBalance:      account.Balance.Sub(amount),
			ExpectedVersion: account.Version,
		}
		err = e.store.Apply(ctx, change, txn)
		if err == nil {
			e.emitTransaction(ctx, txn, change.NewBalance)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Transfer moves amount from source to destination, committing both balance
// changes and both entries (TRANSFER_OUT / TRANSFER_IN) atomically. The
// source-side entry is returned. Destination-side limits are not checked.
func (e *Engine) Transfer(ctx context.Context, sourceNumber, destinationNumber string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if sourceNumber == destinationNumber {
		// The account must still exist for the self-transfer rejection to be
		// the one reported, matching the precondition order.
		unlock := e.locks.lock(sourceNumber)
		defer unlock()
		if _, err := e.store.GetAccount(ctx, sourceNumber); err != nil {
			return nil, fmt.Errorf("source account %s: %w", sourceNumber, err)
		}
		return nil, domain.ErrSelfTransfer
	}

	unlock := e.locks.lockPair(sourceNumber, destinationNumber)
	defer unlock()

	var out *domain.Transaction
	err := e.withRetry(ctx, "transfer", func() error {
		source, err := e.store.GetAccount(ctx, sourceNumber)
		if err != nil {
			return fmt.Errorf("source account %s: %w", sourceNumber, err)
		}
		destination, err := e.store.GetAccount(ctx, destinationNumber)
		if err != nil {
			return fmt.Errorf("destination account %s: %w", destinationNumber, err)
		}
		if amount.GreaterThan(e.limits.MaxTransfer) {
			return &domain.LimitExceededError{Scope: "transfer", Limit: e.limits.MaxTransfer}
		}
		if !source.CanWithdraw(amount) {
			return &domain.InsufficientFundsError{Balance: source.Balance, Amount: amount}
		}

		now := time.Now().UTC()
		out = newEntry(domain.TxTransferOut, source, amount,
			orDefault(description, "Transfer to "+destination.Number), destination.Number)
		out.CreatedAt = now
		in := newEntry(domain.TxTransferIn, destination, amount,
			orDefault(description, "Transfer from "+source.Number), source.Number)
		in.CreatedAt = now

		debit := store.BalanceChange{
			AccountNumber:   source.Number,
			NewBalance:      source.Balance.Sub(amount),
			ExpectedVersion: source.Version,
		}
		credit := store.BalanceChange{
			AccountNumber:   destination.Number,
			NewBalance:      destination.Balance.Add(amount),
			ExpectedVersion: destination.Version,
		}
		err = e.store.ApplyTransfer(ctx, debit, credit, out, in)
		if err == nil {
			e.emitTransfer(ctx, out, in, debit.NewBalance, credit.NewBalance)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetBalance returns the account's committed balance.
func (e *Engine) GetBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	account, err := e.store.GetAccount(ctx, accountNumber)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return account.Balance, nil
}

// ListTransactions returns the account's history, optionally bounded by the
// inclusive [from, to] window.
func (e *Engine) ListTransactions(ctx context.Context, accountNumber string, from, to *time.Time) ([]domain.Transaction, error) {
	return e.store.ListTransactions(ctx, accountNumber, from, to)
}

// withRetry runs op, retrying on domain.ErrStorageConflict up to
// maxConflictRetries attempts. op re-reads and re-validates on every attempt.
func (e *Engine) withRetry(ctx context.Context, operation string, op func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = op()
		if !errors.Is(err, domain.ErrStorageConflict) {
			return err
		}
		e.logger.Warn("storage conflict, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
		)
	}
	e.logger.Error("storage conflict retries exhausted", zap.String("operation", operation))
	return fmt.Errorf("%s: %w", operation, domain.ErrOperationFailed)
}

func (e *Engine) emitTransaction(ctx context.Context, txn *domain.Transaction, newBalance decimal.Decimal) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, events.TransactionStream, events.TransactionCreated, events.TransactionCreatedEvent{
		Reference:     txn.Reference,
		AccountNumber: txn.AccountNumber,
		Kind:          string(txn.Kind),
		Amount:        txn.Amount.String(),
		Currency:      txn.Currency,
	}); err != nil {
		e.logger.Warn("failed to publish transaction.created", zap.Error(err))
	}
	if err := e.publisher.Publish(ctx, events.AccountStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
		AccountNumber: txn.AccountNumber,
		NewBalance:    newBalance.String(),
	}); err != nil {
		e.logger.Warn("failed to publish balance.updated", zap.Error(err))
	}
}

func (e *Engine) emitTransfer(ctx context.Context, out, in *domain.Transaction, sourceBalance, destinationBalance decimal.Decimal) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, events.TransactionStream, events.TransferCompleted, events.TransferCompletedEvent{
		Reference:          out.Reference,
		SourceAccount:      out.AccountNumber,
		DestinationAccount: in.AccountNumber,
		Amount:             out.Amount.String(),
	}); err != nil {
		e.logger.Warn("failed to publish transfer.completed", zap.Error(err))
	}
	e.emitBalance(ctx, out.AccountNumber, sourceBalance)
	e.emitBalance(ctx, in.AccountNumber, destinationBalance)
}

func (e *Engine) emitBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) {
	if err := e.publisher.Publish(ctx, events.AccountStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
		AccountNumber: accountNumber,
		NewBalance:    balance.String(),
	}); err != nil {
		e.logger.Warn("failed to publish balance.updated", zap.Error(err))
	}
}

// newEntry builds a VALIDATED ledger entry in the account's own currency.
func newEntry(kind domain.TransactionKind, account *domain.Account, amount decimal.Decimal, description, counterpart string) *domain.Transaction {
	return &domain.Transaction{
		Reference:     domain.NewReference(),
		Kind:          kind,
		Status:        domain.StatusValidated,
		Amount:        amount,
		Currency:      account.Currency,
		Description:   description,
		AccountNumber: account.Number,
		Counterpart:   counterpart,
		CreatedAt:     time.Now().UTC(),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
