// Package postgres implements store.Store on PostgreSQL. Balance writes are
// guarded by the account's version column; single-operation and transfer
// applies run inside one SQL transaction so records never land without their
// balance mutation.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/egabank/ledger/internal/domain"
	"github.com/egabank/ledger/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

const accountColumns = `account_number, kind, balance, currency, client_id, interest_rate, created_at, version`

func (s *Store) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1 AND deleted_at IS NULL
	`
	a, err := scanAccount(s.db.QueryRowContext(ctx, query, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (account_number, kind, balance, currency, client_id, interest_rate, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.Number, account.Kind, account.Balance, account.Currency,
		account.ClientID, nullDecimal(account.InterestRate), account.CreatedAt, account.Version,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateAccountNumber
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, number string) error {
	// The balance condition lives in the UPDATE itself so a deposit committing
	// after the caller's balance check cannot be stranded by the delete.
	query := `UPDATE accounts SET deleted_at = NOW() WHERE account_number = $1 AND deleted_at IS NULL AND balance = 0`
	result, err := s.db.ExecContext(ctx, query, number)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		exists, err := s.AccountExists(ctx, number)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrNonZeroBalance
		}
		return domain.ErrAccountNotFound
	}
	return nil
}

func (s *Store) AccountExists(ctx context.Context, number string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1 AND deleted_at IS NULL)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

func (s *Store) ListAccountsByClient(ctx context.Context, clientID string) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE client_id = $1 AND deleted_at IS NULL
		ORDER BY account_number
	`
	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) Apply(ctx context.Context, change store.BalanceChange, txn *domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.applyBalance(ctx, tx, change); err != nil {
		return err
	}
	if err := s.insertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *Store) ApplyTransfer(ctx context.Context, debit, credit store.BalanceChange, out, in *domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.applyBalance(ctx, tx, debit); err != nil {
		return err
	}
	if err := s.applyBalance(ctx, tx, credit); err != nil {
		return err
	}
	if err := s.insertTransaction(ctx, tx, out); err != nil {
		return err
	}
	if err := s.insertTransaction(ctx, tx, in); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *Store) applyBalance(ctx context.Context, tx *sql.Tx, change store.BalanceChange) error {
	query := `
		UPDATE accounts
		SET balance = $2, version = version + 1
		WHERE account_number = $1 AND version = $3 AND deleted_at IS NULL
	`
	result, err := tx.ExecContext(ctx, query, change.AccountNumber, change.NewBalance, change.ExpectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a vanished account from a concurrent writer.
		var exists bool
		check := `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1 AND deleted_at IS NULL)`
		if err := tx.QueryRowContext(ctx, check, change.AccountNumber).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check account existence: %w", err)
		}
		if !exists {
			return domain.ErrAccountNotFound
		}
		return domain.ErrStorageConflict
	}
	return nil
}

func (s *Store) insertTransaction(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (reference, kind, status, amount, currency, description, account_number, counterpart, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		txn.Reference, txn.Kind, txn.Status, txn.Amount, txn.Currency,
		nullString(txn.Description), txn.AccountNumber, nullString(txn.Counterpart), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *Store) AppendTransaction(ctx context.Context, txn *domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := s.insertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListTransactions(ctx context.Context, number string, from, to *time.Time) ([]domain.Transaction, error) {
	exists, err := s.AccountExists(ctx, number)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrAccountNotFound
	}

	query := `
		SELECT reference, kind, status, amount, currency, description, account_number, counterpart, created_at
		FROM transactions
		WHERE account_number = $1
	`
	args := []any{number}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at, reference"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var description, counterpart sql.NullString
		if err := rows.Scan(&t.Reference, &t.Kind, &t.Status, &t.Amount, &t.Currency,
			&description, &t.AccountNumber, &counterpart, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Description = description.String
		t.Counterpart = counterpart.String
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	var rate decimal.NullDecimal
	if err := row.Scan(&a.Number, &a.Kind, &a.Balance, &a.Currency,
		&a.ClientID, &rate, &a.CreatedAt, &a.Version); err != nil {
		return nil, err
	}
	if rate.Valid {
		a.InterestRate = &rate.Decimal
	}
	return &a, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
