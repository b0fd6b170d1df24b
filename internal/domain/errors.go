package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors. Handlers map these to HTTP status codes; the engine and
// services return them unwrapped or wrapped with %w so errors.Is keeps working.
var (
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrAccountNotFound        = errors.New("account not found")
	ErrClientNotFound         = errors.New("client not found")
	ErrSelfTransfer           = errors.New("transfer to the same account is not allowed")
	ErrInvalidAccountKind     = errors.New("unsupported account kind")
	ErrNonZeroBalance         = errors.New("account balance must be zero")
	ErrDuplicateAccountNumber = errors.New("account number already exists")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrLimitExceeded          = errors.New("limit exceeded")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrStorageConflict        = errors.New("concurrent modification detected")
	ErrOperationFailed        = errors.New("operation failed")
)

// LimitExceededError reports which ceiling a withdrawal or transfer violated.
type LimitExceededError struct {
	Scope string // "withdrawal", "transfer" or "account"
	Limit decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("amount exceeds the %s limit of %s", e.Scope, e.Limit)
}

func (e *LimitExceededError) Unwrap() error { return ErrLimitExceeded }

// InsufficientFundsError carries the current balance and the attempted amount
// for caller diagnostics.
type InsufficientFundsError struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, attempted %s", e.Balance, e.Amount)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }
