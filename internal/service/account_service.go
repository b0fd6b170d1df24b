// Package service implements account lifecycle on top of the store, the
// client registry and the account-number codec.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/egabank/ledger/internal/clients"
	"github.com/egabank/ledger/internal/domain"
	"github.com/egabank/ledger/internal/events"
	"github.com/egabank/ledger/internal/iban"
	"github.com/egabank/ledger/internal/store"
)

// maxGenerationAttempts bounds account-number regeneration on collision.
// Collisions are vanishingly rare but not impossible.
const maxGenerationAttempts = 5

type AccountService struct {
	store       store.Store
	registry    clients.Registry
	countryCode string
	bankCode    string
	currency    string
	publisher   events.Publisher
	logger      *zap.Logger
}

func NewAccountService(st store.Store, registry clients.Registry, countryCode, bankCode, currency string, publisher events.Publisher, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		store:       st,
		registry:    registry,
		countryCode: countryCode,
		bankCode:    bankCode,
		currency:    currency,
		publisher:   publisher,
		logger:      logger,
	}
}

// CreateAccount opens an account for the client with a zero balance and a
// freshly generated account number. interestRate applies to SAVINGS accounts
// only; when nil the kind's default is used.
func (s *AccountService) CreateAccount(ctx context.Context, clientID string, kind domain.AccountKind, interestRate *decimal.Decimal) (*domain.Account, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidAccountKind
	}
	exists, err := s.registry.ClientExists(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		return nil, domain.ErrClientNotFound
	}

	account := &domain.Account{
		Kind:      kind,
		Balance:   decimal.Zero,
		Currency:  s.currency,
		ClientID:  clientID,
		CreatedAt: time.Now().UTC(),
	}
	if kind == domain.KindSavings {
		rate := kind.DefaultInterestRate()
		if interestRate != nil {
			rate = *interestRate
		}
		account.InterestRate = &rate
	}

	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		number, err := iban.Generate(s.countryCode, s.bankCode)
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}
		taken, err := s.store.AccountExists(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("failed to check account number: %w", err)
		}
		if taken {
			s.logger.Warn("account number collision, regenerating", zap.Int("attempt", attempt))
			continue
		}

		account.Number = number
		err = s.store.CreateAccount(ctx, account)
		if errors.Is(err, domain.ErrDuplicateAccountNumber) {
			// Lost the race to a concurrent creation with the same number.
			s.logger.Warn("account number collision on insert, regenerating", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		s.emitAccountEvent(ctx, events.AccountCreated, account)
		return account, nil
	}
	return nil, fmt.Errorf("account number generation: %w", domain.ErrOperationFailed)
}

// DeleteAccount removes the account. It is rejected while the balance is
// non-zero; the transaction history is kept.
func (s *AccountService) DeleteAccount(ctx context.Context, number string) error {
	account, err := s.store.GetAccount(ctx, number)
	if err != nil {
		return err
	}
	if !account.Balance.IsZero() {
		return domain.ErrNonZeroBalance
	}
	if err := s.store.DeleteAccount(ctx, number); err != nil {
		return err
	}
	s.emitAccountEvent(ctx, events.AccountDeleted, account)
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	return s.store.GetAccount(ctx, number)
}

func (s *AccountService) ListAccountsByClient(ctx context.Context, clientID string) ([]domain.Account, error) {
	exists, err := s.registry.ClientExists(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		return nil, domain.ErrClientNotFound
	}
	return s.store.ListAccountsByClient(ctx, clientID)
}

func (s *AccountService) emitAccountEvent(ctx context.Context, eventType string, account *domain.Account) {
	if s.publisher == nil {
		return
	}
	var data any
	switch eventType {
	case events.AccountCreated:
		data = events.AccountCreatedEvent{AccountNumber: account.Number, ClientID: account.ClientID, Kind: string(account.Kind)}
	case events.AccountDeleted:
		data = events.AccountDeletedEvent{AccountNumber: account.Number, ClientID: account.ClientID}
	default:
		return
	}
	if err := s.publisher.Publish(ctx, events.AccountStream, eventType, data); err != nil {
		s.logger.Warn("failed to publish account event", zap.String("type", eventType), zap.Error(err))
	}
}
