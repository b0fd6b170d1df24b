// Package events publishes ledger events to Redis streams. Publishing is
// best-effort: the engine commits first and logs a failed publish instead of
// failing the operation.
package events

import "time"

// Event types
const (
	TransactionCreated = "transaction.created"
	TransferCompleted  = "transfer.completed"
	BalanceUpdated     = "balance.updated"
	AccountCreated     = "account.created"
	AccountDeleted     = "account.deleted"
)

// Stream names
const (
	TransactionStream = "ledger.transactions"
	AccountStream     = "ledger.accounts"
)

// Event is the JSON envelope written to the stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type TransactionCreatedEvent struct {
	Reference     string `json:"reference"`
	AccountNumber string `json:"accountNumber"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
}

type TransferCompletedEvent struct {
	Reference          string `json:"reference"`
	SourceAccount      string `json:"sourceAccountNumber"`
	DestinationAccount string `json:"destinationAccountNumber"`
	Amount             string `json:"amount"`
}

type BalanceUpdatedEvent struct {
	AccountNumber string `json:"accountNumber"`
	NewBalance    string `json:"newBalance"`
}

type AccountCreatedEvent struct {
	AccountNumber string `json:"accountNumber"`
	ClientID      string `json:"clientId"`
	Kind          string `json:"accountType"`
}

type AccountDeletedEvent struct {
	AccountNumber string `json:"accountNumber"`
	ClientID      string `json:"clientId"`
}
