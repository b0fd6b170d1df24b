package domain

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	TxDeposit     TransactionKind = "DEPOSIT"
	TxWithdrawal  TransactionKind = "WITHDRAWAL"
	TxTransferOut TransactionKind = "TRANSFER_OUT"
	TxTransferIn  TransactionKind = "TRANSFER_IN"
)

// TransactionStatus is the commit status of a ledger entry. Operations are
// applied synchronously, so every committed entry is VALIDATED.
type TransactionStatus string

const StatusValidated TransactionStatus = "VALIDATED"

// Transaction is an immutable ledger entry. Transfer kinds carry the
// counterpart account number; a transfer always produces two entries sharing
// the same amount and timestamp.
type Transaction struct {
	Reference     string            `json:"reference"`
	Kind          TransactionKind   `json:"type"`
	Status        TransactionStatus `json:"status"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	Description   string            `json:"description,omitempty"`
	AccountNumber string            `json:"accountNumber"`
	Counterpart   string            `json:"counterpartAccountNumber,omitempty"`
	CreatedAt     time.Time         `json:"createdTimestamp"`
}

const (
	referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceLength  = 16
)

// NewReference returns a collision-resistant transaction reference.
func NewReference() string {
	buf := make([]byte, referenceLength)
	for i := range buf {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(referenceCharset))))
		buf[i] = referenceCharset[n.Int64()]
	}
	return "TRX" + string(buf)
}
