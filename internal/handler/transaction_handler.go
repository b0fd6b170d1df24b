package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/egabank/ledger/internal/domain"
	"github.com/egabank/ledger/internal/middleware"
)

// Ledger defines the engine operations used by TransactionHandler.
type Ledger interface {
	Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Transfer(ctx context.Context, sourceNumber, destinationNumber string, amount decimal.Decimal, description string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, accountNumber string, from, to *time.Time) ([]domain.Transaction, error)
}

type TransactionHandler struct {
	ledger   Ledger
	accounts AccountManager
}

func NewTransactionHandler(ledger Ledger, accounts AccountManager) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, accounts: accounts}
}

type CreateTransactionRequest struct {
	Amount      string `json:"amount" validate:"required,amount"`
	Type        string `json:"type" validate:"required,oneof=deposit withdrawal"`
	Description string `json:"description,omitempty"`
}

type TransferRequest struct {
	SourceAccountNumber      string `json:"sourceAccountNumber" validate:"required"`
	DestinationAccountNumber string `json:"destinationAccountNumber" validate:"required"`
	Amount                   string `json:"amount" validate:"required,amount"`
	Description              string `json:"description,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid amount")
		return
	}
	if !h.ownsAccount(c, accountNumber) {
		return
	}

	var txn *domain.Transaction
	switch req.Type {
	case "deposit":
		txn, err = h.ledger.Deposit(c.Request.Context(), accountNumber, amount, req.Description)
	case "withdrawal":
		txn, err = h.ledger.Withdraw(c.Request.Context(), accountNumber, amount, req.Description)
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid amount")
		return
	}
	if !h.ownsAccount(c, req.SourceAccountNumber) {
		return
	}

	txn, err := h.ledger.Transfer(c.Request.Context(), req.SourceAccountNumber, req.DestinationAccountNumber, amount, req.Description)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	from, ok := parseTimeParam(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeParam(c, "to")
	if !ok {
		return
	}
	if !h.ownsAccount(c, accountNumber) {
		return
	}

	transactions, err := h.ledger.ListTransactions(c.Request.Context(), accountNumber, from, to)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: transactions})
}

// ownsAccount enforces that the authenticated client owns the account. It
// writes the error response itself when the check fails.
func (h *TransactionHandler) ownsAccount(c *gin.Context, accountNumber string) bool {
	clientID, _ := middleware.GetClientID(c)
	account, err := h.accounts.GetAccount(c.Request.Context(), accountNumber)
	if err != nil {
		respondDomainError(c, err)
		return false
	}
	if account.ClientID != clientID {
		middleware.RespondWithError(c, http.StatusForbidden, "You can only operate on your own accounts")
		return false
	}
	return true
}

func parseTimeParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" timestamp, want RFC 3339")
		return nil, false
	}
	return &t, true
}
