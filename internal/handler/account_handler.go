package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/egabank/ledger/internal/domain"
	"github.com/egabank/ledger/internal/middleware"
)

// AccountManager defines the account lifecycle operations used by AccountHandler.
type AccountManager interface {
	CreateAccount(ctx context.Context, clientID string, kind domain.AccountKind, interestRate *decimal.Decimal) (*domain.Account, error)
	GetAccount(ctx context.Context, number string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, number string) error
	ListAccountsByClient(ctx context.Context, clientID string) ([]domain.Account, error)
}

type AccountHandler struct {
	accounts AccountManager
}

func NewAccountHandler(accounts AccountManager) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type CreateAccountRequest struct {
	AccountType  string `json:"accountType" validate:"required,oneof=CURRENT SAVINGS"`
	InterestRate string `json:"interestRate,omitempty" validate:"omitempty,rate"`
}

type ListAccountsResponse struct {
	Accounts []domain.Account `json:"accounts"`
}

type BalanceResponse struct {
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	clientID, _ := middleware.GetClientID(c)

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	var rate *decimal.Decimal
	if req.InterestRate != "" {
		parsed, err := decimal.NewFromString(req.InterestRate)
		if err != nil {
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid interest rate")
			return
		}
		rate = &parsed
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), clientID, domain.AccountKind(req.AccountType), rate)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, ok := h.ownedAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	account, ok := h.ownedAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{
		AccountNumber: account.Number,
		Balance:       account.Balance,
		Currency:      account.Currency,
	})
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if _, ok := h.ownedAccount(c); !ok {
		return
	}
	if err := h.accounts.DeleteAccount(c.Request.Context(), c.Param("accountNumber")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	clientID, _ := middleware.GetClientID(c)
	accounts, err := h.accounts.ListAccountsByClient(c.Request.Context(), clientID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: accounts})
}

// ownedAccount loads the path account and enforces that the caller owns it.
func (h *AccountHandler) ownedAccount(c *gin.Context) (*domain.Account, bool) {
	clientID, _ := middleware.GetClientID(c)
	account, err := h.accounts.GetAccount(c.Request.Context(), c.Param("accountNumber"))
	if err != nil {
		respondDomainError(c, err)
		return nil, false
	}
	if account.ClientID != clientID {
		middleware.RespondWithError(c, http.StatusForbidden, "You can only access your own accounts")
		return nil, false
	}
	return account, true
}
