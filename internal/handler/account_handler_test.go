package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/egabank/ledger/internal/domain"
)

func newAccountTestRouter(accounts AccountManager, authClientID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(authClientID))
	h := NewAccountHandler(accounts)
	r.POST("/v1/accounts", h.CreateAccount)
	r.GET("/v1/accounts", h.ListAccounts)
	r.GET("/v1/accounts/:accountNumber", h.GetAccount)
	r.GET("/v1/accounts/:accountNumber/balance", h.GetBalance)
	r.DELETE("/v1/accounts/:accountNumber", h.DeleteAccount)
	return r
}

func TestCreateAccount(t *testing.T) {
	accounts := &mockAccounts{
		createFn: func(ctx context.Context, clientID string, kind domain.AccountKind, rate *decimal.Decimal) (*domain.Account, error) {
			if clientID != "cli-001" {
				t.Errorf("clientID = %s, want cli-001", clientID)
			}
			if kind != domain.KindSavings {
				t.Errorf("kind = %s, want SAVINGS", kind)
			}
			interest := decimal.RequireFromString("2.5")
			return &domain.Account{
				Number:       "TN5900000000000000000001",
				Kind:         kind,
				Balance:      decimal.Zero,
				Currency:     "TND",
				ClientID:     clientID,
				InterestRate: &interest,
			}, nil
		},
	}
	router := newAccountTestRouter(accounts, "cli-001")

	w := doRequest(router, http.MethodPost, "/v1/accounts", map[string]any{"accountType": "SAVINGS"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var got domain.Account
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Kind != domain.KindSavings || got.InterestRate == nil {
		t.Errorf("response = %+v", got)
	}
}

func TestCreateAccountRejectsUnknownType(t *testing.T) {
	router := newAccountTestRouter(&mockAccounts{}, "cli-001")
	w := doRequest(router, http.MethodPost, "/v1/accounts", map[string]any{"accountType": "PREMIUM"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreateAccountRejectsBadInterestRate(t *testing.T) {
	router := newAccountTestRouter(&mockAccounts{}, "cli-001")
	w := doRequest(router, http.MethodPost, "/v1/accounts",
		map[string]any{"accountType": "SAVINGS", "interestRate": "lots"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetBalance(t *testing.T) {
	accounts := &mockAccounts{
		getFn: func(ctx context.Context, number string) (*domain.Account, error) {
			return &domain.Account{
				Number:   number,
				Kind:     domain.KindCurrent,
				Balance:  decimal.RequireFromString("123.45"),
				Currency: "TND",
				ClientID: "cli-001",
			}, nil
		},
	}
	router := newAccountTestRouter(accounts, "cli-001")

	w := doRequest(router, http.MethodGet, "/v1/accounts/TN59X/balance", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp BalanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Balance.Equal(decimal.RequireFromString("123.45")) || resp.Currency != "TND" {
		t.Errorf("response = %+v", resp)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	accounts := &mockAccounts{
		getFn: func(ctx context.Context, number string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	router := newAccountTestRouter(accounts, "cli-001")

	w := doRequest(router, http.MethodGet, "/v1/accounts/TN59MISSING", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetAccountForbiddenForOtherClient(t *testing.T) {
	router := newAccountTestRouter(ownedAccountMock("cli-owner"), "cli-intruder")
	w := doRequest(router, http.MethodGet, "/v1/accounts/TN59X", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestDeleteAccountNonZeroBalance(t *testing.T) {
	accounts := ownedAccountMock("cli-001")
	accounts.deleteFn = func(ctx context.Context, number string) error {
		return domain.ErrNonZeroBalance
	}
	router := newAccountTestRouter(accounts, "cli-001")

	w := doRequest(router, http.MethodDelete, "/v1/accounts/TN59X", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestDeleteAccount(t *testing.T) {
	accounts := ownedAccountMock("cli-001")
	accounts.deleteFn = func(ctx context.Context, number string) error { return nil }
	router := newAccountTestRouter(accounts, "cli-001")

	w := doRequest(router, http.MethodDelete, "/v1/accounts/TN59X", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
}

func TestListAccounts(t *testing.T) {
	accounts := &mockAccounts{
		listFn: func(ctx context.Context, clientID string) ([]domain.Account, error) {
			return []domain.Account{
				{Number: "TN59A", Kind: domain.KindCurrent, ClientID: clientID, Currency: "TND"},
				{Number: "TN59B", Kind: domain.KindSavings, ClientID: clientID, Currency: "TND"},
			}, nil
		},
	}
	router := newAccountTestRouter(accounts, "cli-001")

	w := doRequest(router, http.MethodGet, "/v1/accounts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp ListAccountsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(resp.Accounts))
	}
}
