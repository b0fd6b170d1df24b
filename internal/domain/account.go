package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind discriminates the supported account products.
type AccountKind string

const (
	KindCurrent AccountKind = "CURRENT"
	KindSavings AccountKind = "SAVINGS"
)

// kindPolicy carries the per-kind rules: the per-operation withdrawal ceiling
// and the default interest rate (a percentage; zero for non-interest-bearing kinds).
type kindPolicy struct {
	withdrawalLimit decimal.Decimal
	defaultInterest decimal.Decimal
}

var kindPolicies = map[AccountKind]kindPolicy{
	KindCurrent: {
		withdrawalLimit: decimal.NewFromInt(5000),
	},
	KindSavings: {
		withdrawalLimit: decimal.NewFromInt(3000),
		defaultInterest: decimal.RequireFromString("2.5"),
	},
}

// Valid reports whether k is a recognized account kind.
func (k AccountKind) Valid() bool {
	_, ok := kindPolicies[k]
	return ok
}

// WithdrawalLimit returns the per-operation withdrawal ceiling for the kind.
func (k AccountKind) WithdrawalLimit() decimal.Decimal {
	return kindPolicies[k].withdrawalLimit
}

// DefaultInterestRate returns the interest rate applied when none is given at
// account creation. Zero for kinds that do not bear interest.
func (k AccountKind) DefaultInterestRate() decimal.Decimal {
	return kindPolicies[k].defaultInterest
}

// Account is the ledger aggregate. Its balance is mutated only by the
// transaction engine; Version is the optimistic concurrency token checked by
// the store on every balance write.
type Account struct {
	Number       string           `json:"accountNumber"`
	Kind         AccountKind      `json:"accountType"`
	Balance      decimal.Decimal  `json:"balance"`
	Currency     string           `json:"currency"`
	ClientID     string           `json:"clientId"`
	InterestRate *decimal.Decimal `json:"interestRate,omitempty"`
	CreatedAt    time.Time        `json:"createdTimestamp"`
	Version      int64            `json:"-"`
}

// CanWithdraw reports whether the balance covers the given amount.
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
