package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestKindPolicies(t *testing.T) {
	if got := KindCurrent.WithdrawalLimit(); !got.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("CURRENT withdrawal limit = %s, want 5000", got)
	}
	if got := KindSavings.WithdrawalLimit(); !got.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("SAVINGS withdrawal limit = %s, want 3000", got)
	}
	if got := KindSavings.DefaultInterestRate(); !got.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("SAVINGS default interest = %s, want 2.5", got)
	}
	if got := KindCurrent.DefaultInterestRate(); !got.IsZero() {
		t.Errorf("CURRENT default interest = %s, want 0", got)
	}
	if !KindCurrent.Valid() || !KindSavings.Valid() {
		t.Error("known kinds reported invalid")
	}
	if AccountKind("PREMIUM").Valid() {
		t.Error("unknown kind reported valid")
	}
}

func TestCanWithdraw(t *testing.T) {
	a := &Account{Balance: decimal.RequireFromString("100.00")}
	if !a.CanWithdraw(decimal.NewFromInt(100)) {
		t.Error("withdrawal of the full balance should be allowed")
	}
	if a.CanWithdraw(decimal.RequireFromString("100.01")) {
		t.Error("withdrawal above the balance should be rejected")
	}
}

func TestNewReference(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := NewReference()
		if !strings.HasPrefix(ref, "TRX") || len(ref) != 3+referenceLength {
			t.Fatalf("malformed reference %q", ref)
		}
		if seen[ref] {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = true
	}
}
