package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue("cli-abc", "amine@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.ClientID != "cli-abc" || claims.Email != "amine@example.com" {
		t.Errorf("claims = %s/%s", claims.ClientID, claims.Email)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, _ := other.Issue("cli-abc", "a@b.c")
	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign signature = %v, want ErrInvalidToken", err)
	}
	if _, err := m.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token = %v, want ErrInvalidToken", err)
	}

	expired := NewTokenManager("test-secret", -time.Minute)
	token, _ = expired.Issue("cli-abc", "a@b.c")
	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token = %v, want ErrInvalidToken", err)
	}
}

func TestRevoker(t *testing.T) {
	r := NewRevoker()

	r.Revoke("tok-1", time.Now().Add(time.Hour))
	if !r.IsRevoked("tok-1") {
		t.Error("freshly revoked token not reported revoked")
	}
	if r.IsRevoked("tok-2") {
		t.Error("unknown token reported revoked")
	}

	r.Revoke("tok-3", time.Now().Add(-time.Minute))
	if r.IsRevoked("tok-3") {
		t.Error("expired revocation still active")
	}

	r.purge(time.Now())
	r.mu.Lock()
	_, stillThere := r.revoked["tok-3"]
	_, kept := r.revoked["tok-1"]
	r.mu.Unlock()
	if stillThere {
		t.Error("purge kept an expired entry")
	}
	if !kept {
		t.Error("purge dropped a live entry")
	}
}
