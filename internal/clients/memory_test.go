package clients

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/egabank/ledger/internal/domain"
)

func TestMemoryRegistry(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	c, err := r.CreateClient(ctx, "Amine", "amine@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if !strings.HasPrefix(c.ID, "cli-") {
		t.Errorf("client ID = %q, want cli- prefix", c.ID)
	}
	if c.PasswordHash == "s3cret-pass" {
		t.Error("password stored in clear")
	}

	if _, err := r.CreateClient(ctx, "Other", "amine@example.com", "x"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Errorf("duplicate email = %v, want ErrDuplicateEmail", err)
	}

	if ok, _ := r.ClientExists(ctx, c.ID); !ok {
		t.Error("created client not found by ID")
	}
	if _, err := r.GetClient(ctx, "cli-missing"); !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("GetClient(missing) = %v, want ErrClientNotFound", err)
	}

	if _, err := r.Authenticate(ctx, "amine@example.com", "s3cret-pass"); err != nil {
		t.Errorf("Authenticate with correct password: %v", err)
	}
	if _, err := r.Authenticate(ctx, "amine@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := r.Authenticate(ctx, "nobody@example.com", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}
}
