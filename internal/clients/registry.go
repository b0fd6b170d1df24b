// Package clients is the customer registry the ledger depends on. The engine
// never touches it; only account creation consults it.
package clients

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Client is a bank customer able to own accounts.
type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdTimestamp"`
}

// Registry is the customer lookup and authentication boundary.
type Registry interface {
	CreateClient(ctx context.Context, name, email, password string) (*Client, error)
	GetClient(ctx context.Context, id string) (*Client, error)
	ClientExists(ctx context.Context, id string) (bool, error)
	Authenticate(ctx context.Context, email, password string) (*Client, error)
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewClientID returns a unique client identifier.
func NewClientID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	const length = 10
	buf := make([]byte, length)
	for i := range buf {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		buf[i] = charset[n.Int64()]
	}
	return fmt.Sprintf("cli-%s", string(buf))
}
