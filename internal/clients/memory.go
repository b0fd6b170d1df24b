package clients

import (
	"context"
	"sync"
	"time"

	"github.com/egabank/ledger/internal/domain"
)

// MemoryRegistry is an in-memory Registry for tests and development.
type MemoryRegistry struct {
	mu      sync.Mutex
	byID    map[string]*Client
	byEmail map[string]*Client
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byID:    make(map[string]*Client),
		byEmail: make(map[string]*Client),
	}
}

var _ Registry = (*MemoryRegistry)(nil)

func (r *MemoryRegistry) CreateClient(ctx context.Context, name, email, password string) (*Client, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return nil, domain.ErrDuplicateEmail
	}
	c := &Client{
		ID:           NewClientID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[c.ID] = c
	r.byEmail[c.Email] = c
	cp := *c
	return &cp, nil
}

func (r *MemoryRegistry) GetClient(ctx context.Context, id string) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryRegistry) ClientExists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok, nil
}

func (r *MemoryRegistry) Authenticate(ctx context.Context, email, password string) (*Client, error) {
	r.mu.Lock()
	c, ok := r.byEmail[email]
	r.mu.Unlock()
	if !ok || !CheckPassword(password, c.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	cp := *c
	return &cp, nil
}
