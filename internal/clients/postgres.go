package clients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/egabank/ledger/internal/domain"
)

// PostgresRegistry persists clients in the clients table.
type PostgresRegistry struct {
	db *sql.DB
}

func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

var _ Registry = (*PostgresRegistry)(nil)

func (r *PostgresRegistry) CreateClient(ctx context.Context, name, email, password string) (*Client, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	c := &Client{
		ID:           NewClientID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO clients (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.ExecContext(ctx, query, c.ID, c.Name, c.Email, c.PasswordHash, c.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return nil, domain.ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

func (r *PostgresRegistry) GetClient(ctx context.Context, id string) (*Client, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM clients WHERE id = $1`
	var c Client
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &c, nil
}

func (r *PostgresRegistry) ClientExists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check client existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresRegistry) Authenticate(ctx context.Context, email, password string) (*Client, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM clients WHERE email = $1`
	var c Client
	err := r.db.QueryRowContext(ctx, query, email).Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if !CheckPassword(password, c.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return &c, nil
}
