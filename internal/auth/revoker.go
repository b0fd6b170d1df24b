package auth

import (
	"context"
	"sync"
	"time"
)

// Revoker tracks revoked tokens until their natural expiry. It is a
// process-scoped expiring set: entries are purged by a background sweep so the
// map does not grow with every logout forever.
type Revoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewRevoker() *Revoker {
	return &Revoker{revoked: make(map[string]time.Time)}
}

// Revoke marks the token as revoked until expiresAt.
func (r *Revoker) Revoke(token string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = expiresAt
}

// IsRevoked reports whether the token is currently revoked. Entries past
// their expiry count as not revoked; the token fails signature-level expiry
// checks anyway.
func (r *Revoker) IsRevoked(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiresAt, ok := r.revoked[token]
	return ok && time.Now().Before(expiresAt)
}

// Sweep purges expired entries every interval until ctx is done. Run it in
// its own goroutine.
func (r *Revoker) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.purge(now)
		}
	}
}

func (r *Revoker) purge(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, expiresAt := range r.revoked {
		if !now.Before(expiresAt) {
			delete(r.revoked, token)
		}
	}
}
