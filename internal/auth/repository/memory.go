package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/auth/domain"
	"github.com/AlibekovAA/secure-blog/internal/common/clock"
)

// MemoryCredentialRepository backs dev mode when no database is configured.
type MemoryCredentialRepository struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
}

func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{creds: make(map[string]domain.Credential)}
}

func (r *MemoryCredentialRepository) Create(_ context.Context, cred domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.creds[cred.Username]; exists {
		return ErrUsernameAlreadyExists
	}
	r.creds[cred.Username] = cred
	return nil
}

func (r *MemoryCredentialRepository) FindByUsername(_ context.Context, username string) (domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred, ok := r.creds[username]
	if !ok {
		return domain.Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

func (r *MemoryCredentialRepository) IncrementTokenVersion(_ context.Context, username string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, ok := r.creds[username]
	if !ok {
		return 0, ErrCredentialNotFound
	}
	cred.TokenVersion++
	r.creds[username] = cred
	return cred.TokenVersion, nil
}

type MemoryRevokedTokenRepository struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	clock   clock.Clock
}

func NewMemoryRevokedTokenRepository(clk clock.Clock) *MemoryRevokedTokenRepository {
	return &MemoryRevokedTokenRepository{
		entries: make(map[string]time.Time),
		clock:   clk,
	}
}

func (r *MemoryRevokedTokenRepository) Revoke(_ context.Context, jti string, _ string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[jti]; !exists {
		r.entries[jti] = expiresAt
	}
	return nil
}

func (r *MemoryRevokedTokenRepository) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expiresAt, ok := r.entries[jti]
	return ok && expiresAt.After(r.clock.Now()), nil
}

func (r *MemoryRevokedTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	var deleted int64
	for jti, expiresAt := range r.entries {
		if !expiresAt.After(now) {
			delete(r.entries, jti)
			deleted++
		}
	}
	return deleted, nil
}
