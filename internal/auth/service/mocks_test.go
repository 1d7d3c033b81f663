package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/auth/domain"
	authrepo "github.com/AlibekovAA/secure-blog/internal/auth/repository"
)

type mockCredentialRepo struct {
	createFunc                func(ctx context.Context, cred domain.Credential) error
	findByUsernameFunc        func(ctx context.Context, username string) (domain.Credential, error)
	incrementTokenVersionFunc func(ctx context.Context, username string) (int64, error)
	findCalls                 int
}

func (m *mockCredentialRepo) Create(ctx context.Context, cred domain.Credential) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, cred)
	}
	return nil
}

func (m *mockCredentialRepo) FindByUsername(ctx context.Context, username string) (domain.Credential, error) {
	m.findCalls++
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return domain.Credential{}, authrepo.ErrCredentialNotFound
}

func (m *mockCredentialRepo) IncrementTokenVersion(ctx context.Context, username string) (int64, error) {
	if m.incrementTokenVersionFunc != nil {
		return m.incrementTokenVersionFunc(ctx, username)
	}
	return 0, authrepo.ErrCredentialNotFound
}

type mockRevokedTokenRepo struct {
	revokeFunc        func(ctx context.Context, jti string, username string, expiresAt time.Time) error
	isRevokedFunc     func(ctx context.Context, jti string) (bool, error)
	deleteExpiredFunc func(ctx context.Context) (int64, error)
}

func (m *mockRevokedTokenRepo) Revoke(ctx context.Context, jti string, username string, expiresAt time.Time) error {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, jti, username, expiresAt)
	}
	return nil
}

func (m *mockRevokedTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.isRevokedFunc != nil {
		return m.isRevokedFunc(ctx, jti)
	}
	return false, nil
}

func (m *mockRevokedTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

type mockDigester struct {
	digestFunc  func(password string) string
	matchesFunc func(storedDigest, password string) bool
}

func (m *mockDigester) Digest(password string) string {
	if m.digestFunc != nil {
		return m.digestFunc(password)
	}
	return "digest:" + password
}

func (m *mockDigester) Matches(storedDigest, password string) bool {
	if m.matchesFunc != nil {
		return m.matchesFunc(storedDigest, password)
	}
	return storedDigest == m.Digest(password)
}

type mockSaltGenerator struct {
	newSaltFunc func() (string, error)
}

func (m *mockSaltGenerator) NewSalt() (string, error) {
	if m.newSaltFunc != nil {
		return m.newSaltFunc()
	}
	return "test-salt", nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
	counter   int
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	m.counter++
	return fmt.Sprintf("test-jti-%d", m.counter), nil
}
