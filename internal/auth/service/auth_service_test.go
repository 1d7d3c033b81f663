package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/auth/domain"
	authrepo "github.com/AlibekovAA/secure-blog/internal/auth/repository"
	"github.com/AlibekovAA/secure-blog/internal/auth/service"
	"github.com/AlibekovAA/secure-blog/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/secure-blog/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/secure-blog/internal/common/errors"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
)

const (
	testSecret     = "test-secret-key-that-is-at-least-32-bytes"
	testSessionTTL = time.Hour
)

type authFixture struct {
	svc     *service.AuthService
	creds   *mockCredentialRepo
	revoked *mockRevokedTokenRepo
	clock   *clock.MockClock
	cache   *service.CredentialCache
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func setupAuthService(t *testing.T, withCache bool) *authFixture {
	t.Helper()
	f := &authFixture{
		creds:   &mockCredentialRepo{},
		revoked: &mockRevokedTokenRepo{},
		clock:   clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
	}
	log := newTestLogger(t)

	if withCache {
		f.cache = service.NewCredentialCache(context.Background(), time.Minute, f.clock, log)
		t.Cleanup(f.cache.Close)
	}

	f.svc = service.NewAuthService(
		service.AuthServiceDeps{
			Creds:       f.creds,
			Revoked:     f.revoked,
			Digester:    &mockDigester{},
			Salts:       &mockSaltGenerator{},
			IDGenerator: &mockIDGenerator{},
			CredCache:   f.cache,
			Clock:       f.clock,
			Log:         log,
		},
		service.AuthServiceConfig{
			SecretKey:               testSecret,
			SessionTTL:              testSessionTTL,
			CircuitBreakerThreshold: 5,
			CircuitBreakerTimeout:   time.Second,
			CircuitBreakerReset:     time.Minute,
		},
	)
	return f
}

// storeCreated wires the mock repo so that created credentials can be read
// back, like a real store would.
func (f *authFixture) storeCreated() map[string]domain.Credential {
	stored := make(map[string]domain.Credential)
	f.creds.createFunc = func(_ context.Context, cred domain.Credential) error {
		if _, ok := stored[cred.Username]; ok {
			return authrepo.ErrUsernameAlreadyExists
		}
		stored[cred.Username] = cred
		return nil
	}
	f.creds.findByUsernameFunc = func(_ context.Context, username string) (domain.Credential, error) {
		cred, ok := stored[username]
		if !ok {
			return domain.Credential{}, authrepo.ErrCredentialNotFound
		}
		return cred, nil
	}
	f.creds.incrementTokenVersionFunc = func(_ context.Context, username string) (int64, error) {
		cred, ok := stored[username]
		if !ok {
			return 0, authrepo.ErrCredentialNotFound
		}
		cred.TokenVersion++
		stored[username] = cred
		return cred.TokenVersion, nil
	}
	return stored
}

func TestAuthService_Signup_Success(t *testing.T) {
	f := setupAuthService(t, false)
	stored := f.storeCreated()

	result, err := f.svc.Signup(context.Background(), service.SignupInput{
		Username: "alice",
		Password: "pw123",
		Verify:   "pw123",
		Email:    "alice@example.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Token == "" {
		t.Error("expected token to be set")
	}
	if result.Username != "alice" {
		t.Errorf("expected username alice, got %s", result.Username)
	}
	if want := f.clock.Now().Add(testSessionTTL); !result.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, result.ExpiresAt)
	}

	cred := stored["alice"]
	if cred.PasswordDigest != "digest:pw123" {
		t.Errorf("expected digested password, got %q", cred.PasswordDigest)
	}
	if cred.Salt != "test-salt" {
		t.Errorf("expected salt to be stored, got %q", cred.Salt)
	}
	if cred.TokenVersion != 1 {
		t.Errorf("expected token version 1, got %d", cred.TokenVersion)
	}

	session, err := f.svc.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("expected session to authenticate, got %v", err)
	}
	if session.Username != "alice" {
		t.Errorf("expected session for alice, got %s", session.Username)
	}
}

func TestAuthService_Signup_ValidationError(t *testing.T) {
	f := setupAuthService(t, false)

	_, err := f.svc.Signup(context.Background(), service.SignupInput{
		Username: "a b",
		Password: "pw",
		Verify:   "other",
		Email:    "nope",
	})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	details, ok := service.AsValidationError(err)
	if !ok {
		t.Fatal("expected validation details")
	}
	for _, field := range []string{"username", "password", "verify", "email"} {
		if _, ok := details[field]; !ok {
			t.Errorf("expected message for %s, got %v", field, details)
		}
	}
}

func TestAuthService_Signup_UsernameTaken(t *testing.T) {
	f := setupAuthService(t, false)
	f.creds.createFunc = func(context.Context, domain.Credential) error {
		return authrepo.ErrUsernameAlreadyExists
	}

	_, err := f.svc.Signup(context.Background(), service.SignupInput{
		Username: "alice",
		Password: "pw123",
		Verify:   "pw123",
	})
	if !errors.Is(err, service.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_Signup_CircuitOpen(t *testing.T) {
	f := setupAuthService(t, false)
	f.creds.createFunc = func(context.Context, domain.Credential) error {
		return commonerrors.ErrCircuitOpen
	}

	_, err := f.svc.Signup(context.Background(), service.SignupInput{
		Username: "alice",
		Password: "pw123",
		Verify:   "pw123",
	})
	if !errors.Is(err, service.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := setupAuthService(t, false)
	f.storeCreated()

	if _, err := f.svc.Signup(context.Background(), service.SignupInput{
		Username: "alice",
		Password: "pw123",
		Verify:   "pw123",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, wrongPassword := f.svc.Login(context.Background(), service.LoginInput{Username: "alice", Password: "nope"})
	_, unknownUser := f.svc.Login(context.Background(), service.LoginInput{Username: "bob", Password: "pw123"})
	_, badUsername := f.svc.Login(context.Background(), service.LoginInput{Username: "x", Password: "pw123"})

	for name, err := range map[string]error{
		"wrong password": wrongPassword,
		"unknown user":   unknownUser,
		"bad username":   badUsername,
	} {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			t.Errorf("%s: expected ErrInvalidCredentials, got %v", name, err)
			continue
		}
		if err.Error() != "invalid username or password" {
			t.Errorf("%s: unexpected message %q", name, err.Error())
		}
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	f := setupAuthService(t, false)
	f.creds.findByUsernameFunc = func(context.Context, string) (domain.Credential, error) {
		return domain.Credential{}, errors.New("connection refused")
	}

	_, err := f.svc.Login(context.Background(), service.LoginInput{Username: "alice", Password: "pw123"})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		t.Error("store failure must not look like bad credentials")
	}
	de, ok := commonerrors.AsDomainError(err)
	if !ok || de.Category() != commonerrors.CategoryInternal {
		t.Errorf("expected internal domain error, got %v", err)
	}
}

func TestAuthService_Authenticate_Rejections(t *testing.T) {
	f := setupAuthService(t, false)
	stored := f.storeCreated()

	result, err := f.svc.Signup(context.Background(), service.SignupInput{
		Username: "alice",
		Password: "pw123",
		Verify:   "pw123",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	t.Run("empty", func(t *testing.T) {
		if _, err := f.svc.Authenticate(context.Background(), ""); !errors.Is(err, service.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("tampered", func(t *testing.T) {
		if _, err := f.svc.Authenticate(context.Background(), flipMiddle(result.Token)); !errors.Is(err, service.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("password changed", func(t *testing.T) {
		cred := stored["alice"]
		original := cred
		cred.PasswordDigest = "digest:other"
		stored["alice"] = cred
		defer func() { stored["alice"] = original }()

		if _, err := f.svc.Authenticate(context.Background(), result.Token); !errors.Is(err, service.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		cred := stored["alice"]
		delete(stored, "alice")
		defer func() { stored["alice"] = cred }()

		if _, err := f.svc.Authenticate(context.Background(), result.Token); !errors.Is(err, service.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		f.clock.Advance(testSessionTTL + time.Second)
		defer f.clock.Advance(-(testSessionTTL + time.Second))

		if _, err := f.svc.Authenticate(context.Background(), result.Token); !errors.Is(err, service.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	if _, err := f.svc.Authenticate(context.Background(), result.Token); err != nil {
		t.Fatalf("expected untouched token to still authenticate, got %v", err)
	}
}

func TestAuthService_Logout_RevokesUntilExpiry(t *testing.T) {
	f := setupAuthService(t, false)
	f.storeCreated()

	revoked := make(map[string]time.Time)
	f.revoked.revokeFunc = func(_ context.Context, jti string, username string, expiresAt time.Time) error {
		if username != "alice" {
			t.Errorf("expected username alice, got %s", username)
		}
		revoked[jti] = expiresAt
		return nil
	}
	f.revoked.isRevokedFunc = func(_ context.Context, jti string) (bool, error) {
		_, ok := revoked[jti]
		return ok, nil
	}

	first, err := f.svc.Signup(context.Background(), service.SignupInput{Username: "alice", Password: "pw123", Verify: "pw123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	second, err := f.svc.Login(context.Background(), service.LoginInput{Username: "alice", Password: "pw123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.svc.Logout(context.Background(), first.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if len(revoked) != 1 {
		t.Fatalf("expected one revoked token, got %d", len(revoked))
	}
	for _, expiresAt := range revoked {
		if !expiresAt.Equal(first.ExpiresAt) {
			t.Errorf("expected revocation until %v, got %v", first.ExpiresAt, expiresAt)
		}
	}

	if _, err := f.svc.Authenticate(context.Background(), first.Token); !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected logged out token to be rejected, got %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), second.Token); err != nil {
		t.Errorf("expected other session to survive, got %v", err)
	}
}

func TestAuthService_Logout_IgnoresInvalidToken(t *testing.T) {
	f := setupAuthService(t, false)
	f.revoked.revokeFunc = func(context.Context, string, string, time.Time) error {
		t.Error("revoke must not be called for an unparseable token")
		return nil
	}

	if err := f.svc.Logout(context.Background(), "not-a-token"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := f.svc.Logout(context.Background(), ""); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestAuthService_LogoutEverywhere_InvalidatesCachedSessions(t *testing.T) {
	f := setupAuthService(t, true)
	f.storeCreated()

	first, err := f.svc.Signup(context.Background(), service.SignupInput{Username: "alice", Password: "pw123", Verify: "pw123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), first.Token); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := f.svc.LogoutEverywhere(context.Background(), "alice"); err != nil {
		t.Fatalf("logout everywhere: %v", err)
	}

	if _, err := f.svc.Authenticate(context.Background(), first.Token); !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected stale version to be rejected, got %v", err)
	}

	fresh, err := f.svc.Login(context.Background(), service.LoginInput{Username: "alice", Password: "pw123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	session, err := f.svc.Authenticate(context.Background(), fresh.Token)
	if err != nil {
		t.Fatalf("expected fresh session to authenticate, got %v", err)
	}
	if session.TokenVersion != 2 {
		t.Errorf("expected token version 2, got %d", session.TokenVersion)
	}
}

func TestAuthService_LogoutEverywhere_UnknownUser(t *testing.T) {
	f := setupAuthService(t, false)

	if err := f.svc.LogoutEverywhere(context.Background(), "ghost"); !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Authenticate_UsesCredentialCache(t *testing.T) {
	f := setupAuthService(t, true)
	f.storeCreated()

	result, err := f.svc.Signup(context.Background(), service.SignupInput{Username: "alice", Password: "pw123", Verify: "pw123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Authenticate(context.Background(), result.Token); err != nil {
			t.Fatalf("authenticate %d: %v", i, err)
		}
	}
	if f.creds.findCalls != 1 {
		t.Errorf("expected one store lookup, got %d", f.creds.findCalls)
	}
}

func TestAuthService_Authenticate_RevocationStoreFailure(t *testing.T) {
	f := setupAuthService(t, false)
	f.storeCreated()
	f.revoked.isRevokedFunc = func(context.Context, string) (bool, error) {
		return false, errors.New("redis down")
	}

	result, err := f.svc.Signup(context.Background(), service.SignupInput{Username: "alice", Password: "pw123", Verify: "pw123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, err = f.svc.Authenticate(context.Background(), result.Token)
	if err == nil {
		t.Fatal("expected error when revocation cannot be checked")
	}
	if errors.Is(err, service.ErrUnauthenticated) {
		t.Error("store failure must not be reported as an auth failure")
	}
}

// End to end against the in-memory stores and the real digest.
func TestAuthService_EndToEnd_Alice(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	svc := service.NewAuthService(
		service.AuthServiceDeps{
			Creds:       authrepo.NewMemoryCredentialRepository(),
			Revoked:     authrepo.NewMemoryRevokedTokenRepository(clk),
			Digester:    commoncrypto.NewArgon2Digester(testSecret),
			Salts:       commoncrypto.NewRandomSaltGenerator(),
			IDGenerator: commoncrypto.NewUUIDGenerator(),
			Clock:       clk,
			Log:         newTestLogger(t),
		},
		service.AuthServiceConfig{
			SecretKey:               testSecret,
			SessionTTL:              testSessionTTL,
			CircuitBreakerThreshold: 5,
			CircuitBreakerTimeout:   time.Second,
			CircuitBreakerReset:     time.Minute,
		},
	)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, service.SignupInput{Username: "alice", Password: "pw123", Verify: "pw123"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	cookie, err := svc.Login(ctx, service.LoginInput{Username: "alice", Password: "pw123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	session, err := svc.Authenticate(ctx, cookie.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session.Username != "alice" {
		t.Errorf("expected alice, got %s", session.Username)
	}

	if _, err := svc.Login(ctx, service.LoginInput{Username: "alice", Password: "pw124"}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := svc.Authenticate(ctx, flipMiddle(cookie.Token)); !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected tampered cookie to be rejected, got %v", err)
	}

	if _, err := svc.Signup(ctx, service.SignupInput{Username: "alice", Password: "pw123", Verify: "pw123"}); !errors.Is(err, service.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func flipMiddle(token string) string {
	b := []byte(token)
	i := len(b) / 2
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}
