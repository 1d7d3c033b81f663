package service

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/auth/domain"
	authrepo "github.com/AlibekovAA/secure-blog/internal/auth/repository"
	"github.com/AlibekovAA/secure-blog/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/secure-blog/internal/common/crypto"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
	"github.com/AlibekovAA/secure-blog/internal/common/resilience"
)

type AuthService struct {
	creds     authrepo.CredentialRepository
	revoked   authrepo.RevokedTokenRepository
	digester  commoncrypto.PasswordDigester
	salts     commoncrypto.SaltGenerator
	issuer    *TokenIssuer
	signer    *TokenSigner
	validator *CredentialValidator
	credCache *CredentialCache
	breaker   *resilience.CircuitBreaker
	clock     clock.Clock
	log       *logger.Logger
}

type AuthServiceDeps struct {
	Creds       authrepo.CredentialRepository
	Revoked     authrepo.RevokedTokenRepository
	Digester    commoncrypto.PasswordDigester
	Salts       commoncrypto.SaltGenerator
	IDGenerator commoncrypto.IDGenerator
	CredCache   *CredentialCache
	Clock       clock.Clock
	Log         *logger.Logger
}

type AuthServiceConfig struct {
	SecretKey               string
	SessionTTL              time.Duration
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

func NewAuthService(deps AuthServiceDeps, config AuthServiceConfig) *AuthService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	signer := NewTokenSigner(config.SecretKey)
	return &AuthService{
		creds:     deps.Creds,
		revoked:   deps.Revoked,
		digester:  deps.Digester,
		salts:     deps.Salts,
		issuer:    NewTokenIssuer(config.SecretKey, signer, deps.IDGenerator, config.SessionTTL, clk),
		signer:    signer,
		validator: NewCredentialValidator(),
		credCache: deps.CredCache,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  config.CircuitBreakerThreshold,
			Timeout:    config.CircuitBreakerTimeout,
			ResetAfter: config.CircuitBreakerReset,
			Name:       "credential_store",
			Clock:      clk,
			Logger:     deps.Log,
		}),
		clock: clk,
		log:   deps.Log,
	}
}

type SignupInput struct {
	Username string
	Password string
	Verify   string
	Email    string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "signup_attempt",
	}).Info("signup attempt")

	if err := s.validator.ValidateSignup(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "signup_validation_failed",
		}).Warnf("signup validation failed: %v", err)
		return AuthResult{}, err
	}

	salt, err := s.salts.NewSalt()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "signup_salt_failed",
		}).Errorf("signup failed: salt generation error: %v", err)
		return AuthResult{}, newInternalError("SALT_GENERATION_FAILED", "failed to create credential", err)
	}

	cred := domain.Credential{
		Username:       input.Username,
		PasswordDigest: s.digester.Digest(input.Password),
		Salt:           salt,
		Email:          input.Email,
		TokenVersion:   1,
		CreatedAt:      s.clock.Now(),
	}

	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.creds.Create(ctx, cred)
	})
	if err != nil {
		if errors.Is(err, authrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "signup_username_exists",
			}).Warn("signup failed: already exists")
			return AuthResult{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "signup_create_failed",
		}).Errorf("signup failed: %v", err)
		return AuthResult{}, s.storeError("CREATE_CREDENTIAL_FAILED", "failed to create credential", err)
	}

	result, err := s.issue(ctx, cred)
	if err != nil {
		return AuthResult{}, err
	}

	incrementSignups()
	s.log.WithFields(ctx, logger.Fields{
		"username": cred.Username,
		"action":   "signup_success",
	}).Info("signup success")

	return result, nil
}

// Login answers every failure with the same error so a caller cannot learn
// whether a username exists.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if !s.validator.ValidUsername(input.Username) || input.Password == "" {
		incrementLoginAttempts("invalid")
		return AuthResult{}, ErrInvalidCredentials
	}

	var cred domain.Credential
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		cred, err = s.creds.FindByUsername(ctx, input.Username)
		return err
	})
	if err != nil {
		if errors.Is(err, authrepo.ErrCredentialNotFound) {
			// Spend the same digest work as a real comparison.
			_ = s.digester.Matches("", input.Password)
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			incrementLoginAttempts("invalid")
			return AuthResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		incrementLoginAttempts("error")
		return AuthResult{}, s.storeError("FETCH_CREDENTIAL_FAILED", "failed to fetch credential", err)
	}

	if !s.digester.Matches(cred.PasswordDigest, input.Password) {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		incrementLoginAttempts("invalid")
		return AuthResult{}, ErrInvalidCredentials
	}

	result, err := s.issue(ctx, cred)
	if err != nil {
		incrementLoginAttempts("error")
		return AuthResult{}, err
	}

	incrementLoginAttempts("success")
	s.log.WithFields(ctx, logger.Fields{
		"username": cred.Username,
		"action":   "login_success",
	}).Info("login success")

	return result, nil
}

// Authenticate resolves a presented session token. Every rejection surfaces
// as ErrUnauthenticated; the reason only reaches logs and metrics.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	incrementSessionValidations()

	if token == "" {
		incrementSessionValidationFailures("missing")
		return domain.Session{}, ErrUnauthenticated
	}

	claims, err := s.issuer.Parse(token)
	if err != nil {
		s.rejectSession(ctx, "", "malformed", err)
		return domain.Session{}, ErrUnauthenticated
	}

	cred, err := s.loadCredential(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, authrepo.ErrCredentialNotFound) {
			s.rejectSession(ctx, claims.Subject, "unknown_user", err)
			return domain.Session{}, ErrUnauthenticated
		}
		return domain.Session{}, s.storeError("FETCH_CREDENTIAL_FAILED", "failed to fetch credential", err)
	}

	if claims.Version != cred.TokenVersion {
		s.rejectSession(ctx, claims.Subject, "stale_version", nil)
		return domain.Session{}, ErrUnauthenticated
	}

	if !s.signer.VerifyToken(cred.Username, cred.PasswordDigest, cred.Salt, claims.Binding) {
		s.rejectSession(ctx, claims.Subject, "binding_mismatch", nil)
		return domain.Session{}, ErrUnauthenticated
	}

	var revoked bool
	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		revoked, err = s.revoked.IsRevoked(ctx, claims.ID)
		return err
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": claims.Subject,
			"action":   "session_revocation_check_failed",
		}).Errorf("revocation check failed: %v", err)
		return domain.Session{}, s.storeError("REVOCATION_CHECK_FAILED", "failed to check session", err)
	}
	if revoked {
		s.rejectSession(ctx, claims.Subject, "revoked", nil)
		return domain.Session{}, ErrUnauthenticated
	}

	return claims.session(), nil
}

// Logout denylists the presented token until it would expire on its own. A
// token that no longer parses needs no revocation.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil
	}

	expiresAt := s.clock.Now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		return s.revoked.Revoke(ctx, claims.ID, claims.Subject, expiresAt)
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"jti":      claims.ID,
			"username": claims.Subject,
			"action":   "session_revoke_failed",
		}).Errorf("session revoke failed: %v", err)
		return s.storeError("REVOKE_SESSION_FAILED", "failed to revoke session", err)
	}

	incrementSessionTokensRevoked()
	s.log.WithFields(ctx, logger.Fields{
		"jti":      claims.ID,
		"username": claims.Subject,
		"action":   "session_revoked",
	}).Info("session revoked")
	return nil
}

// LogoutEverywhere moves the token version on, which invalidates every
// session minted before this call.
func (s *AuthService) LogoutEverywhere(ctx context.Context, username string) error {
	var version int64
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		version, err = s.creds.IncrementTokenVersion(ctx, username)
		return err
	})
	if err != nil {
		if errors.Is(err, authrepo.ErrCredentialNotFound) {
			return ErrUnauthenticated
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "logout_everywhere_failed",
		}).Errorf("logout everywhere failed: %v", err)
		return s.storeError("BUMP_TOKEN_VERSION_FAILED", "failed to end sessions", err)
	}

	if s.credCache != nil {
		s.credCache.Invalidate(username)
	}

	incrementTokenVersionBumps()
	s.log.WithFields(ctx, logger.Fields{
		"username":      username,
		"token_version": version,
		"action":        "logout_everywhere",
	}).Info("all sessions ended")
	return nil
}

func (s *AuthService) issue(ctx context.Context, cred domain.Credential) (AuthResult, error) {
	token, session, err := s.issuer.Issue(cred)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": cred.Username,
			"action":   "session_issue_failed",
		}).Errorf("session issue failed: %v", err)
		return AuthResult{}, newInternalError("SESSION_ISSUE_FAILED", "failed to issue session", err)
	}
	return AuthResult{
		Token:     token,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *AuthService) loadCredential(ctx context.Context, username string) (domain.Credential, error) {
	if s.credCache != nil {
		if cred, ok := s.credCache.Get(username); ok {
			return cred, nil
		}
	}

	var cred domain.Credential
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		cred, err = s.creds.FindByUsername(ctx, username)
		return err
	})
	if err != nil {
		return domain.Credential{}, err
	}

	if s.credCache != nil {
		s.credCache.Set(cred)
	}
	return cred, nil
}

func (s *AuthService) rejectSession(ctx context.Context, username, reason string, cause error) {
	incrementSessionValidationFailures(reason)
	entry := s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"reason":   reason,
		"action":   "session_rejected",
	})
	if cause != nil {
		entry.Warnf("session rejected: %v", cause)
		return
	}
	entry.Warn("session rejected")
}

func (s *AuthService) storeError(code, message string, err error) error {
	if wrapped := handleCircuitBreakerError(err); wrapped != err {
		return wrapped
	}
	return newInternalError(code, message, err)
}
