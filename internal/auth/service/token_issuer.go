package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/secure-blog/internal/auth/domain"
	"github.com/AlibekovAA/secure-blog/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/secure-blog/internal/common/crypto"
)

type sessionClaims struct {
	Binding string `json:"bnd"`
	Version int64  `json:"ver"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	jwtSecret   []byte
	signer      *TokenSigner
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	sessionTTL  time.Duration
}

func NewTokenIssuer(
	jwtSecret string,
	signer *TokenSigner,
	idGenerator commoncrypto.IDGenerator,
	sessionTTL time.Duration,
	clock clock.Clock,
) *TokenIssuer {
	return &TokenIssuer{
		jwtSecret:   []byte(jwtSecret),
		signer:      signer,
		idGenerator: idGenerator,
		clock:       clock,
		sessionTTL:  sessionTTL,
	}
}

func (ti *TokenIssuer) Issue(cred domain.Credential) (string, domain.Session, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("generate jti: %w", err)
	}

	now := ti.clock.Now().Truncate(time.Second)
	expiresAt := now.Add(ti.sessionTTL)
	claims := sessionClaims{
		Binding: ti.signer.MintToken(cred.Username, cred.PasswordDigest, cred.Salt),
		Version: cred.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.Username,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(ti.jwtSecret)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("sign session token: %w", err)
	}

	incrementSessionTokensIssued()
	return tokenString, domain.Session{
		Username:     cred.Username,
		JTI:          jti,
		TokenVersion: cred.TokenVersion,
		IssuedAt:     now,
		ExpiresAt:    expiresAt,
	}, nil
}

// Parse checks signature, algorithm and expiry. It does not consult any store;
// callers still have to check the binding, version and denylist.
func (ti *TokenIssuer) Parse(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) { return ti.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(ti.clock.Now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Subject == "" || claims.ID == "" || claims.Binding == "" {
		return nil, errors.New("missing session claims")
	}
	return claims, nil
}

func (c *sessionClaims) session() domain.Session {
	s := domain.Session{
		Username:     c.Subject,
		JTI:          c.ID,
		TokenVersion: c.Version,
	}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
