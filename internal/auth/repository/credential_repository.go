package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/secure-blog/internal/auth/domain"
	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	"github.com/AlibekovAA/secure-blog/internal/common/db"
	commonerrors "github.com/AlibekovAA/secure-blog/internal/common/errors"
)

type CredentialRepository interface {
	Create(ctx context.Context, cred domain.Credential) error
	FindByUsername(ctx context.Context, username string) (domain.Credential, error)
	IncrementTokenVersion(ctx context.Context, username string) (int64, error)
}

var (
	ErrCredentialNotFound    = commonerrors.ErrCredentialNotFound
	ErrUsernameAlreadyExists = commonerrors.ErrUsernameAlreadyExists
)

type PgCredentialRepository struct {
	pool *pgxpool.Pool
}

func NewPgCredentialRepository(pool *pgxpool.Pool) *PgCredentialRepository {
	return &PgCredentialRepository{pool: pool}
}

func (r *PgCredentialRepository) Create(ctx context.Context, cred domain.Credential) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO credentials (username, password_digest, salt, email, token_version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		cred.Username,
		cred.PasswordDigest,
		cred.Salt,
		cred.Email,
		cred.TokenVersion,
		cred.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("create credential", start)
		return ErrUsernameAlreadyExists
	}
	return db.HandleExecError(err, "create credential", start)
}

func (r *PgCredentialRepository) FindByUsername(ctx context.Context, username string) (domain.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT username, password_digest, salt, email, token_version, created_at
		 FROM credentials
		 WHERE username = $1`,
		username,
	)

	var cred domain.Credential
	err := row.Scan(&cred.Username, &cred.PasswordDigest, &cred.Salt, &cred.Email, &cred.TokenVersion, &cred.CreatedAt)
	if err := db.HandleQueryError(err, ErrCredentialNotFound, "find credential", start); err != nil {
		return domain.Credential{}, err
	}
	return cred, nil
}

func (r *PgCredentialRepository) IncrementTokenVersion(ctx context.Context, username string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE credentials
		 SET token_version = token_version + 1
		 WHERE username = $1
		 RETURNING token_version`,
		username,
	)

	var version int64
	err := row.Scan(&version)
	if err := db.HandleQueryError(err, ErrCredentialNotFound, "increment token version", start); err != nil {
		return 0, err
	}
	return version, nil
}
