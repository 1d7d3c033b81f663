package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/secure-blog/internal/common/clock"
	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	"github.com/AlibekovAA/secure-blog/internal/common/db"
)

// RevokedTokenRepository is the session denylist. Entries only need to live
// until the token they name would have expired anyway.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, jti string, username string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// PgRevokedTokenRepository compares expiry against the injected clock rather
// than the database's NOW(), so it agrees with the token issuer about which
// tokens are still alive.
type PgRevokedTokenRepository struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

func NewPgRevokedTokenRepository(pool *pgxpool.Pool, clk clock.Clock) *PgRevokedTokenRepository {
	return &PgRevokedTokenRepository{pool: pool, clock: clk}
}

func (r *PgRevokedTokenRepository) Revoke(ctx context.Context, jti string, username string, expiresAt time.Time) error {
	now := r.clock.Now().UTC()
	if !expiresAt.After(now) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO revoked_tokens (jti, username, expires_at, revoked_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (jti) DO NOTHING`,
		jti,
		username,
		expiresAt.UTC(),
		now,
	)
	return db.HandleExecError(err, "insert revoked token", start)
}

func (r *PgRevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS(
			SELECT 1 FROM revoked_tokens
			WHERE jti = $1 AND expires_at > $2
		)`,
		jti,
		r.clock.Now().UTC(),
	).Scan(&exists)
	if err != nil {
		return false, db.HandleQueryError(err, nil, "check revoked token", start)
	}
	db.MeasureQueryDuration("check revoked token", start)
	return exists, nil
}

func (r *PgRevokedTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`DELETE FROM revoked_tokens WHERE expires_at <= $1`,
		r.clock.Now().UTC(),
	)
	if err != nil {
		return 0, db.HandleExecError(err, "delete expired revoked tokens", start)
	}
	db.MeasureQueryDuration("delete expired revoked tokens", start)
	return res.RowsAffected(), nil
}
