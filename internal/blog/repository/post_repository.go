package repository

import (
	"context"
	"errors"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/secure-blog/internal/blog/domain"
	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	"github.com/AlibekovAA/secure-blog/internal/common/db"
)

// PostStore is the authoritative post store. Reads may lag behind writes:
// FindByID reports found=false for a post that exists but is not visible yet.
type PostStore interface {
	Insert(ctx context.Context, post domain.NewPost) (int64, error)
	FindByID(ctx context.Context, id int64) (domain.Post, bool, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Post, error)
}

// PgPostStore writes to the primary and reads from the replica when one is
// configured, so reads are only eventually consistent with writes.
type PgPostStore struct {
	writer *pgxpool.Pool
	reader *pgxpool.Pool
}

func NewPgPostStore(writer, reader *pgxpool.Pool) *PgPostStore {
	if reader == nil {
		reader = writer
	}
	return &PgPostStore{writer: writer, reader: reader}
}

func (s *PgPostStore) Insert(ctx context.Context, post domain.NewPost) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	row := s.writer.QueryRow(
		ctx,
		`INSERT INTO posts (subject, content, author, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		post.Subject,
		post.Content,
		post.Author,
		post.CreatedAt,
	)

	var id int64
	err := row.Scan(&id)
	if err := db.HandleExecError(err, "insert post", start); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PgPostStore) FindByID(ctx context.Context, id int64) (domain.Post, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	row := s.reader.QueryRow(
		ctx,
		`SELECT id, subject, content, author, created_at
		 FROM posts
		 WHERE id = $1`,
		id,
	)

	var p domain.Post
	err := row.Scan(&p.ID, &p.Subject, &p.Content, &p.Author, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		db.MeasureQueryDuration("find post", start)
		return domain.Post{}, false, nil
	}
	if err := db.HandleQueryError(err, nil, "find post", start); err != nil {
		return domain.Post{}, false, err
	}
	return p, true, nil
}

func (s *PgPostStore) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.reader.Query(
		ctx,
		`SELECT id, subject, content, author, created_at
		 FROM posts
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list recent posts", start)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0, limit)
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Subject, &p.Content, &p.Author, &p.CreatedAt); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan recent posts", start)
		}
		posts = append(posts, p)
	}
	if err := db.HandleQueryError(rows.Err(), nil, "list recent posts", start); err != nil {
		return nil, err
	}
	return posts, nil
}
