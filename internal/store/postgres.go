package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/golinks/internal/linkdir"
)

// PostgresStore is a PostgreSQL implementation of linkdir.Repository and
// linkdir.UserRepository. Create relies on ON CONFLICT DO NOTHING for its
// single-winner guarantee and Increment on a single UPDATE ... RETURNING.
//
// Schema:
//
//	CREATE TABLE links (
//	    key        TEXT PRIMARY KEY,
//	    target     TEXT NOT NULL,
//	    owner      TEXT NOT NULL,
//	    clicks     BIGINT NOT NULL DEFAULT 0,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX links_owner_idx ON links (owner);
//	CREATE TABLE users (id TEXT PRIMARY KEY);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Get(ctx context.Context, key linkdir.Key) (*linkdir.Link, error) {
	query := `
		SELECT key, target, owner, clicks, created_at, updated_at
		FROM links
		WHERE key = $1
	`

	return scanLink(p.pool.QueryRow(ctx, query, key.Relative()))
}

func (p *PostgresStore) Create(ctx context.Context, link *linkdir.Link) error {
	query := `
		INSERT INTO links (key, target, owner, clicks, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5)
		ON CONFLICT (key) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		link.Key.Relative(),
		link.Target,
		link.Owner,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return linkdir.ErrExists
	}

	return nil
}

func (p *PostgresStore) SetTarget(ctx context.Context, key linkdir.Key, target string, updatedAt time.Time) error {
	query := `UPDATE links SET target = $2, updated_at = $3 WHERE key = $1`

	tag, err := p.pool.Exec(ctx, query, key.Relative(), target, updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return linkdir.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) SetOwner(ctx context.Context, key linkdir.Key, owner string, updatedAt time.Time) error {
	query := `UPDATE links SET owner = $2, updated_at = $3 WHERE key = $1`

	tag, err := p.pool.Exec(ctx, query, key.Relative(), owner, updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return linkdir.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key linkdir.Key) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM links WHERE key = $1`, key.Relative())
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (p *PostgresStore) Increment(ctx context.Context, key linkdir.Key) (*linkdir.Link, error) {
	query := `
		UPDATE links SET clicks = clicks + 1
		WHERE key = $1
		RETURNING key, target, owner, clicks, created_at, updated_at
	`

	return scanLink(p.pool.QueryRow(ctx, query, key.Relative()))
}

func (p *PostgresStore) ListByOwner(ctx context.Context, owner string) ([]*linkdir.Link, error) {
	query := `
		SELECT key, target, owner, clicks, created_at, updated_at
		FROM links
		WHERE owner = $1
		ORDER BY key
	`

	rows, err := p.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*linkdir.Link

	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

func (p *PostgresStore) FindOrCreate(ctx context.Context, id string) (*linkdir.User, error) {
	query := `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`

	if _, err := p.pool.Exec(ctx, query, id); err != nil {
		return nil, err
	}

	return &linkdir.User{ID: id}, nil
}

func (p *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func scanLink(row pgx.Row) (*linkdir.Link, error) {
	var (
		link linkdir.Link
		key  string
	)

	err := row.Scan(&key, &link.Target, &link.Owner, &link.Clicks, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, linkdir.ErrNotFound
		}

		return nil, err
	}

	link.Key = linkdir.Key(key)

	return &link, nil
}

// Compile-time checks.
var (
	_ linkdir.Repository     = (*PostgresStore)(nil)
	_ linkdir.UserRepository = (*PostgresStore)(nil)
)
