package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shortloop/shortloop/internal/link"
)

// Expected schema:
//
//	CREATE TABLE links (
//	    short_code text PRIMARY KEY,
//	    long_url   text NOT NULL,
//	    owner_id   text,
//	    expires_at timestamptz,
//	    created_at timestamptz NOT NULL
//	);
//	CREATE INDEX links_owner_idx ON links (owner_id, created_at DESC);

const uniqueViolation = "23505"

// PostgresLinkStore is a PostgreSQL implementation of link.Repository. The
// primary key on short_code is the storage-layer uniqueness backstop.
type PostgresLinkStore struct {
	pool *pgxpool.Pool
}

// NewPostgresLinkStore creates a new PostgreSQL-backed link store.
func NewPostgresLinkStore(pool *pgxpool.Pool) *PostgresLinkStore {
	return &PostgresLinkStore{pool: pool}
}

func (p *PostgresLinkStore) Create(ctx context.Context, l *link.Link) error {
	query := `
		INSERT INTO links (short_code, long_url, owner_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		string(l.Code),
		l.LongURL,
		nullableString(l.OwnerID),
		l.ExpiresAt,
		l.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return link.ErrDuplicateCode
		}

		return err
	}

	return nil
}

func (p *PostgresLinkStore) FindByCode(ctx context.Context, code link.Code) (*link.Link, error) {
	query := `
		SELECT short_code, long_url, owner_id, expires_at, created_at
		FROM links
		WHERE short_code = $1
	`

	l, err := scanLink(p.pool.QueryRow(ctx, query, string(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, link.ErrNotFound
		}

		return nil, err
	}

	return l, nil
}

func (p *PostgresLinkStore) FindByOwner(ctx context.Context, ownerID string) ([]*link.Link, error) {
	query := `
		SELECT short_code, long_url, owner_id, expires_at, created_at
		FROM links
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLinks(rows)
}

func (p *PostgresLinkStore) FindAll(ctx context.Context) ([]*link.Link, error) {
	query := `
		SELECT short_code, long_url, owner_id, expires_at, created_at
		FROM links
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLinks(rows)
}

func (p *PostgresLinkStore) Delete(ctx context.Context, code link.Code) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM links WHERE short_code = $1`, string(code))

	return err
}

func scanLink(row pgx.Row) (*link.Link, error) {
	var l link.Link

	var ownerID *string

	err := row.Scan(&l.Code, &l.LongURL, &ownerID, &l.ExpiresAt, &l.CreatedAt)
	if err != nil {
		return nil, err
	}

	if ownerID != nil {
		l.OwnerID = *ownerID
	}

	return &l, nil
}

func collectLinks(rows pgx.Rows) ([]*link.Link, error) {
	var links []*link.Link

	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, l)
	}

	return links, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ link.Repository = (*PostgresLinkStore)(nil)
