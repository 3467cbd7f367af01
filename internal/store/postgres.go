package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the dictionary tables. It is idempotent: every
// statement tolerates the object already existing, so [PostgresStore.Migrate]
// can run on every startup.
const Schema = `
CREATE TABLE IF NOT EXISTS taught_words (
    english     TEXT PRIMARY KEY,
    tulu        TEXT NOT NULL,
    contributor TEXT NOT NULL DEFAULT '',
    usage_count INTEGER NOT NULL DEFAULT 0,
    votes       INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_taught_words_updated ON taught_words(updated_at DESC);

CREATE TABLE IF NOT EXISTS api_cache (
    english     TEXT PRIMARY KEY,
    translation TEXT NOT NULL,
    api_source  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_api_cache_created ON api_cache(created_at);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// closer is the optional close hook a [DB] may expose (pgxpool.Pool does).
type closer interface {
	Close()
}

// PostgresStore is a [Store] backed by PostgreSQL.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] over the given connection or
// pool. Call [PostgresStore.Migrate] before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL, creating tables and indexes if they do
// not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// GetTaught implements [Store.GetTaught].
func (s *PostgresStore) GetTaught(ctx context.Context, key string) (TaughtEntry, error) {
	const query = `
		SELECT english, tulu, contributor, usage_count, votes, created_at, updated_at
		FROM taught_words
		WHERE english = $1`

	var e TaughtEntry
	err := s.db.QueryRow(ctx, query, key).Scan(
		&e.English, &e.Tulu, &e.Contributor, &e.UsageCount, &e.Votes,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TaughtEntry{}, ErrNotFound
		}
		return TaughtEntry{}, fmt.Errorf("store: get taught %q: %w", key, err)
	}
	return e, nil
}

// PutTaught implements [Store.PutTaught] as an upsert on the english key.
func (s *PostgresStore) PutTaught(ctx context.Context, e TaughtEntry) error {
	const query = `
		INSERT INTO taught_words (english, tulu, contributor, usage_count, votes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (english) DO UPDATE SET
			tulu = EXCLUDED.tulu,
			contributor = EXCLUDED.contributor,
			usage_count = EXCLUDED.usage_count,
			votes = EXCLUDED.votes,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.Exec(ctx, query,
		e.English, e.Tulu, e.Contributor, e.UsageCount, e.Votes, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: put taught %q: %w", e.English, err)
	}
	return nil
}

// DeleteTaught implements [Store.DeleteTaught].
func (s *PostgresStore) DeleteTaught(ctx context.Context, key string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM taught_words WHERE english = $1`, key)
	if err != nil {
		return fmt.Errorf("store: delete taught %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTaught implements [Store.ListTaught].
func (s *PostgresStore) ListTaught(ctx context.Context) ([]TaughtEntry, error) {
	const query = `
		SELECT english, tulu, contributor, usage_count, votes, created_at, updated_at
		FROM taught_words`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list taught: %w", err)
	}
	defer rows.Close()

	var out []TaughtEntry
	for rows.Next() {
		var e TaughtEntry
		if err := rows.Scan(
			&e.English, &e.Tulu, &e.Contributor, &e.UsageCount, &e.Votes,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: list taught scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list taught: %w", err)
	}
	return out, nil
}

// GetAPICache implements [Store.GetAPICache].
func (s *PostgresStore) GetAPICache(ctx context.Context, key string) (APICacheEntry, error) {
	const query = `
		SELECT english, translation, api_source, created_at
		FROM api_cache
		WHERE english = $1`

	var e APICacheEntry
	err := s.db.QueryRow(ctx, query, key).Scan(&e.English, &e.Translation, &e.Source, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return APICacheEntry{}, ErrNotFound
		}
		return APICacheEntry{}, fmt.Errorf("store: get api cache %q: %w", key, err)
	}
	return e, nil
}

// PutAPICache implements [Store.PutAPICache] as an upsert on the english key.
func (s *PostgresStore) PutAPICache(ctx context.Context, e APICacheEntry) error {
	const query = `
		INSERT INTO api_cache (english, translation, api_source, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (english) DO UPDATE SET
			translation = EXCLUDED.translation,
			api_source = EXCLUDED.api_source,
			created_at = EXCLUDED.created_at`

	_, err := s.db.Exec(ctx, query, e.English, e.Translation, e.Source, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: put api cache %q: %w", e.English, err)
	}
	return nil
}

// Count implements [Store.Count].
func (s *PostgresStore) Count(ctx context.Context, table Table) (int, error) {
	var query string
	switch table {
	case TableTaught:
		query = `SELECT count(*) FROM taught_words`
	case TableAPICache:
		query = `SELECT count(*) FROM api_cache`
	default:
		return 0, ErrUnknownTable
	}

	var n int
	if err := s.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count %s: %w", table, err)
	}
	return n, nil
}

// ListRecent implements [Store.ListRecent].
func (s *PostgresStore) ListRecent(ctx context.Context, table Table, limit int) ([]Record, error) {
	var query string
	switch table {
	case TableTaught:
		query = `
			SELECT english, tulu, contributor, updated_at
			FROM taught_words
			ORDER BY updated_at DESC
			LIMIT $1`
	case TableAPICache:
		query = `
			SELECT english, translation, api_source, created_at
			FROM api_cache
			ORDER BY created_at DESC
			LIMIT $1`
	default:
		return nil, ErrUnknownTable
	}

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list recent %s: %w", table, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Key, &r.Value, &r.Source, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: list recent scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list recent %s: %w", table, err)
	}
	return out, nil
}

// Ping implements [Store.Ping].
func (s *PostgresStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// Close implements [Store.Close].
func (s *PostgresStore) Close() {
	if c, ok := s.db.(closer); ok {
		c.Close()
	}
}
