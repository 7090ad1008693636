package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS resumes (
	id         TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	metadata   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres is a collection backed by a PostgreSQL table.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool and ensures the resumes table exists.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create resumes table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Upsert inserts rec or replaces the row with the same ID.
func (p *Postgres) Upsert(ctx context.Context, rec Record) (bool, error) {
	if err := validate(rec); err != nil {
		return false, &WriteError{ID: rec.ID, Cause: err}
	}

	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return false, &WriteError{ID: rec.ID, Cause: fmt.Errorf("failed to marshal metadata: %w", err)}
	}

	// xmax is zero only for a freshly inserted row
	var inserted bool
	err = p.pool.QueryRow(ctx,
		`INSERT INTO resumes (id, document, metadata, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE SET document = $2, metadata = $3, updated_at = NOW()
		 RETURNING (xmax = 0) AS inserted`,
		rec.ID, rec.Document, meta,
	).Scan(&inserted)
	if err != nil {
		return false, &WriteError{ID: rec.ID, Cause: err}
	}
	return !inserted, nil
}

// Get returns the record with id.
func (p *Postgres) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	var meta []byte
	err := p.pool.QueryRow(ctx,
		`SELECT id, document, metadata, updated_at FROM resumes WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Document, &meta, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &rec, nil
}

// Count returns the number of stored records.
func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM resumes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
