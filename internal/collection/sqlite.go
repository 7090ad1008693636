package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const createSQLiteTableSQL = `CREATE TABLE IF NOT EXISTS resumes (
	id         TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	updated_at DATETIME NOT NULL
)`

// SQLite is a collection kept in a local SQLite database file.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at dsn and ensures the
// resumes table exists. dsn may carry a "sqlite://" prefix.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection serialises writers and keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createSQLiteTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create resumes table: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Upsert inserts rec or replaces the row with the same ID.
func (s *SQLite) Upsert(ctx context.Context, rec Record) (replaced bool, err error) {
	if err := validate(rec); err != nil {
		return false, &WriteError{ID: rec.ID, Cause: err}
	}

	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return false, &WriteError{ID: rec.ID, Cause: fmt.Errorf("failed to marshal metadata: %w", err)}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, &WriteError{ID: rec.ID, Cause: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM resumes WHERE id = ?)`, rec.ID,
	).Scan(&replaced); err != nil {
		return false, &WriteError{ID: rec.ID, Cause: err}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO resumes (id, document, metadata, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET document = excluded.document,
		 metadata = excluded.metadata, updated_at = excluded.updated_at`,
		rec.ID, rec.Document, string(meta), s.now().UTC(),
	); err != nil {
		return false, &WriteError{ID: rec.ID, Cause: err}
	}

	if err = tx.Commit(); err != nil {
		return false, &WriteError{ID: rec.ID, Cause: err}
	}
	return replaced, nil
}

// Get returns the record with id.
func (s *SQLite) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	var meta string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, document, metadata, updated_at FROM resumes WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Document, &meta, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if err := json.Unmarshal([]byte(meta), &rec.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &rec, nil
}

// Count returns the number of stored records.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
