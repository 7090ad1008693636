// Package collection stores analyzed resumes keyed by their upload filename.
package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Name is the collection every record is written to.
const Name = "resumes"

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("record not found")

// Metadata is stored alongside the resume text.
type Metadata struct {
	Filename       string `json:"filename"`
	JobDescription string `json:"job_desc"`
	Analysis       string `json:"analysis"`
}

// Record is one stored resume. ID is the upload filename.
type Record struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	Metadata  Metadata  `json:"metadata"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Collection persists records. Writing a record whose ID already exists
// replaces it.
type Collection interface {
	// Upsert stores rec and reports whether an existing record was replaced.
	Upsert(ctx context.Context, rec Record) (replaced bool, err error)
	Get(ctx context.Context, id string) (*Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// WriteError wraps a failed write to the collection.
type WriteError struct {
	ID    string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to store record %q: %v", e.ID, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// New opens the collection for databaseURL: in memory when it is empty,
// SQLite for "sqlite://" and "file:" URLs, PostgreSQL otherwise.
func New(ctx context.Context, databaseURL string) (Collection, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	switch {
	case databaseURL == "":
		return NewMemory(), nil
	case strings.HasPrefix(databaseURL, "sqlite://"), strings.HasPrefix(databaseURL, "file:"):
		return OpenSQLite(ctx, databaseURL)
	default:
		return Connect(ctx, databaseURL)
	}
}

func validate(rec Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id is empty")
	}
	return nil
}
