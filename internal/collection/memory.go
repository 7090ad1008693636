package collection

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process collection. Its contents are lost when the process exits.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemory creates an empty in-memory collection.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

// Upsert stores rec, replacing any record with the same ID.
func (m *Memory) Upsert(_ context.Context, rec Record) (bool, error) {
	if err := validate(rec); err != nil {
		return false, &WriteError{ID: rec.ID, Cause: err}
	}

	rec.UpdatedAt = m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	_, replaced := m.records[rec.ID]
	m.records[rec.ID] = rec
	return replaced, nil
}

// Get returns a copy of the record with id.
func (m *Memory) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Count returns the number of stored records.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
