package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/BradenHooton/loginguard/internal/models"
)

// MemoryAttemptStore keeps attempt records in a process-local map. Suitable
// for single-instance deployments and tests; multi-instance deployments need
// the Postgres store so all instances share one set of counters.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	records map[string]*models.AttemptRecord
	window  time.Duration
	lockout time.Duration
}

// NewMemoryAttemptStore creates a new in-memory attempt store
func NewMemoryAttemptStore(window, lockout time.Duration) *MemoryAttemptStore {
	return &MemoryAttemptStore{
		records: make(map[string]*models.AttemptRecord),
		window:  window,
		lockout: lockout,
	}
}

// Get returns a copy of the record for key, or (nil, nil) when absent
func (m *MemoryAttemptStore) Get(ctx context.Context, key string) (*models.AttemptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// Put overwrites the record for key
func (m *MemoryAttemptStore) Put(ctx context.Context, key string, rec *models.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	m.records[key] = &cp
	return nil
}

// Delete removes the record for key
func (m *MemoryAttemptStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

// IncrementFailure creates a fresh record when the key is absent or its window
// has expired, and increments the count otherwise. The whole read-modify-write
// runs under the store mutex, so concurrent failures for one key serialize and
// no increment is lost.
func (m *MemoryAttemptStore) IncrementFailure(ctx context.Context, key string, now time.Time) (*models.AttemptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok || rec.WindowExpired(now, m.window) {
		rec = &models.AttemptRecord{Count: 1, WindowStart: now}
		m.records[key] = rec
	} else {
		rec.Count++
	}

	cp := *rec
	return &cp, nil
}

// Lock sets lockedUntil on the record for key unless an unexpired lock is
// already present. A missing record (racing Delete or Sweep) is not an error.
func (m *MemoryAttemptStore) Lock(ctx context.Context, key string, lockedUntil, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return nil
	}
	if rec.LockActive(now) {
		return nil
	}

	until := lockedUntil
	rec.LockedUntil = &until
	return nil
}

// Sweep removes every expired record
func (m *MemoryAttemptStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for key, rec := range m.records {
		if rec.Expired(now, m.window, m.lockout) {
			delete(m.records, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of live records; used by tests and stats
func (m *MemoryAttemptStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
