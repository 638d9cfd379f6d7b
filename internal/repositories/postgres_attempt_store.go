package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BradenHooton/loginguard/internal/database"
	"github.com/BradenHooton/loginguard/internal/models"
)

// PostgresAttemptStore backs attempt records with a shared login_attempts
// table so multiple guard instances see one set of counters. Per-key atomicity
// comes from row-level atomic upserts, not client-side locking.
type PostgresAttemptStore struct {
	db      *database.DB
	window  time.Duration
	lockout time.Duration
}

// NewPostgresAttemptStore creates a new Postgres-backed attempt store
func NewPostgresAttemptStore(db *database.DB, window, lockout time.Duration) *PostgresAttemptStore {
	return &PostgresAttemptStore{db: db, window: window, lockout: lockout}
}

// Get returns the record for key, or (nil, nil) when absent
func (r *PostgresAttemptStore) Get(ctx context.Context, key string) (*models.AttemptRecord, error) {
	query := `
		SELECT attempt_count, window_start, locked_until FROM login_attempts
		WHERE identity_key = $1
	`

	var rec models.AttemptRecord
	err := r.db.Pool.QueryRow(ctx, query, key).Scan(&rec.Count, &rec.WindowStart, &rec.LockedUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rec, nil
}

// Put overwrites the record for key
func (r *PostgresAttemptStore) Put(ctx context.Context, key string, rec *models.AttemptRecord) error {
	query := `
		INSERT INTO login_attempts (identity_key, attempt_count, window_start, locked_until)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identity_key) DO UPDATE SET
			attempt_count = EXCLUDED.attempt_count,
			window_start  = EXCLUDED.window_start,
			locked_until  = EXCLUDED.locked_until
	`

	_, err := r.db.Pool.Exec(ctx, query, key, rec.Count, rec.WindowStart, rec.LockedUntil)
	return database.MapPostgresError(err)
}

// Delete removes the record for key
func (r *PostgresAttemptStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM login_attempts WHERE identity_key = $1`
	_, err := r.db.Pool.Exec(ctx, query, key)
	return database.MapPostgresError(err)
}

// IncrementFailure atomically creates-or-increments the record for key in a
// single upsert. The row either resets to a fresh window (count=1) when the
// previous window has lapsed with no active lock, or increments in place.
func (r *PostgresAttemptStore) IncrementFailure(ctx context.Context, key string, now time.Time) (*models.AttemptRecord, error) {
	windowCutoff := now.Add(-r.window)

	query := `
		INSERT INTO login_attempts (identity_key, attempt_count, window_start, locked_until)
		VALUES ($1, 1, $2, NULL)
		ON CONFLICT (identity_key) DO UPDATE SET
			attempt_count = CASE WHEN (login_attempts.locked_until IS NULL OR login_attempts.locked_until <= $2)
			                      AND login_attempts.window_start < $3
			                     THEN 1
			                     ELSE login_attempts.attempt_count + 1 END,
			window_start  = CASE WHEN (login_attempts.locked_until IS NULL OR login_attempts.locked_until <= $2)
			                      AND login_attempts.window_start < $3
			                     THEN $2
			                     ELSE login_attempts.window_start END,
			locked_until  = CASE WHEN (login_attempts.locked_until IS NULL OR login_attempts.locked_until <= $2)
			                      AND login_attempts.window_start < $3
			                     THEN NULL
			                     ELSE login_attempts.locked_until END
		RETURNING attempt_count, window_start, locked_until
	`

	var rec models.AttemptRecord
	err := r.db.Pool.QueryRow(ctx, query, key, now, windowCutoff).Scan(&rec.Count, &rec.WindowStart, &rec.LockedUntil)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rec, nil
}

// Lock sets locked_until for key unless an unexpired lock is already present
func (r *PostgresAttemptStore) Lock(ctx context.Context, key string, lockedUntil, now time.Time) error {
	query := `
		UPDATE login_attempts SET locked_until = $2
		WHERE identity_key = $1 AND (locked_until IS NULL OR locked_until <= $3)
	`

	_, err := r.db.Pool.Exec(ctx, query, key, lockedUntil, now)
	return database.MapPostgresError(err)
}

// Sweep removes every expired record: never-locked rows past window+lockout,
// and locked rows whose lock and window have both lapsed
func (r *PostgresAttemptStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM login_attempts
		WHERE (locked_until IS NULL AND window_start < $1)
		   OR (locked_until IS NOT NULL AND locked_until < $2 AND window_start < $3)
	`

	tag, err := r.db.Pool.Exec(ctx, query, now.Add(-(r.window + r.lockout)), now, now.Add(-r.window))
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
