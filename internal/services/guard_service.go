package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/BradenHooton/loginguard/internal/models"
	pkglogger "github.com/BradenHooton/loginguard/pkg/logger"
)

// AttemptStore defines the storage contract for attempt records.
// Implementations must make IncrementFailure and Lock atomic per key so two
// concurrent failures never both read the same count (see the memory and
// Postgres stores in internal/repositories).
type AttemptStore interface {
	// Get returns the record for key, or (nil, nil) when absent. Callers must
	// not assume a returned record is live; expiry is re-checked at read time.
	Get(ctx context.Context, key string) (*models.AttemptRecord, error)
	// Put overwrites the record for key
	Put(ctx context.Context, key string, rec *models.AttemptRecord) error
	// Delete removes the record for key; absent keys are not an error
	Delete(ctx context.Context, key string) error
	// IncrementFailure atomically creates a fresh record (count=1,
	// windowStart=now) when the key is absent or its window has expired, and
	// increments the count otherwise. Returns the post-update record.
	IncrementFailure(ctx context.Context, key string, now time.Time) (*models.AttemptRecord, error)
	// Lock sets lockedUntil on the record for key unless an unexpired lock is
	// already present (compare-and-swap semantics)
	Lock(ctx context.Context, key string, lockedUntil, now time.Time) error
	// Sweep removes every expired record and reports how many were removed.
	// It must never remove a record still inside its window or lock.
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// LockoutNotifier receives lockout transitions for out-of-band alerting
type LockoutNotifier interface {
	NotifyLockout(ctx context.Context, identity models.Identity, lockedUntil time.Time) error
}

// GuardService is the externally callable facade over the attempt store and
// the evaluator. It is safe for concurrent use by many simultaneous login
// attempts.
type GuardService struct {
	store    AttemptStore
	config   GuardConfig
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
	notifier LockoutNotifier // optional

	lastSweep atomic.Int64 // unix nanos of the last opportunistic sweep
}

// NewGuardService creates a new GuardService
func NewGuardService(store AttemptStore, config GuardConfig, logger *slog.Logger, audit *pkglogger.AuditLogger) *GuardService {
	return &GuardService{
		store:  store,
		config: config,
		logger: logger,
		audit:  audit,
	}
}

// SetNotifier enables lockout alerting. Call before serving traffic.
func (s *GuardService) SetNotifier(notifier LockoutNotifier) {
	s.notifier = notifier
}

// Check reports whether the identity may attempt a login now. Read-only with
// respect to the identity's record: callers record the outcome of the actual
// credential check via RecordFailure or RecordSuccess.
func (s *GuardService) Check(ctx context.Context, identity models.Identity) (Decision, error) {
	key, err := DeriveIdentityKey(identity)
	if err != nil {
		return Decision{}, err
	}

	s.maybeSweep(ctx)

	now := time.Now()
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Error("failed to read attempt record", slog.Any("error", err))
		// Fail open for availability - store errors shouldn't block legitimate users
		return Decision{Allowed: true, Remaining: s.config.MaxAttempts - 1}, nil
	}

	decision := Evaluate(rec, now, s.config)
	if !decision.Allowed {
		s.audit.LogGuardEvent(pkglogger.AuditEvent{
			EventType:  "denied",
			Origin:     identity.Origin,
			Account:    identity.Account,
			RetryAfter: decision.RetryAfter,
		})
	}
	return decision, nil
}

// RecordFailure records a failed credential check for the identity and returns
// the post-update evaluation. The MaxAttempts-th failure inside a window
// transitions the key to locked.
func (s *GuardService) RecordFailure(ctx context.Context, identity models.Identity) (Decision, error) {
	key, err := DeriveIdentityKey(identity)
	if err != nil {
		return Decision{}, err
	}

	s.maybeSweep(ctx)

	now := time.Now()
	rec, err := s.store.IncrementFailure(ctx, key, now)
	if err != nil {
		return Decision{}, err
	}

	decision := Evaluate(rec, now, s.config)

	// The evaluator mandates exactly one write-back: a denial against a record
	// with no active lock means the lockout starts now.
	if !decision.Allowed && !rec.LockActive(now) && rec.Count >= s.config.MaxAttempts {
		lockedUntil := now.Add(s.config.Lockout)
		if err := s.store.Lock(ctx, key, lockedUntil, now); err != nil {
			return Decision{}, err
		}

		s.audit.LogGuardEvent(pkglogger.AuditEvent{
			EventType:  "lockout",
			Origin:     identity.Origin,
			Account:    identity.Account,
			RetryAfter: decision.RetryAfter,
		})
		s.logger.Warn("identity locked out",
			slog.String("origin", identity.Origin),
			slog.Int("failed_attempts", rec.Count),
			slog.Time("locked_until", lockedUntil))

		if s.notifier != nil {
			go s.notifyLockout(identity, lockedUntil)
		}
	}

	return decision, nil
}

// RecordSuccess clears all failure history for the identity, including an
// active lock. A successful authentication implies the real account owner
// logged in, so the key is forgiven unconditionally.
func (s *GuardService) RecordSuccess(ctx context.Context, identity models.Identity) error {
	key, err := DeriveIdentityKey(identity)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}

	s.audit.LogGuardEvent(pkglogger.AuditEvent{
		EventType: "reset",
		Origin:    identity.Origin,
		Account:   identity.Account,
	})
	return nil
}

// maybeSweep runs a best-effort sweep at most once per SweepInterval. The
// atomic compare-and-swap keeps concurrent callers from sweeping twice; losing
// the race means skipping the sweep, never blocking the request.
func (s *GuardService) maybeSweep(ctx context.Context) {
	if s.config.SweepInterval <= 0 {
		return
	}

	now := time.Now()
	last := s.lastSweep.Load()
	if now.UnixNano()-last < s.config.SweepInterval.Nanoseconds() {
		return
	}
	if !s.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	removed, err := s.store.Sweep(ctx, now)
	if err != nil {
		s.logger.Error("attempt sweep failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		s.logger.Info("swept expired attempt records", slog.Int64("removed", removed))
	}
}

// notifyLockout delivers a lockout alert with its own timeout so a slow
// notifier cannot stall the login path
func (s *GuardService) notifyLockout(identity models.Identity, lockedUntil time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.notifier.NotifyLockout(ctx, identity, lockedUntil); err != nil {
		s.logger.Error("lockout notification failed", slog.Any("error", err))
	}
}
