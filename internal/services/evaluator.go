package services

import (
	"time"

	"github.com/BradenHooton/loginguard/internal/models"
)

// GuardConfig holds the attempt-window limits. Fixed in deployment but exposed
// as configuration for testability.
type GuardConfig struct {
	Window        time.Duration // counting window for failed attempts
	MaxAttempts   int           // failures tolerated inside one window
	Lockout       time.Duration // denial period once MaxAttempts is reached
	SweepInterval time.Duration // minimum gap between opportunistic sweeps
}

// DefaultGuardConfig returns the production limits: 5 attempts per 15 minutes,
// 30 minute lockout
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Window:        15 * time.Minute,
		MaxAttempts:   5,
		Lockout:       30 * time.Minute,
		SweepInterval: 1 * time.Minute,
	}
}

// Decision is the evaluator's answer for one identity key at one instant
type Decision struct {
	Allowed    bool
	Remaining  int  // failures left before lockout; meaningful when Allowed
	Locked     bool // a lockout applies (active, or required as of this evaluation)
	RetryAfter int  // whole seconds until attempts may resume; meaningful when denied
}

// Evaluate answers whether the identity key behind rec may attempt now.
// Pure: no I/O, no mutation. rec may be nil (no prior failures).
//
// When the decision is a denial with Locked set and the record carries no
// active lock, the caller must write lockedUntil = now + Lockout back to the
// store; that is the only evaluator outcome with a mandated side effect.
func Evaluate(rec *models.AttemptRecord, now time.Time, cfg GuardConfig) Decision {
	if rec == nil {
		return Decision{Allowed: true, Remaining: cfg.MaxAttempts - 1}
	}

	if rec.LockActive(now) {
		return Decision{Locked: true, RetryAfter: ceilSeconds(rec.LockedUntil.Sub(now))}
	}

	// Window lapsed: treated as absent. The stale record is not deleted here;
	// the next recorded failure overwrites it and the sweep removes it.
	if rec.WindowExpired(now, cfg.Window) {
		return Decision{Allowed: true, Remaining: cfg.MaxAttempts - 1}
	}

	if rec.Count >= cfg.MaxAttempts {
		return Decision{Locked: true, RetryAfter: ceilSeconds(cfg.Lockout)}
	}

	return Decision{Allowed: true, Remaining: cfg.MaxAttempts - rec.Count - 1}
}

// ceilSeconds rounds a duration up to whole seconds so remaining lockout time
// is never under-reported
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
