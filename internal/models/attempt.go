package models

import "time"

// AttemptRecord tracks failed login attempts for a single identity key
type AttemptRecord struct {
	Count       int        `db:"attempt_count"`
	WindowStart time.Time  `db:"window_start"`
	LockedUntil *time.Time `db:"locked_until"`
}

// Identity is the caller-supplied pair the guard buckets attempts by.
// Origin is the network origin identifier (usually the client IP);
// Account is the optional account identifier (email), normalized before hashing.
type Identity struct {
	Origin  string
	Account string
}

// LockActive reports whether the record carries a lock that has not yet expired
func (r *AttemptRecord) LockActive(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// WindowExpired reports whether the counting window has lapsed with no active lock.
// A record in this state is treated as absent by the evaluator and reset to a
// fresh record by the next recorded failure.
func (r *AttemptRecord) WindowExpired(now time.Time, window time.Duration) bool {
	if r.LockActive(now) {
		return false
	}
	return now.Sub(r.WindowStart) > window
}

// Expired reports whether the record is dead and eligible for sweep removal:
// either it was never locked and window+lockout has elapsed since the window
// began, or its lock has lapsed and the window has elapsed too. Expired implies
// WindowExpired; the sweep threshold for never-locked records is deliberately
// looser so a sweep can never race a record back to life.
func (r *AttemptRecord) Expired(now time.Time, window, lockout time.Duration) bool {
	if r.LockedUntil == nil {
		return now.Sub(r.WindowStart) > window+lockout
	}
	return now.After(*r.LockedUntil) && now.Sub(r.WindowStart) > window
}
