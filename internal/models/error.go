package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternalServer = errors.New("internal server error")

	// ErrInvalidIdentity is returned when an identity key cannot be derived
	// (missing origin). Callers must never be silently pooled into a shared
	// default bucket.
	ErrInvalidIdentity = errors.New("invalid identity: missing origin")
)
