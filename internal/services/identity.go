package services

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/BradenHooton/loginguard/internal/models"
)

// DeriveIdentityKey produces the deterministic bucket key for an identity:
// a hash over the network origin and the normalized (lower-cased, trimmed)
// account identifier. Two callers sharing only one of the two components get
// distinct keys.
//
// An identity with no origin fails with ErrInvalidIdentity rather than being
// bucketed under a default key, which would pool unrelated callers into one
// rate-limit bucket.
func DeriveIdentityKey(identity models.Identity) (string, error) {
	origin := strings.TrimSpace(identity.Origin)
	if origin == "" {
		return "", models.ErrInvalidIdentity
	}

	account := strings.ToLower(strings.TrimSpace(identity.Account))

	data := []byte(fmt.Sprintf("%s:%s", origin, account))
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)[:32], nil
}
