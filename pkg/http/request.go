package http

import (
	"net/http"
	"strings"
)

// ClientOrigin extracts the network origin identifier used to bucket
// rate-limit counters: the first comma-separated X-Forwarded-For value,
// falling back to X-Real-IP, falling back to the literal "unknown".
//
// The fallback keeps unidentified callers in one shared bucket instead of
// rejecting them; the composite identity key still separates them by account.
func ClientOrigin(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return "unknown"
}
