package auth

import (
	"net/http"
	"strings"

	pkghttp "github.com/BradenHooton/loginguard/pkg/http"
)

// RequireServiceAuth validates the Authorization bearer token on every
// request. Preflight OPTIONS requests pass through so CORS keeps working.
func RequireServiceAuth(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				pkghttp.WriteUnauthorized(w, "Missing bearer token")
				return
			}

			if _, err := tm.ValidateToken(strings.TrimPrefix(header, "Bearer ")); err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
