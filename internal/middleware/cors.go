package middleware

import "net/http"

// CORS headers the guard endpoint promises on every response. The service is
// called cross-origin from mobile/web auth front doors, so the origin is open
// and the header allow-list covers the client SDK's standard headers.
const (
	corsAllowOrigin  = "*"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
)

// CORS sets the guard wire-contract CORS headers on every response and
// answers OPTIONS preflight requests with an empty 200
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", corsAllowOrigin)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
