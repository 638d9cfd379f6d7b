package routes

import (
	"net/http"

	"github.com/BradenHooton/loginguard/internal/auth"
	"github.com/BradenHooton/loginguard/internal/handlers"
	"github.com/BradenHooton/loginguard/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	guardHandler *handlers.GuardHandler,
	tokenManager *auth.TokenManager,
	rateLimitConfig middleware.RateLimitConfig,
) {
	router.Route("/rate-limit", func(r chi.Router) {
		// Wire-contract CORS applies to the guard endpoint only; OPTIONS is
		// answered by the middleware before it reaches the no-op handler.
		r.Use(middleware.CORS())
		if tokenManager != nil {
			r.Use(auth.RequireServiceAuth(tokenManager))
		}
		r.Use(middleware.RateLimitByIP(rateLimitConfig))

		r.Post("/", guardHandler.Handle)
		r.Options("/", func(w http.ResponseWriter, r *http.Request) {})
	})
}
