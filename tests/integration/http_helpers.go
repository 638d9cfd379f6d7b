package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/loginguard/internal/handlers"
	middlewareCustom "github.com/BradenHooton/loginguard/internal/middleware"
	"github.com/BradenHooton/loginguard/internal/routes"
	"github.com/BradenHooton/loginguard/internal/services"
	pkglogger "github.com/BradenHooton/loginguard/pkg/logger"
)

// TestServer wraps httptest.Server with the full guard middleware stack
type TestServer struct {
	Server *httptest.Server
	Guard  *services.GuardService
	logger *slog.Logger
}

// NewTestServer initializes a complete HTTP server over the given attempt store
func NewTestServer(store services.AttemptStore, cfg services.GuardConfig) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	auditLogger := pkglogger.NewAuditLogger(logger)
	guardService := services.NewGuardService(store, cfg, logger, auditLogger)
	guardHandler := handlers.NewGuardHandler(guardService, logger)

	// Mirror the production middleware stack
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	rateLimitConfig := middlewareCustom.RateLimitConfig{RequestsPerMinute: 10000}
	routes.RegisterRoutes(r, guardHandler, nil, rateLimitConfig)

	server := httptest.NewServer(r)

	return &TestServer{
		Server: server,
		Guard:  guardService,
		logger: logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// GuardRequest posts a guard action for the given client identity
func (ts *TestServer) GuardRequest(action, email, clientIP string) (*http.Response, error) {
	return ts.Request("POST", "/rate-limit", map[string]string{
		"action": action,
		"email":  email,
	}, map[string]string{
		"X-Forwarded-For": clientIP,
	})
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
