package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitByIP_AllowsWithinLimit(t *testing.T) {
	middleware := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 5})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/rate-limit", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, recorder.Code)
		}
	}
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	middleware := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 2})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/rate-limit", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429 after limit, got %d", last.Code)
	}
	if ct := last.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got Content-Type %q", ct)
	}
}

func TestRateLimitByIP_SeparateBucketsPerIP(t *testing.T) {
	middleware := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 1})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest("POST", "/rate-limit", nil)
	first.RemoteAddr = "192.0.2.1:12345"
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, first)
	if recorder.Code != http.StatusOK {
		t.Fatalf("first IP: expected 200, got %d", recorder.Code)
	}

	second := httptest.NewRequest("POST", "/rate-limit", nil)
	second.RemoteAddr = "198.51.100.7:12345"
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, second)
	if recorder.Code != http.StatusOK {
		t.Errorf("second IP should have its own bucket, got %d", recorder.Code)
	}
}

func TestDefaultGuardRateLimit(t *testing.T) {
	config := DefaultGuardRateLimit()
	if config.RequestsPerMinute != 60 {
		t.Errorf("expected 60 requests per minute, got %d", config.RequestsPerMinute)
	}
}
