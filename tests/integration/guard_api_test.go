package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/BradenHooton/loginguard/internal/repositories"
	"github.com/BradenHooton/loginguard/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardTestConfig() services.GuardConfig {
	return services.GuardConfig{
		Window:      15 * time.Minute,
		MaxAttempts: 5,
		Lockout:     30 * time.Minute,
	}
}

func newGuardTestServer(t *testing.T) *TestServer {
	t.Helper()
	cfg := guardTestConfig()
	store := repositories.NewMemoryAttemptStore(cfg.Window, cfg.Lockout)
	ts := NewTestServer(store, cfg)
	t.Cleanup(ts.Close)
	return ts
}

func TestGuardAPI_FullLockoutCycle(t *testing.T) {
	ts := newGuardTestServer(t)
	email := TestAccount("lockout")
	clientIP := "203.0.113.5"

	// Fresh identity passes the check
	resp, err := ts.GuardRequest("check", email, clientIP)
	require.NoError(t, err)
	var check map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &check))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, check["allowed"])
	assert.Equal(t, float64(4), check["remainingAttempts"])

	// Five failures trip the lockout
	var failure map[string]interface{}
	for i := 0; i < 5; i++ {
		resp, err = ts.GuardRequest("record-failure", email, clientIP)
		require.NoError(t, err)
		failure = nil
		require.NoError(t, ParseJSONResponse(resp, &failure))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, failure["recorded"])
	}
	assert.Equal(t, true, failure["locked"])
	assert.Equal(t, float64(0), failure["remainingAttempts"])
	assert.Equal(t, float64(1800), failure["retryAfter"])

	// Locked identity is denied with the contract body and header
	resp, err = ts.GuardRequest("check", email, clientIP)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	var denied map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &denied))
	assert.Equal(t, false, denied["allowed"])
	assert.Equal(t, "Too many login attempts. Please try again later.", denied["error"])
	assert.InDelta(t, 1800, denied["retryAfter"], 1)

	// A successful login forgives everything
	resp, err = ts.GuardRequest("record-success", email, clientIP)
	require.NoError(t, err)
	var reset map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &reset))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, reset["reset"])

	resp, err = ts.GuardRequest("check", email, clientIP)
	require.NoError(t, err)
	check = nil
	require.NoError(t, ParseJSONResponse(resp, &check))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, check["allowed"])
	assert.Equal(t, float64(4), check["remainingAttempts"])
}

func TestGuardAPI_IdentityIsolationAcrossOrigins(t *testing.T) {
	ts := newGuardTestServer(t)
	email := TestAccount("isolation")

	for i := 0; i < 5; i++ {
		resp, err := ts.GuardRequest("record-failure", email, "203.0.113.5")
		require.NoError(t, err)
		resp.Body.Close()
	}

	// Same account from another origin is untouched
	resp, err := ts.GuardRequest("check", email, "198.51.100.7")
	require.NoError(t, err)
	var check map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &check))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, check["allowed"])
}

func TestGuardAPI_CORSHeadersOnEveryResponse(t *testing.T) {
	ts := newGuardTestServer(t)

	resp, err := ts.GuardRequest("check", TestAccount("cors"), "203.0.113.5")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", resp.Header.Get("Access-Control-Allow-Headers"))

	// Preflight gets an empty 200 with the same headers
	req, err := http.NewRequest("OPTIONS", ts.Server.URL+"/rate-limit", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", resp.Header.Get("Access-Control-Allow-Headers"))
}

func TestGuardAPI_InvalidActionRejected(t *testing.T) {
	ts := newGuardTestServer(t)

	resp, err := ts.GuardRequest("purge", TestAccount("invalid"), "203.0.113.5")
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &body))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid action. Use: check, record-failure, or record-success", body["error"])
}

func TestGuardAPI_MissingOriginHeadersSharesUnknownBucket(t *testing.T) {
	ts := newGuardTestServer(t)
	email := TestAccount("unknown-bucket")

	// No X-Forwarded-For: both clients land in the "unknown" origin bucket.
	// RealIP middleware leaves RemoteAddr alone, and ClientOrigin ignores it.
	for i := 0; i < 5; i++ {
		resp, err := ts.Request("POST", "/rate-limit", map[string]string{
			"action": "record-failure",
			"email":  email,
		}, nil)
		require.NoError(t, err)
		resp.Body.Close()
	}

	resp, err := ts.Request("POST", "/rate-limit", map[string]string{
		"action": "check",
		"email":  email,
	}, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
