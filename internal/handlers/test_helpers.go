package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/loginguard/internal/models"
	"github.com/BradenHooton/loginguard/internal/services"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// MockGuardService implements GuardServiceInterface for testing
type MockGuardService struct {
	CheckFunc         func(ctx context.Context, identity models.Identity) (services.Decision, error)
	RecordFailureFunc func(ctx context.Context, identity models.Identity) (services.Decision, error)
	RecordSuccessFunc func(ctx context.Context, identity models.Identity) error
}

func (m *MockGuardService) Check(ctx context.Context, identity models.Identity) (services.Decision, error) {
	if m.CheckFunc == nil {
		return services.Decision{Allowed: true, Remaining: 4}, nil
	}
	return m.CheckFunc(ctx, identity)
}

func (m *MockGuardService) RecordFailure(ctx context.Context, identity models.Identity) (services.Decision, error) {
	if m.RecordFailureFunc == nil {
		return services.Decision{Allowed: true, Remaining: 3}, nil
	}
	return m.RecordFailureFunc(ctx, identity)
}

func (m *MockGuardService) RecordSuccess(ctx context.Context, identity models.Identity) error {
	if m.RecordSuccessFunc == nil {
		return nil
	}
	return m.RecordSuccessFunc(ctx, identity)
}
