package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/loginguard/pkg/http"
	"github.com/stretchr/testify/assert"
)

func TestClientOrigin(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "first forwarded-for value wins",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1, 10.0.0.2"},
			want:    "203.0.113.5",
		},
		{
			name:    "forwarded-for value is trimmed",
			headers: map[string]string{"X-Forwarded-For": "  203.0.113.5  , 10.0.0.1"},
			want:    "203.0.113.5",
		},
		{
			name: "forwarded-for beats real-ip",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.5",
				"X-Real-IP":       "198.51.100.7",
			},
			want: "203.0.113.5",
		},
		{
			name:    "real-ip fallback",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:    "198.51.100.7",
		},
		{
			name: "empty forwarded-for entry falls back to real-ip",
			headers: map[string]string{
				"X-Forwarded-For": "  ,10.0.0.1",
				"X-Real-IP":       "198.51.100.7",
			},
			want: "198.51.100.7",
		},
		{
			name:    "no headers yields shared unknown bucket",
			headers: nil,
			want:    "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/rate-limit", nil)
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			assert.Equal(t, tt.want, pkghttp.ClientOrigin(req))
		})
	}
}
