package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAPIKey checks every rejection path and the happy path.
//
// WHY: The refresh endpoint triggers outbound provider traffic; anyone who can
// reach the server must not be able to trigger it.
func TestAPIKey(t *testing.T) {
	const key = "test-api-key-12345"

	tests := []struct {
		name        string
		serverKey   string
		apiKey      string
		timeToken   string
		wantStatus  int
		wantDetails string
	}{
		{"missing API key", key, "", "", http.StatusUnauthorized, "Missing API key"},
		{"invalid API key", key, "invalid", "", http.StatusUnauthorized, "Invalid API key"},
		{"missing time token", key, key, "", http.StatusUnauthorized, "Missing Time token"},
		{"invalid time token", key, key, "invalid", http.StatusUnauthorized, "Time token is invalid or expired"},
		{"expired time token", key, key, timeToken(key, time.Now().Add(-3*timeTokenWindow)), http.StatusUnauthorized, "Time token is invalid or expired"},
		{"key not configured", "", key, GenerateTimeToken(key), http.StatusInternalServerError, "Authentication not loaded"},
		{"valid", key, key, GenerateTimeToken(key), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/test", nil)
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			if tt.timeToken != "" {
				req.Header.Set("X-Time-Token", tt.timeToken)
			}
			w := httptest.NewRecorder()
			APIKey(tt.serverKey)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
			if tt.wantDetails != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.wantDetails, body["details"])
			}
		})
	}
}

func TestValidTimeToken_PreviousWindow(t *testing.T) {
	now := time.Now()
	assert.True(t, validTimeToken("k", timeToken("k", now.Add(-timeTokenWindow)), now))
	assert.False(t, validTimeToken("other", timeToken("k", now), now))
}
