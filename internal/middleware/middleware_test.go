package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stock-backend/internal/auth"
	"stock-backend/internal/config"
	"stock-backend/internal/logging"
	"stock-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwtManager() *auth.JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = "middleware-secret"
	return auth.NewJWTManager(cfg)
}

func TestAuthenticate(t *testing.T) {
	jm := jwtManager()
	mw := NewAuthMiddleware(jm)

	var (
		seen     int
		seenName string
	)
	h := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserIDFromContext(r.Context())
		seenName, _ = GetUsernameFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	access, err := jm.GenerateAccessToken(&models.User{ID: 5, Username: "eve"})
	require.NoError(t, err)
	refresh, err := jm.GenerateRefreshToken(&models.User{ID: 5, Username: "eve"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"access token", "Bearer " + access, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusUnauthorized {
				var body map[string]map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "UNAUTHORIZED", body["error"]["code"])
			}
		})
	}
	assert.Equal(t, 5, seen)
	assert.Equal(t, "eve", seenName)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: "info", Output: &buf})

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context(), nil).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	id := rec.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Contains(t, buf.String(), id)
	assert.Contains(t, buf.String(), `"status":418`)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestPanicRecoveryReturnsJSON(t *testing.T) {
	h := PanicRecovery(logging.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.NotContains(t, rec.Body.String(), "boom")
}
