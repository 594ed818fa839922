package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/curator/internal/auth"
	"github.com/devilmonastery/curator/server/internal/session"
)

func newAuthFixture(t *testing.T) (*AuthMiddleware, *session.Manager, *auth.JWTManager) {
	t.Helper()
	sessions := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	jwts := auth.NewJWTManager("test-signing-key", time.Hour)
	return NewAuthMiddleware(sessions, jwts), sessions, jwts
}

// loginCookies runs a token through the session manager and returns the
// resulting cookies, the way a login response would set them.
func loginCookies(t *testing.T, sessions *session.Manager, token string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, sessions.SetToken(req, rec, token))
	return rec.Result().Cookies()
}

func TestRequireAuth(t *testing.T) {
	mw, sessions, jwts := newAuthFixture(t)

	token, _, err := jwts.GenerateToken("u1", "u1@example.com", "User One", "user")
	require.NoError(t, err)

	var seen *auth.UserContext
	protected := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
	for _, c := range loginCookies(t, sessions, token) {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
	assert.Equal(t, "u1@example.com", seen.Email)
}

func TestRequireAuth_Rejections(t *testing.T) {
	mw, sessions, _ := newAuthFixture(t)

	handlerHits := 0
	protected := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerHits++
	}))

	// A token signed with a different key must be rejected
	otherJWTs := auth.NewJWTManager("some-other-key", time.Hour)
	forged, _, err := otherJWTs.GenerateToken("u1", "u1@example.com", "User One", "user")
	require.NoError(t, err)

	tests := []struct {
		name    string
		cookies []*http.Cookie
	}{
		{"no cookie", nil},
		{"forged token", loginCookies(t, sessions, forged)},
		{"garbage token", loginCookies(t, sessions, "not.a.jwt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "not authenticated", body["error"])
		})
	}
	assert.Zero(t, handlerHits)
}
