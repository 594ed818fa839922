package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/curator/internal/auth"
	"github.com/devilmonastery/curator/server/internal/session"
)

// AuthMiddleware authenticates API requests from the session cookie
type AuthMiddleware struct {
	sessionManager *session.Manager
	jwtManager     *auth.JWTManager
	log            *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessionManager *session.Manager, jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		log:            slog.Default().With(slog.String("component", "auth_middleware")),
	}
}

// RequireAuth ensures the request carries a valid session token and puts the
// authenticated user into the request context. API consumers get a 401 JSON
// body, never a redirect.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := m.sessionManager.GetToken(r)
		if err != nil || token == "" {
			m.unauthorized(w)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			m.log.Debug("rejected session token", slog.Any("error", err))
			m.unauthorized(w)
			return
		}

		user := &auth.UserContext{
			UserID:      claims.UserID,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
			Role:        claims.Role,
		}

		ctx := auth.SetUserInContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"})
}
