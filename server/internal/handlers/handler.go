package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/curator/internal/auth"
	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/domain/services"
	"github.com/devilmonastery/curator/internal/searchcache"
	"github.com/devilmonastery/curator/internal/upstream"
	"github.com/devilmonastery/curator/server/internal/session"
)

// Searcher interfaces are declared here, on the consumer side, so tests can
// substitute fakes for the upstream clients.

// BookSearcher searches the books catalog
type BookSearcher interface {
	Search(ctx context.Context, query string) ([]entities.BookCandidate, error)
}

// GameSearcher searches the games catalog
type GameSearcher interface {
	Search(ctx context.Context, query string) ([]entities.GameCandidate, error)
}

// MusicSearcher searches the music catalog
type MusicSearcher interface {
	Search(ctx context.Context, query string) ([]entities.MusicCandidate, error)
}

// MovieSearcher searches the movies catalog
type MovieSearcher interface {
	Search(ctx context.Context, query string) ([]entities.MovieCandidate, error)
}

// ImageSearcher searches the images catalog and serves the popular feed
type ImageSearcher interface {
	Search(ctx context.Context, query string) ([]entities.ImageCandidate, error)
	Popular(ctx context.Context) ([]entities.ImageCandidate, error)
}

// Handler holds dependencies for all API handlers
type Handler struct {
	users          *services.UserService
	favorites      *services.FavoriteService
	books          BookSearcher
	games          GameSearcher
	music          MusicSearcher
	movies         MovieSearcher
	images         ImageSearcher
	cache          *searchcache.Cache // nil when caching is disabled
	sessionManager *session.Manager
	jwtManager     *auth.JWTManager
	verboseErrors  bool // include upstream detail in 5xx bodies (local only)
	log            *slog.Logger
}

// Config collects the handler dependencies
type Config struct {
	Users          *services.UserService
	Favorites      *services.FavoriteService
	Books          BookSearcher
	Games          GameSearcher
	Music          MusicSearcher
	Movies         MovieSearcher
	Images         ImageSearcher
	Cache          *searchcache.Cache
	SessionManager *session.Manager
	JWTManager     *auth.JWTManager
	VerboseErrors  bool
}

// New creates a new handler with dependencies
func New(cfg Config) *Handler {
	return &Handler{
		users:          cfg.Users,
		favorites:      cfg.Favorites,
		books:          cfg.Books,
		games:          cfg.Games,
		music:          cfg.Music,
		movies:         cfg.Movies,
		images:         cfg.Images,
		cache:          cfg.Cache,
		sessionManager: cfg.SessionManager,
		jwtManager:     cfg.JWTManager,
		verboseErrors:  cfg.VerboseErrors,
		log:            slog.Default().With(slog.String("component", "handlers")),
	}
}

// writeJSON serializes a response body with the given status
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError sends a JSON error body; no endpoint returns an empty failure
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// searchResponse is the success envelope for all search endpoints
type searchResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Count   int         `json:"count"`
}

// writeSearchError maps the upstream error taxonomy to HTTP statuses.
// Provider detail is logged, not echoed, unless verbose errors are on.
func (h *Handler) writeSearchError(w http.ResponseWriter, provider string, err error) {
	log := h.log.With(slog.String("provider", provider))

	if errors.Is(err, upstream.ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	var authErr *upstream.AuthError
	if errors.As(err, &authErr) {
		log.Error("upstream auth failure",
			slog.Int("status", authErr.Status),
			slog.String("body", authErr.Body))
		h.writeUpstreamFailure(w, http.StatusServiceUnavailable, "provider authentication failed", err)
		return
	}

	var reqErr *upstream.RequestError
	if errors.As(err, &reqErr) {
		log.Error("upstream request failure",
			slog.Int("status", reqErr.Status),
			slog.String("body", reqErr.BodyExcerpt))
		h.writeUpstreamFailure(w, http.StatusInternalServerError, "failed to fetch from provider", err)
		return
	}

	var shapeErr *upstream.ShapeError
	if errors.As(err, &shapeErr) {
		log.Error("upstream shape mismatch", slog.String("detail", shapeErr.Detail))
		h.writeUpstreamFailure(w, http.StatusInternalServerError, "unexpected provider response", err)
		return
	}

	log.Error("search failed", slog.Any("error", err))
	h.writeUpstreamFailure(w, http.StatusInternalServerError, "internal server error", err)
}

// writeUpstreamFailure writes a generic failure message, attaching the raw
// error only in the local environment
func (h *Handler) writeUpstreamFailure(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if h.verboseErrors {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}

// currentUser pulls the authenticated user out of the request context.
// Requests only reach here through the auth middleware, so a miss is a
// programming error, answered with 401 anyway.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*auth.UserContext, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}
	return user, true
}
