package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/domain/repositories"
	"github.com/devilmonastery/curator/internal/domain/services"
)

type createFavoriteRequest struct {
	Title    string          `json:"title"`
	Type     string          `json:"type"`
	Metadata json.RawMessage `json:"metadata"`
}

type favoriteResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Type      string          `json:"type"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt string          `json:"createdAt"`
}

func toFavoriteResponse(f *entities.Favorite) favoriteResponse {
	return favoriteResponse{
		ID:        f.ID,
		Title:     f.Title,
		Type:      string(f.Type),
		Metadata:  f.Metadata,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateFavorite handles POST /api/favorites
func (h *Handler) CreateFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req createFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fav, err := h.favorites.Create(r.Context(), user.UserID, req.Title, entities.FavoriteType(req.Type), req.Metadata)
	if err != nil {
		if services.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("create favorite failed",
			slog.String("user_id", user.UserID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.log.Info("favorite created",
		slog.String("user_id", user.UserID),
		slog.String("favorite_id", fav.ID),
		slog.String("type", string(fav.Type)))

	writeJSON(w, http.StatusCreated, toFavoriteResponse(fav))
}

// ListFavorites handles GET /api/favorites
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	favs, err := h.favorites.List(r.Context(), user.UserID)
	if err != nil {
		h.log.Error("list favorites failed",
			slog.String("user_id", user.UserID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]favoriteResponse, 0, len(favs))
	for _, f := range favs {
		out = append(out, toFavoriteResponse(f))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": out})
}

// DeleteFavorite handles DELETE /api/favorites/{id}. The row must belong
// to the caller; anything else looks like a missing favorite.
func (h *Handler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.favorites.Delete(r.Context(), id, user.UserID); err != nil {
		if errors.Is(err, repositories.ErrFavoriteNotFound) {
			writeError(w, http.StatusNotFound, "favorite not found")
			return
		}
		h.log.Error("delete favorite failed",
			slog.String("user_id", user.UserID),
			slog.String("favorite_id", id),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CheckFavorite handles GET /api/favorites/check?title=&type=
func (h *Handler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	favType := entities.FavoriteType(r.URL.Query().Get("type"))
	if title == "" || !favType.Valid() {
		writeError(w, http.StatusBadRequest, "title and type parameters required")
		return
	}

	found, id, err := h.favorites.Check(r.Context(), user.UserID, title, favType)
	if err != nil {
		h.log.Error("check favorite failed",
			slog.String("user_id", user.UserID),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	body := map[string]interface{}{"favorited": found}
	if found {
		body["id"] = id
	}
	writeJSON(w, http.StatusOK, body)
}
