package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/upstream"
)

// SearchBooks handles GET /api/search/book/{name}
func (h *Handler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := mux.Vars(r)["name"]
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	var cached []entities.BookCandidate
	if h.cache.Get(r.Context(), upstream.ProviderBooks, query, &cached) {
		writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: cached, Count: len(cached)})
		return
	}

	results, err := h.books.Search(r.Context(), query)
	if err != nil {
		h.writeSearchError(w, upstream.ProviderBooks, err)
		return
	}

	h.cache.Set(r.Context(), upstream.ProviderBooks, query, results)
	writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: results, Count: len(results)})
}

// SearchGames handles GET /api/search/game?query=
func (h *Handler) SearchGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	var cached []entities.GameCandidate
	if h.cache.Get(r.Context(), upstream.ProviderGames, query, &cached) {
		writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: cached, Count: len(cached)})
		return
	}

	results, err := h.games.Search(r.Context(), query)
	if err != nil {
		h.writeSearchError(w, upstream.ProviderGames, err)
		return
	}

	h.cache.Set(r.Context(), upstream.ProviderGames, query, results)
	writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: results, Count: len(results)})
}

// SearchMusic handles GET /api/search/music?query=
func (h *Handler) SearchMusic(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	var cached []entities.MusicCandidate
	if h.cache.Get(r.Context(), upstream.ProviderMusic, query, &cached) {
		writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: cached, Count: len(cached)})
		return
	}

	results, err := h.music.Search(r.Context(), query)
	if err != nil {
		h.writeSearchError(w, upstream.ProviderMusic, err)
		return
	}

	h.cache.Set(r.Context(), upstream.ProviderMusic, query, results)
	writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: results, Count: len(results)})
}

// SearchMovies handles GET /api/search/movie?query=
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	var cached []entities.MovieCandidate
	if h.cache.Get(r.Context(), upstream.ProviderMovies, query, &cached) {
		writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: cached, Count: len(cached)})
		return
	}

	results, err := h.movies.Search(r.Context(), query)
	if err != nil {
		h.writeSearchError(w, upstream.ProviderMovies, err)
		return
	}

	h.cache.Set(r.Context(), upstream.ProviderMovies, query, results)
	writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: results, Count: len(results)})
}

// SearchImages handles GET /api/search/images?query=
func (h *Handler) SearchImages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	var cached []entities.ImageCandidate
	if h.cache.Get(r.Context(), upstream.ProviderImages, query, &cached) {
		writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: cached, Count: len(cached)})
		return
	}

	results, err := h.images.Search(r.Context(), query)
	if err != nil {
		h.writeSearchError(w, upstream.ProviderImages, err)
		return
	}

	h.cache.Set(r.Context(), upstream.ProviderImages, query, results)
	writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: results, Count: len(results)})
}

// PopularImages handles GET /api/search/, the default feed shown before any
// query is typed. Not cached: the popular list rotates upstream.
func (h *Handler) PopularImages(w http.ResponseWriter, r *http.Request) {
	results, err := h.images.Popular(r.Context())
	if err != nil {
		h.writeSearchError(w, upstream.ProviderImages, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Success: true, Data: results, Count: len(results)})
}
