package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/curator/internal/auth"
	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/domain/repositories"
	"github.com/devilmonastery/curator/internal/domain/services"
	"github.com/devilmonastery/curator/internal/upstream"
	"github.com/devilmonastery/curator/server/internal/session"
)

// in-memory repositories

type memUserRepo struct {
	byEmail map[string]*entities.User
	nextID  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*entities.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *entities.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return repositories.ErrDuplicateUser
	}
	r.nextID++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	stored := *user
	r.byEmail[user.Email] = &stored
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

type memFavoriteRepo struct {
	rows   []*entities.Favorite
	nextID int
}

func (r *memFavoriteRepo) Create(ctx context.Context, favorite *entities.Favorite) error {
	r.nextID++
	favorite.ID = fmt.Sprintf("fav-%d", r.nextID)
	favorite.CreatedAt = time.Now()
	stored := *favorite
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *memFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]*entities.Favorite, error) {
	var out []*entities.Favorite
	for _, f := range r.rows {
		if f.UserID == userID {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memFavoriteRepo) Delete(ctx context.Context, id, userID string) error {
	for i, f := range r.rows {
		if f.ID == id && f.UserID == userID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrFavoriteNotFound
}

func (r *memFavoriteRepo) Find(ctx context.Context, userID, title string, favType entities.FavoriteType) (*entities.Favorite, error) {
	for _, f := range r.rows {
		if f.UserID == userID && f.Title == title && f.Type == favType {
			copied := *f
			return &copied, nil
		}
	}
	return nil, repositories.ErrFavoriteNotFound
}

// fake searchers counting calls

type fakeBooks struct {
	calls   int
	results []entities.BookCandidate
	err     error
}

func (f *fakeBooks) Search(ctx context.Context, query string) ([]entities.BookCandidate, error) {
	f.calls++
	return f.results, f.err
}

type fakeGames struct {
	calls int
	err   error
}

func (f *fakeGames) Search(ctx context.Context, query string) ([]entities.GameCandidate, error) {
	f.calls++
	return []entities.GameCandidate{}, f.err
}

type fakeMusic struct{ calls int }

func (f *fakeMusic) Search(ctx context.Context, query string) ([]entities.MusicCandidate, error) {
	f.calls++
	return []entities.MusicCandidate{}, nil
}

type fakeMovies struct{ calls int }

func (f *fakeMovies) Search(ctx context.Context, query string) ([]entities.MovieCandidate, error) {
	f.calls++
	return []entities.MovieCandidate{}, nil
}

type fakeImages struct {
	searchCalls  int
	popularCalls int
}

func (f *fakeImages) Search(ctx context.Context, query string) ([]entities.ImageCandidate, error) {
	f.searchCalls++
	return []entities.ImageCandidate{}, nil
}

func (f *fakeImages) Popular(ctx context.Context) ([]entities.ImageCandidate, error) {
	f.popularCalls++
	return []entities.ImageCandidate{{ID: "pop-1"}}, nil
}

type fixture struct {
	handler *Handler
	users   *memUserRepo
	favs    *memFavoriteRepo
	books   *fakeBooks
	games   *fakeGames
	images  *fakeImages
}

func newFixture(t *testing.T, verbose bool) *fixture {
	t.Helper()
	users := newMemUserRepo()
	favs := &memFavoriteRepo{}
	books := &fakeBooks{}
	games := &fakeGames{}
	images := &fakeImages{}

	h := New(Config{
		Users:          services.NewUserService(users),
		Favorites:      services.NewFavoriteService(favs),
		Books:          books,
		Games:          games,
		Music:          &fakeMusic{},
		Movies:         &fakeMovies{},
		Images:         images,
		SessionManager: session.NewManager([]byte("0123456789abcdef0123456789abcdef")),
		JWTManager:     auth.NewJWTManager("test-signing-key", time.Hour),
		VerboseErrors:  verbose,
	})
	return &fixture{handler: h, users: users, favs: favs, books: books, games: games, images: images}
}

// asUser attaches an authenticated user context, standing in for the session
// middleware.
func asUser(r *http.Request, userID string) *http.Request {
	ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
		UserID:      userID,
		Email:       userID + "@example.com",
		DisplayName: userID,
		Role:        "user",
	})
	return r.WithContext(ctx)
}

func TestSearchBooks(t *testing.T) {
	f := newFixture(t, false)
	f.books.results = []entities.BookCandidate{
		{ID: "b1", Title: "Dune", Authors: []string{"Frank Herbert"}},
		{ID: "b2", Title: "Dune Messiah", Authors: []string{}},
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/search/book/{name}", f.handler.SearchBooks)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/search/book/dune", nil), "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                     `json:"success"`
		Data    []entities.BookCandidate `json:"data"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Data, 2)
	assert.Equal(t, 1, f.books.calls)
}

// A missing or blank query answers 400 before any provider or token traffic
func TestSearch_EmptyQuery(t *testing.T) {
	f := newFixture(t, false)

	endpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"game", f.handler.SearchGames},
		{"music", f.handler.SearchMusic},
		{"movie", f.handler.SearchMovies},
		{"images", f.handler.SearchImages},
	}
	for _, ep := range endpoints {
		for _, target := range []string{"/api/search/" + ep.name, "/api/search/" + ep.name + "?query=%20%20"} {
			req := asUser(httptest.NewRequest(http.MethodGet, target, nil), "u1")
			rec := httptest.NewRecorder()
			ep.handler(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", ep.name, target)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"], "failure bodies must not be empty")
		}
	}
	assert.Zero(t, f.games.calls)
	assert.Zero(t, f.images.searchCalls)
}

func TestSearch_UpstreamErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"auth failure", &upstream.AuthError{Provider: "games", Status: 403}, http.StatusServiceUnavailable},
		{"request failure", &upstream.RequestError{Provider: "games", Status: 502}, http.StatusInternalServerError},
		{"shape mismatch", &upstream.ShapeError{Provider: "games", Detail: "bad payload"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			f.games.err = tt.err

			req := asUser(httptest.NewRequest(http.MethodGet, "/api/search/game?query=witcher", nil), "u1")
			rec := httptest.NewRecorder()
			f.handler.SearchGames(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.Empty(t, body["detail"], "provider detail must stay out of responses")
		})
	}
}

func TestSearch_VerboseErrorsIncludeDetail(t *testing.T) {
	f := newFixture(t, true)
	f.games.err = &upstream.RequestError{Provider: "games", Status: 502, BodyExcerpt: "bad gateway"}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/search/game?query=witcher", nil), "u1")
	rec := httptest.NewRecorder()
	f.handler.SearchGames(rec, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "bad gateway")
}

func TestPopularImages(t *testing.T) {
	f := newFixture(t, false)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/search/", nil), "u1")
	rec := httptest.NewRecorder()
	f.handler.PopularImages(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 1, f.images.popularCalls)
}

func TestCreateFavorite(t *testing.T) {
	f := newFixture(t, false)

	payload := `{"title":"Dune","type":"BOOK","metadata":{"pageCount":412}}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(payload)), "u1")
	rec := httptest.NewRecorder()
	f.handler.CreateFavorite(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body favoriteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "Dune", body.Title)
	assert.Equal(t, "BOOK", body.Type)
	assert.JSONEq(t, `{"pageCount":412}`, string(body.Metadata))
}

func TestCreateFavorite_Validation(t *testing.T) {
	f := newFixture(t, false)

	tests := []struct {
		name    string
		payload string
	}{
		{"missing title", `{"type":"BOOK"}`},
		{"bad type", `{"title":"Dune","type":"podcast"}`},
		{"malformed json", `{"title":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(tt.payload)), "u1")
			rec := httptest.NewRecorder()
			f.handler.CreateFavorite(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, f.favs.rows)
}

func TestListFavorites_ScopedToUser(t *testing.T) {
	f := newFixture(t, false)

	for _, owner := range []string{"u1", "u1", "u2"} {
		payload := `{"title":"Dune","type":"BOOK"}`
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(payload)), owner)
		rec := httptest.NewRecorder()
		f.handler.CreateFavorite(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/favorites", nil), "u1")
	rec := httptest.NewRecorder()
	f.handler.ListFavorites(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Favorites []favoriteResponse `json:"favorites"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Favorites, 2)
}

func TestDeleteFavorite_OwnershipEnforced(t *testing.T) {
	f := newFixture(t, false)

	payload := `{"title":"Dune","type":"BOOK"}`
	createReq := asUser(httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(payload)), "owner")
	createRec := httptest.NewRecorder()
	f.handler.CreateFavorite(createRec, createReq)
	require.Equal(t, http.StatusCreated, createRec.Code)

	var created favoriteResponse
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))

	router := mux.NewRouter()
	router.HandleFunc("/api/favorites/{id}", f.handler.DeleteFavorite).Methods(http.MethodDelete)

	// Another user deleting the row answers 404 and the row survives
	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/favorites/"+created.ID, nil), "intruder")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, f.favs.rows, 1)

	// The owner can delete it
	req = asUser(httptest.NewRequest(http.MethodDelete, "/api/favorites/"+created.ID, nil), "owner")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.favs.rows)
}

func TestCheckFavorite(t *testing.T) {
	f := newFixture(t, false)

	payload := `{"title":"Dune","type":"BOOK"}`
	createReq := asUser(httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(payload)), "u1")
	createRec := httptest.NewRecorder()
	f.handler.CreateFavorite(createRec, createReq)
	require.Equal(t, http.StatusCreated, createRec.Code)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/favorites/check?title=Dune&type=BOOK", nil), "u1")
	rec := httptest.NewRecorder()
	f.handler.CheckFavorite(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["favorited"])
	assert.NotEmpty(t, body["id"])

	// Missing params answer 400
	req = asUser(httptest.NewRequest(http.MethodGet, "/api/favorites/check?title=Dune", nil), "u1")
	rec = httptest.NewRecorder()
	f.handler.CheckFavorite(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t, false)

	signup := `{"email":"alice@example.com","password":"password123","name":"Alice"}`
	rec := httptest.NewRecorder()
	f.handler.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(signup)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Equal(t, "user", created.Role)

	// Duplicate email answers 409
	rec = httptest.NewRecorder()
	f.handler.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(signup)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login sets the session cookie
	login := `{"email":"alice@example.com","password":"password123"}`
	rec = httptest.NewRecorder()
	f.handler.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(login)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies(), "login must set a session cookie")

	// Wrong password answers 401
	badLogin := `{"email":"alice@example.com","password":"wrong password"}`
	rec = httptest.NewRecorder()
	f.handler.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(badLogin)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignup_WeakPassword(t *testing.T) {
	f := newFixture(t, false)

	payload := `{"email":"bob@example.com","password":"short"}`
	rec := httptest.NewRecorder()
	f.handler.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(payload)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe_Unauthenticated(t *testing.T) {
	f := newFixture(t, false)

	rec := httptest.NewRecorder()
	f.handler.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not authenticated", body["error"])
}
