package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMoviesSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "alien" {
			t.Errorf("expected query alien, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
  "ok": true,
  "description": [
    {"#IMDB_ID": "tt0078748", "#TITLE": "Alien", "#YEAR": 1979,
     "#IMG_POSTER": "https://m.media-amazon.com/alien.jpg",
     "#ACTORS": "Sigourney Weaver, Tom Skerritt",
     "#IMDB_URL": "https://imdb.com/title/tt0078748",
     "#RANK": 132, "photo_width": 1086, "photo_height": 1600},
    {"#IMDB_ID": "tt0090605", "#TITLE": "Aliens"}
  ]
}`))
	}))
	defer srv.Close()

	client := NewMoviesClient(srv.URL)
	results, err := client.Search(context.Background(), "alien")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(results))
	}

	first := results[0]
	if first.IMDBID != "tt0078748" || first.ID != "tt0078748" {
		t.Errorf("unexpected ids: %q %q", first.ID, first.IMDBID)
	}
	if first.Year == nil || *first.Year != 1979 {
		t.Errorf("unexpected year: %v", first.Year)
	}
	if first.YearC != "1979" {
		t.Errorf("expected stringified year 1979, got %q", first.YearC)
	}
	if first.Rank == nil || *first.Rank != 132 {
		t.Errorf("unexpected rank: %v", first.Rank)
	}

	// Missing year stringifies to the empty string, not "0"
	second := results[1]
	if second.Year != nil {
		t.Errorf("expected nil year, got %d", *second.Year)
	}
	if second.YearC != "" {
		t.Errorf("expected empty year string, got %q", second.YearC)
	}
}

func TestMoviesSearch_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"description is a string", `{"description": "no results"}`},
		{"description is an object", `{"description": {"error": "bad"}}`},
		{"description is null", `{"ok": true, "description": null}`},
		{"description missing", `{"ok": true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewMoviesClient(srv.URL)
			_, err := client.Search(context.Background(), "alien")

			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("expected *ShapeError, got %T: %v", err, err)
			}
			if shapeErr.Provider != ProviderMovies {
				t.Errorf("unexpected provider: %q", shapeErr.Provider)
			}
		})
	}
}

func TestMoviesSearch_EmptyDescriptionArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"description": []}`))
	}))
	defer srv.Close()

	client := NewMoviesClient(srv.URL)
	results, err := client.Search(context.Background(), "zzzzz")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no candidates, got %d", len(results))
	}
}
